// Package recipe turns the raw text recovered from a photographed recipe
// into a structured record.
//
// Parsing is best-effort and deterministic. It never fails, never blocks and
// keeps no state between calls, so Parse is safe for concurrent use.
package recipe

// ParsedRecipe is the structured result of parsing one block of text.
type ParsedRecipe struct {
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Ingredients  []string `json:"ingredients" yaml:"ingredients"`
	Instructions []string `json:"instructions" yaml:"instructions"`
	Notes        string   `json:"notes" yaml:"notes"`
	Servings     int      `json:"servings" yaml:"servings"`
	PrepTime     int      `json:"prepTime" yaml:"prepTime"` // minutes
	CookTime     int      `json:"cookTime" yaml:"cookTime"` // minutes
	Category     string   `json:"category" yaml:"category"`
}

// Parse converts raw text into a ParsedRecipe. Empty input yields an empty
// recipe with default metadata.
func Parse(raw string) ParsedRecipe {
	lines := Lines(raw)
	if len(lines) == 0 {
		return Format(Draft{})
	}

	titleIdx, name := findTitle(lines)
	meta := scanMetadata(lines)

	// The title line is never reconsidered.
	body := lines[titleIdx+1:]
	b := classify(body)
	if len(b.ingredients) == 0 && len(b.instructions) == 0 {
		b.ingredients, b.instructions = fallbackSplit(body)
	}

	d := Draft{
		Name:         name,
		Description:  b.descriptionText(),
		Ingredients:  plainEntries(b.ingredients),
		Instructions: plainEntries(b.instructions),
		Notes:        b.notesText(),
		Servings:     meta.servings,
		PrepTime:     meta.prepTime,
		CookTime:     meta.cookTime,
	}
	d.Category = guessCategory(d.Name, d.Description, b.ingredients)
	return Format(d)
}

func plainEntries(lines []string) []Entry {
	if len(lines) == 0 {
		return nil
	}
	out := make([]Entry, len(lines))
	for i, l := range lines {
		out[i] = PlainText(l)
	}
	return out
}
