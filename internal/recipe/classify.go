package recipe

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Section is the semantic role assigned to a line of recipe text.
type Section int

const (
	Description Section = iota
	Ingredients
	Instructions
	Notes
)

func (s Section) String() string {
	switch s {
	case Description:
		return "description"
	case Ingredients:
		return "ingredients"
	case Instructions:
		return "instructions"
	case Notes:
		return "notes"
	}
	return "unknown"
}

// decision is the outcome of classifying one line.
type decision struct {
	next   Section
	header bool // the line announces next and is not stored
}

// decide is the transition function of the section state machine.
// Precedence is fixed: header, ingredient heuristic, instruction heuristic,
// then the current section.
func decide(current Section, line string) decision {
	lower := strings.ToLower(line)
	if s, ok := headerSection(line, lower); ok {
		return decision{next: s, header: true}
	}
	if looksLikeIngredient(line, lower) {
		return decision{next: Ingredients}
	}
	if looksLikeInstruction(line, lower) {
		return decision{next: Instructions}
	}
	return decision{next: current}
}

func headerSection(line, lower string) (Section, bool) {
	if utf8.RuneCountInString(line) >= headerMaxLen {
		return 0, false
	}
	for _, h := range headerKeywords {
		if containsAny(lower, h.keywords) {
			return h.section, true
		}
	}
	return 0, false
}

func looksLikeIngredient(line, lower string) bool {
	if containsAny(lower, metadataExclusions) {
		return false
	}
	return quantityUnitRe.MatchString(line) ||
		bulletRe.MatchString(line) ||
		numberedRe.MatchString(line) ||
		labelValueRe.MatchString(line) ||
		ingredientWordRe.MatchString(line)
}

func looksLikeInstruction(line, lower string) bool {
	if numberedRe.MatchString(line) || stepMarkerRe.MatchString(line) {
		return true
	}
	for _, v := range cookingVerbs {
		if startsWithWord(lower, v) || strings.Contains(lower, " "+v+" ") {
			return true
		}
	}
	return false
}

// startsWithWord reports whether s begins with word followed by a non-letter
// or the end of s, so "heat" matches "heat the pan" but not "heather".
func startsWithWord(s, word string) bool {
	if !strings.HasPrefix(s, word) {
		return false
	}
	rest := s[len(word):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !unicode.IsLetter(r)
}

type buckets struct {
	description  []string
	ingredients  []string
	instructions []string
	notes        []string
}

func (b *buckets) add(s Section, line string) {
	switch s {
	case Description:
		b.description = append(b.description, line)
	case Ingredients:
		b.ingredients = append(b.ingredients, line)
	case Instructions:
		b.instructions = append(b.instructions, line)
	case Notes:
		b.notes = append(b.notes, line)
	}
}

func (b *buckets) descriptionText() string {
	return strings.TrimSpace(strings.Join(b.description, "\n"))
}

func (b *buckets) notesText() string {
	return strings.TrimSpace(strings.Join(b.notes, "\n"))
}

// classify walks lines once, in order, starting in Description.
func classify(lines []string) buckets {
	var b buckets
	state := Description
	for _, line := range lines {
		d := decide(state, line)
		state = d.next
		if d.header {
			continue
		}
		b.add(state, line)
	}
	return b
}

// fallbackSplit is the positional split used when classify found neither
// ingredients nor instructions: the first third goes to ingredients and the
// rest to instructions. Lines of three characters or fewer are dropped.
func fallbackSplit(lines []string) (ingredients, instructions []string) {
	split := max(1, len(lines)/3)
	for i, l := range lines {
		if utf8.RuneCountInString(l) <= 3 {
			continue
		}
		if i < split {
			ingredients = append(ingredients, l)
		} else {
			instructions = append(instructions, l)
		}
	}
	return ingredients, instructions
}
