package recipe

import "strings"

// guessCategory returns the first category in table order with a keyword
// found in the title or in the name, description and ingredients text.
func guessCategory(name, description string, ingredients []string) string {
	title := strings.ToLower(name)
	parts := make([]string, 0, len(ingredients)+2)
	parts = append(parts, name, description)
	parts = append(parts, ingredients...)
	blob := strings.ToLower(strings.Join(parts, " "))

	for _, c := range categoryTable {
		for _, kw := range c.keywords {
			if strings.Contains(title, kw) || strings.Contains(blob, kw) {
				return c.name
			}
		}
	}
	return DefaultCategory
}
