package source

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func extractLines(t *testing.T, e Extractor, input, filename string) []string {
	t.Helper()
	got, err := e.Extract(context.Background(), strings.NewReader(input), filename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == "" {
		return nil
	}
	return strings.Split(got, "\n")
}

func TestMarkdownExtractor_RecipeCard(t *testing.T) {
	input := `# Lemon Bars

Bright and tangy.

## Ingredients

- 1 cup butter
- 2 cups **flour**

## Instructions

1. Preheat oven to 350.
2. Press crust into pan.
`
	got := extractLines(t, &MarkdownExtractor{}, input, "bars.md")
	want := []string{
		"Lemon Bars",
		"Bright and tangy.",
		"Ingredients",
		"- 1 cup butter",
		"- 2 cups flour",
		"Instructions",
		"1. Preheat oven to 350.",
		"2. Press crust into pan.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkdownExtractor_SoftBreaksSplitLines(t *testing.T) {
	got := extractLines(t, &MarkdownExtractor{}, "Serves 4\nPrep Time: 10 min\n", "card.md")
	want := []string{"Serves 4", "Prep Time: 10 min"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkdownExtractor_CodeBlocks(t *testing.T) {
	input := "Notes\n\n```\nkeep cold\nuse within a week\n```\n"
	got := extractLines(t, &MarkdownExtractor{}, input, "notes.md")
	want := []string{"Notes", "keep cold", "use within a week"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkdownExtractor_OrderedListStart(t *testing.T) {
	got := extractLines(t, &MarkdownExtractor{}, "3) fold\n4) bake\n", "steps.md")
	want := []string{"3) fold", "4) bake"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkdownExtractor_EmptyInput(t *testing.T) {
	if got := extractLines(t, &MarkdownExtractor{}, "", "empty.md"); len(got) != 0 {
		t.Errorf("expected no lines, got %v", got)
	}
}
