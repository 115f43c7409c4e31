package recipe

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const pancakeText = `www.allrecipes.com
Classic Buttermilk Pancakes
Fluffy pancakes for a lazy weekend.
Prep Time: 10 min
Serves: 4
Ingredients
2 cups flour
2 tbsp sugar
1 1/2 cups buttermilk
Instructions
Whisk the dry ingredients together.
Pour in the buttermilk and fold gently
until just combined
Notes
Batter keeps overnight in the fridge.
`

func TestParse_FullRecipe(t *testing.T) {
	got := Parse(pancakeText)
	want := ParsedRecipe{
		Name:        "Classic Buttermilk Pancakes",
		Description: "Fluffy pancakes for a lazy weekend.\nPrep Time: 10 min\nServes: 4",
		Ingredients: []string{"2 cups flour", "2 tbsp sugar", "1 1/2 cups buttermilk"},
		Instructions: []string{
			"Whisk the dry ingredients together.",
			"Pour in the buttermilk and fold gently",
			"until just combined",
		},
		Notes:    "Batter keeps overnight in the fridge.",
		Servings: 4,
		PrepTime: 10,
		Category: "Breakfast",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Totality(t *testing.T) {
	empty := ParsedRecipe{
		Ingredients:  []string{},
		Instructions: []string{},
		Servings:     1,
		Category:     DefaultCategory,
	}
	for _, in := range []string{"", "   ", "\n\n\t\n", "\r\n"} {
		got := Parse(in)
		if diff := cmp.Diff(empty, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", in, diff)
		}
	}

	// Degenerate inputs still produce a well-formed record.
	for _, in := range []string{"x", "7", "°", "::", "www.example.com", strings.Repeat("-\n", 50)} {
		got := Parse(in)
		if got.Servings < 1 {
			t.Errorf("Parse(%q): expected servings >= 1, got %d", in, got.Servings)
		}
		if got.Category == "" {
			t.Errorf("Parse(%q): expected a category", in)
		}
		if got.Ingredients == nil || got.Instructions == nil {
			t.Errorf("Parse(%q): expected non-nil slices", in)
		}
	}
}

func TestParse_TitleSkipsBoilerplate(t *testing.T) {
	got := Parse("www.allrecipes.com\nGrandma's Chili\n2 cups beans")
	if got.Name != "Grandma's Chili" {
		t.Errorf("expected name %q, got %q", "Grandma's Chili", got.Name)
	}
	if got.Category != "Dinner" {
		t.Errorf("expected category %q, got %q", "Dinner", got.Category)
	}
}

func TestParse_AllBoilerplateFallsBackToFirstLine(t *testing.T) {
	got := Parse("www.site.com\n12\nMy Recipe Blog\nok\n350°\nCream the butter")
	if got.Name != "www.site.com" {
		t.Errorf("expected name %q, got %q", "www.site.com", got.Name)
	}
	// Every line after line 0 is classified, including the rejected candidates.
	if len(got.Ingredients) == 0 {
		t.Fatalf("expected ingredients, got none")
	}
	last := got.Ingredients[len(got.Ingredients)-1]
	if last != "Cream the butter" {
		t.Errorf("expected last ingredient %q, got %q", "Cream the butter", last)
	}
}

func TestParse_TitleNeverClassified(t *testing.T) {
	got := Parse("Ingredients\n2 cups flour")
	if got.Name != "Ingredients" {
		t.Errorf("expected name %q, got %q", "Ingredients", got.Name)
	}
	if diff := cmp.Diff([]string{"2 cups flour"}, got.Ingredients); diff != "" {
		t.Errorf("ingredients mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_TimeUnits(t *testing.T) {
	got := Parse("Roast Dinner\nPrep Time: 2 hour\nCook Time: 45 min")
	if got.PrepTime != 120 {
		t.Errorf("expected prepTime 120, got %d", got.PrepTime)
	}
	if got.CookTime != 45 {
		t.Errorf("expected cookTime 45, got %d", got.CookTime)
	}
}

func TestParse_Servings(t *testing.T) {
	if got := Parse("Stew\nServes: 6").Servings; got != 6 {
		t.Errorf("expected servings 6, got %d", got)
	}
	if got := Parse("Stew\nno yield given").Servings; got != 1 {
		t.Errorf("expected servings 1, got %d", got)
	}
}

func TestParse_HeaderTransitions(t *testing.T) {
	got := Parse("Pancakes\nIngredients\n2 cups flour\nInstructions\nPreheat oven to 350")
	if diff := cmp.Diff([]string{"2 cups flour"}, got.Ingredients); diff != "" {
		t.Errorf("ingredients mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Preheat oven to 350"}, got.Instructions); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_FallbackSegmentation(t *testing.T) {
	body := []string{
		"A family favorite",
		"from the old country",
		"passed down for years",
		"it never fails to please",
		"everyone asks for seconds",
		"we make it every winter",
		"and again each spring",
		"always a big hit",
		"truly wonderful stuff",
	}
	got := Parse("Mystery Dish\n" + strings.Join(body, "\n"))

	if diff := cmp.Diff(body[:3], got.Ingredients); diff != "" {
		t.Errorf("ingredients mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(body[3:], got.Instructions); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}
	// Description collected during classification is preserved.
	if got.Description != strings.Join(body, "\n") {
		t.Errorf("expected description to keep all lines, got %q", got.Description)
	}
}

func TestParse_NumberingPreserved(t *testing.T) {
	got := Parse("Toast\nDirections\nStep 1 toast the bread\nStep 2 spread jam")
	want := []string{"Step 1 toast the bread", "Step 2 spread jam"}
	if diff := cmp.Diff(want, got.Instructions); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Deterministic(t *testing.T) {
	first := Parse(pancakeText)
	for range 20 {
		if diff := cmp.Diff(first, Parse(pancakeText)); diff != "" {
			t.Fatalf("Parse not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestParse_ConcurrentCalls(t *testing.T) {
	inputs := []string{pancakeText, "", "Grandma's Chili\nServes 8\n1 lb beef", "Iced Tea\nSteep the bags"}
	want := make([]ParsedRecipe, len(inputs))
	for i, in := range inputs {
		want[i] = Parse(in)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, in := range inputs {
				if diff := cmp.Diff(want[i], Parse(in)); diff != "" {
					errs <- diff
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for diff := range errs {
		t.Errorf("concurrent parse mismatch:\n%s", diff)
	}
}

func TestLines(t *testing.T) {
	got := Lines("  first \r\n\n\t\nsecond\n   third   ")
	want := []string{"first", "second", "third"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
	if got := Lines(""); len(got) != 0 {
		t.Errorf("expected no lines for empty input, got %d", len(got))
	}
}
