package recipe

import (
	"regexp"
	"strings"
)

// Keyword tables are package-level and read-only. Nothing in this package
// writes to them after init.

// boilerplateMarkers reject a head line as a title candidate.
var boilerplateMarkers = []string{
	"allrecipes",
	"food network",
	"foodnetwork",
	"epicurious",
	"bon appetit",
	"tasty",
	"delish",
	"simplyrecipes",
	"seriouseats",
	"nytimes",
	"www.",
	"http",
	".com",
	"recipe",
	"cooking",
	"kitchen",
}

// headerKeywords maps each section to the words that announce it.
// Order matters: the first section whose keyword matches wins.
var headerKeywords = []struct {
	section  Section
	keywords []string
}{
	{Ingredients, []string{"ingredients", "what you need", "shopping list", "you will need"}},
	{Instructions, []string{"instructions", "directions", "method", "steps", "how to", "preparation"}},
	{Notes, []string{"notes", "tips", "chef's notes", "variations"}},
}

// headerMaxLen keeps long content lines that mention a header word from
// being treated as headers.
const headerMaxLen = 30

// metadataExclusions are phrases that disqualify a line from the
// ingredient heuristic.
var metadataExclusions = []string{
	"prep time",
	"cook time",
	"total time",
	"serving",
	"nutrition",
	"serves",
	"yield",
	"makes",
}

var commonIngredients = []string{
	"salt", "pepper", "flour", "sugar", "butter", "oil", "egg", "milk",
	"cream", "cheese", "garlic", "onion", "water", "vanilla", "yeast",
	"honey", "rice", "chicken", "beef", "tomato", "lemon", "baking soda",
	"baking powder", "cinnamon", "parsley", "basil", "vinegar",
}

var cookingVerbs = []string{
	"preheat", "heat", "cook", "bake", "stir", "mix", "combine", "add",
	"place", "remove", "cut", "chop", "slice", "serve", "whisk", "pour",
	"simmer", "boil", "fry", "saute", "sauté", "season", "drain", "transfer",
	"cover", "bring", "beat", "fold", "spread", "sprinkle", "reduce", "roast",
	"grill", "blend", "melt", "knead", "roll", "garnish", "cool", "refrigerate",
	"let", "set", "toss", "marinate", "dice", "mince",
}

// categoryTable is ordered; the first category with a matching keyword
// wins, so declaration order breaks ties.
var categoryTable = []struct {
	name     string
	keywords []string
}{
	{"Breakfast", []string{"breakfast", "pancake", "waffle", "omelet", "omelette", "french toast", "granola", "oatmeal", "muffin", "scrambled"}},
	{"Lunch", []string{"lunch", "sandwich", "wrap", "salad", "soup", "burger"}},
	{"Dinner", []string{"dinner", "casserole", "lasagna", "steak", "curry", "chili", "stir fry", "stir-fry", "pot roast"}},
	{"Appetizer", []string{"appetizer", "starter", "dip", "bruschetta", "canape", "finger food", "hors d'oeuvre"}},
	{"Dessert", []string{"dessert", "cake", "cookie", "brownie", "pudding", "ice cream", "frosting", "cupcake", "cobbler", "tart"}},
	{"Beverage", []string{"beverage", "drink", "smoothie", "cocktail", "lemonade", "juice", "coffee", "tea"}},
	{"Side Dish", []string{"side dish", "mashed", "coleslaw", "pilaf"}},
	{"Main Course", []string{"main course", "main dish", "entree", "entrée", "salmon", "pork", "chicken", "beef"}},
}

// DefaultCategory is used when no category keyword matches.
const DefaultCategory = "Other"

// Categories returns the category vocabulary in table order.
func Categories() []string {
	out := make([]string, 0, len(categoryTable)+1)
	for _, c := range categoryTable {
		out = append(out, c.name)
	}
	return append(out, DefaultCategory)
}

var (
	prepTimeRe = regexp.MustCompile(`(?i)prep\s*time\s*:?\s*(\d+)\s*(min|hour|hr|minute|sec)`)
	cookTimeRe = regexp.MustCompile(`(?i)cook\s*time\s*:?\s*(\d+)\s*(min|hour|hr|minute|sec)`)

	servingsRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)serv(es|ings)\s*:?\s*(\d+)`),
		regexp.MustCompile(`(?i)yield\s*:?\s*(\d+)`),
		regexp.MustCompile(`(?i)makes\s*:?\s*(\d+)`),
	}

	numericOnlyRe  = regexp.MustCompile(`^[\d.°]+$`)
	quantityUnitRe = regexp.MustCompile(`(?i)\d+\s*(cup|tbsp|tsp|oz|lb|g|kg|ml|l|pinch|dash)`)
	bulletRe       = regexp.MustCompile(`^[-•*]\s+`)
	numberedRe     = regexp.MustCompile(`^\d+[.)]\s+`)
	labelValueRe   = regexp.MustCompile(`(?i)^[a-z][a-z '\-]{0,24}:\s*[\d½¼¾⅓⅔]`)
	stepMarkerRe   = regexp.MustCompile(`(?i)\bstep\s*\d+`)

	ingredientWordRe = wordSetRe(commonIngredients)
)

// wordSetRe builds a case-insensitive whole-word matcher for words,
// allowing a plural "s" or "es".
func wordSetRe(words []string) *regexp.Regexp {
	alts := make([]string, len(words))
	for i, w := range words {
		alts[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)(?:e?s)?\b`)
}

