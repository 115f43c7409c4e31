package recipe

import (
	"encoding/json"
	"strings"
)

// Entry is one ingredient or instruction before formatting. The set of
// implementations is closed: PlainText, Structured and Step.
type Entry interface {
	entry()
}

// PlainText is a line kept exactly as it appeared.
type PlainText string

// Structured is an ingredient split into quantity, unit and name.
type Structured struct {
	Name     string
	Quantity string
	Unit     string
}

// Step is an instruction carried as a step object.
type Step struct {
	Text string
}

func (PlainText) entry()  {}
func (Structured) entry() {}
func (Step) entry()       {}

func render(e Entry) string {
	switch v := e.(type) {
	case PlainText:
		return string(v)
	case Structured:
		return strings.TrimSpace(v.Quantity + " " + v.Unit + " " + v.Name)
	case Step:
		return v.Text
	}
	return ""
}

// Draft is a recipe whose entries have not been flattened to strings yet.
type Draft struct {
	Name         string
	Description  string
	Ingredients  []Entry
	Instructions []Entry
	Notes        string
	Servings     int
	PrepTime     int
	CookTime     int
	Category     string
}

// Format flattens every entry to a plain string and applies metadata
// defaults. Format(r.Draft()) == r for any r returned by Format.
func Format(d Draft) ParsedRecipe {
	r := ParsedRecipe{
		Name:         d.Name,
		Description:  d.Description,
		Ingredients:  renderAll(d.Ingredients),
		Instructions: renderAll(d.Instructions),
		Notes:        d.Notes,
		Servings:     d.Servings,
		PrepTime:     d.PrepTime,
		CookTime:     d.CookTime,
		Category:     d.Category,
	}
	if r.Servings < 1 {
		r.Servings = 1
	}
	if r.PrepTime < 0 {
		r.PrepTime = 0
	}
	if r.CookTime < 0 {
		r.CookTime = 0
	}
	if r.Category == "" {
		r.Category = DefaultCategory
	}
	return r
}

func renderAll(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = render(e)
	}
	return out
}

// Draft returns r as a Draft of plain-text entries.
func (r ParsedRecipe) Draft() Draft {
	return Draft{
		Name:         r.Name,
		Description:  r.Description,
		Ingredients:  plainEntries(r.Ingredients),
		Instructions: plainEntries(r.Instructions),
		Notes:        r.Notes,
		Servings:     r.Servings,
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		Category:     r.Category,
	}
}

// UnmarshalJSON accepts ingredients and instructions in any mix of shapes:
// strings, {"name","quantity","unit"} objects, {"step"} objects, or any
// other JSON value, which is kept as its literal text.
func (d *Draft) UnmarshalJSON(data []byte) error {
	var wire struct {
		Name         string            `json:"name"`
		Description  string            `json:"description"`
		Ingredients  []json.RawMessage `json:"ingredients"`
		Instructions []json.RawMessage `json:"instructions"`
		Notes        string            `json:"notes"`
		Servings     int               `json:"servings"`
		PrepTime     int               `json:"prepTime"`
		CookTime     int               `json:"cookTime"`
		Category     string            `json:"category"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*d = Draft{
		Name:         wire.Name,
		Description:  wire.Description,
		Ingredients:  decodeEntries(wire.Ingredients),
		Instructions: decodeEntries(wire.Instructions),
		Notes:        wire.Notes,
		Servings:     wire.Servings,
		PrepTime:     wire.PrepTime,
		CookTime:     wire.CookTime,
		Category:     wire.Category,
	}
	return nil
}

func decodeEntries(raws []json.RawMessage) []Entry {
	if len(raws) == 0 {
		return nil
	}
	out := make([]Entry, len(raws))
	for i, raw := range raws {
		out[i] = decodeEntry(raw)
	}
	return out
}

func decodeEntry(raw json.RawMessage) Entry {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return PlainText(s)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		if name, ok := obj["name"]; ok {
			return Structured{
				Name:     scalar(name),
				Quantity: scalar(obj["quantity"]),
				Unit:     scalar(obj["unit"]),
			}
		}
		if step, ok := obj["step"]; ok {
			return Step{Text: scalar(step)}
		}
	}
	return PlainText(strings.TrimSpace(string(raw)))
}

// scalar renders a JSON value as text: strings unquoted, null as empty,
// anything else as its literal JSON.
func scalar(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
