package recipe

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	titleScanLines    = 5
	metadataScanLines = 10
	minTitleLen       = 3
)

// Lines splits raw text into trimmed, non-empty lines in document order.
// It is the only step that discards input.
func Lines(raw string) []string {
	var out []string
	for _, l := range strings.Split(raw, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// findTitle returns the index and text of the first line in the head of the
// document that is not boilerplate. When every candidate is rejected, line 0
// is used anyway.
func findTitle(lines []string) (int, string) {
	for i := 0; i < len(lines) && i < titleScanLines; i++ {
		if !isBoilerplate(lines[i]) {
			return i, lines[i]
		}
	}
	return 0, lines[0]
}

func isBoilerplate(line string) bool {
	if utf8.RuneCountInString(line) < minTitleLen {
		return true
	}
	if numericOnlyRe.MatchString(line) {
		return true
	}
	return containsAny(strings.ToLower(line), boilerplateMarkers)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

type metadata struct {
	servings int
	prepTime int
	cookTime int
}

// scanMetadata reads timing and yield from the first lines. Every rule runs
// on every line, and a later match overwrites an earlier one.
func scanMetadata(lines []string) metadata {
	m := metadata{servings: 1}
	head := lines[:min(len(lines), metadataScanLines)]
	for _, line := range head {
		if v, ok := matchMinutes(prepTimeRe, line); ok {
			m.prepTime = v
		}
		if v, ok := matchMinutes(cookTimeRe, line); ok {
			m.cookTime = v
		}
		for _, re := range servingsRes {
			if v, ok := matchLastInt(re, line); ok && v > 0 {
				m.servings = v
			}
		}
	}
	return m
}

func matchMinutes(re *regexp.Regexp, line string) (int, bool) {
	sm := re.FindStringSubmatch(line)
	if sm == nil {
		return 0, false
	}
	n, ok := atoi(sm[1])
	if !ok {
		return 0, false
	}
	if strings.Contains(strings.ToLower(sm[2]), "hour") {
		n *= 60
	}
	return n, true
}

func matchLastInt(re *regexp.Regexp, line string) (int, bool) {
	sm := re.FindStringSubmatch(line)
	if sm == nil {
		return 0, false
	}
	return atoi(sm[len(sm)-1])
}

// atoi rejects values that would overflow once converted to minutes.
func atoi(s string) (int, bool) {
	if len(s) > 9 {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
