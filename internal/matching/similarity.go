package matching

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Ratio returns the case-insensitive similarity of a and b in [0, 1].
//
// It is the Ratcliff/Obershelp ratio 2*M/T computed by difflib's
// SequenceMatcher over runes, with the junk heuristic off. The pair is put in
// canonical order first so that Ratio(a, b) == Ratio(b, a).
func Ratio(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a > b {
		a, b = b, a
	}
	if a == "" && b == "" {
		return 1
	}
	return difflib.NewMatcherWithJunk(runes(a), runes(b), false, nil).Ratio()
}

// runes splits s into one-rune strings, the element type difflib compares.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
