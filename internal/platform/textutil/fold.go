// Package textutil holds small text helpers shared by parsing and the
// marker gazetteer.
package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold lowercases text with full Unicode case folding so multilingual
// aliases ("Späti", "SCHLANGE") compare reliably against message text.
// A Caser is stateful, so one is created per call.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// TokenCount returns the number of whitespace-delimited tokens.
func TokenCount(s string) int {
	return len(strings.Fields(s))
}
