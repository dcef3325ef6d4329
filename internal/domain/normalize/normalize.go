// Package normalize canonicalizes display names and handles for fuzzy
// comparison.
package normalize

import (
	"strings"
	"unicode"
)

// Name lowercases the input, strips everything that is not a letter, digit,
// or space, and collapses whitespace runs to single spaces. Deterministic
// and pure. Empty or whitespace-only input normalizes to ""; callers must
// treat an empty result as insufficient signal, not as a null value.
//
// The same canonicalization applies to names and handles.
func Name(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens returns the whitespace-split tokens of the normalized input,
// sorted order is the caller's concern.
func Tokens(text string) []string {
	return strings.Fields(Name(text))
}
