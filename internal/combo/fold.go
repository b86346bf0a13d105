package combo

import (
	"slices"
	"unicode"
)

// foldRune returns the smallest rune of the simple case folding orbit of r,
// so that runes equal under strings.EqualFold fold to the same rune.
func foldRune(r rune) rune {
	folded := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		folded = min(folded, f)
	}
	return folded
}

// foldRunes returns the runes of s, each folded with foldRune.
func foldRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = foldRune(r)
	}
	return runes
}

// indexFold returns the rune index of the first occurrence of substr in s,
// comparing rune by rune ignoring case, or -1. A rune never matches a
// sequence of runes, so "ß" does not match "ss".
func indexFold(s, substr string) int {
	haystack, needle := foldRunes(s), foldRunes(substr)
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}
