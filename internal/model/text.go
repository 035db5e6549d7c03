package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Capitalize upper-cases the first rune of s and leaves the rest untouched.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// CanonicalCategory is the stored and queried form of a category: trimmed,
// lower-cased, then capitalized, so "ART" and "art" both become "Art".
func CanonicalCategory(s string) string {
	return Capitalize(strings.ToLower(strings.TrimSpace(s)))
}
