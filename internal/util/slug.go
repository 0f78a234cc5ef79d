// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any non-alphanumeric character.
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple consecutive hyphens.
	multipleHyphenRe = regexp.MustCompile(`-+`)
)

// Slugify converts a display name to a canonical URL slug. The slug is
// the source of truth for title and genre identity, so the same input
// must always produce the same output.
//
// Examples:
//
//	"Dragon Quest"    → "dragon-quest"
//	"Kingdom of Ash"  → "kingdom-of-ash"
//	"Café Noir"       → "cafe-noir"
//	"  multi   word " → "multi-word"
func Slugify(s string) string {
	// Decompose accented characters, then drop what isn't ASCII.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumericRe.ReplaceAllString(s, "-")
	s = multipleHyphenRe.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}
