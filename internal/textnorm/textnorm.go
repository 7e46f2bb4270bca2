// Package textnorm canonicalizes merchant and description text so that
// keyword matching is insensitive to case, accents, and statement artifacts.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Leading artifacts that banks prepend to transaction descriptions. These are
// applied after lowercasing, in order.
var (
	slashDateRe = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s+`)
	bracketRe   = regexp.MustCompile(`^\[[^\]]*\]\s*`)
	markerRe    = regexp.MustCompile(`\*(debit|credit)\*`)
	purchaseRe  = regexp.MustCompile(`^(purchase|compra)\s+`)
	spacesRe    = regexp.MustCompile(`\s+`)
)

// stripMarks decomposes accented characters and removes the combining marks,
// so "café" folds to "cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes text for matching: lowercase, accent fold, leading
// artifact strip, whitespace collapse. It is pure and idempotent; empty input
// yields an empty string.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ToLower(text)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	// Stripping one artifact can expose another at the new string start
	// ("[REF] 01/15 MAKRO" loses the bracket, then the date), so the strip
	// passes repeat until the string stops changing.
	for {
		prev := s
		s = slashDateRe.ReplaceAllString(s, "")
		s = isoDateRe.ReplaceAllString(s, "")
		s = bracketRe.ReplaceAllString(s, "")
		s = markerRe.ReplaceAllString(s, " ")
		s = purchaseRe.ReplaceAllString(s, "")
		s = spacesRe.ReplaceAllString(s, " ")
		s = strings.TrimSpace(s)
		if s == prev {
			return s
		}
	}
}

// SearchText builds the text a categorization rule matches against:
// normalized description and merchant joined by a single space. Either part
// may be absent.
func SearchText(description, merchant string) string {
	d := Normalize(description)
	m := Normalize(merchant)
	switch {
	case d == "":
		return m
	case m == "":
		return d
	}
	return d + " " + m
}
