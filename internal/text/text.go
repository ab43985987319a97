// Package text provides normalization helpers for the bilingual
// (Arabic/English) free text found in directory listings.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var whitespace = unicode.White_Space

// arabicRanges covers the Arabic blocks seen in directory markup: the main
// block, Supplement, Extended-A and both Presentation Forms blocks.
var arabicRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0600, Hi: 0x06FF, Stride: 1},
		{Lo: 0x0750, Hi: 0x077F, Stride: 1},
		{Lo: 0x08A0, Hi: 0x08FF, Stride: 1},
		{Lo: 0xFB50, Hi: 0xFDFF, Stride: 1},
		{Lo: 0xFE70, Hi: 0xFEFF, Stride: 1},
	},
}

// Clean collapses whitespace runs to single spaces, trims both ends and
// NFC-normalizes the result. The empty string passes through unchanged.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.Is(whitespace, r) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// IsArabic reports whether s contains at least one character from the
// Arabic Unicode blocks. A single Arabic character is enough to route a
// fragment to the Arabic-side field.
func IsArabic(s string) bool {
	for _, r := range s {
		if unicode.Is(arabicRanges, r) {
			return true
		}
	}
	return false
}

// Digits strips everything but decimal digits from s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ContainsAny reports whether the lowercased s contains any of the given
// lowercase substrings.
func ContainsAny(s string, subs []string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
