// Package textnorm folds Vietnamese personal names into the unaccented ASCII
// forms that bank transfer references and account-holder fields accept.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningDiacritics is the Combining Diacritical Marks block (U+0300..U+036F).
// Marks outside it belong to other scripts and are kept.
var combiningDiacritics = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// đ/Đ carry a stroke, not a combining mark, so decomposition leaves them alone.
func unstroke(r rune) rune {
	switch r {
	case 'đ':
		return 'd'
	case 'Đ':
		return 'D'
	}
	return r
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningDiacritics)), runes.Map(unstroke), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		// The chain only fails on invalid UTF-8 input; fall back to rune-wise stripping.
		return stripFallback(s)
	}
	return out
}

func stripFallback(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToValidUTF8(s, "\uFFFD")) {
		if unicode.Is(combiningDiacritics, r) {
			continue
		}
		b.WriteRune(unstroke(r))
	}
	return norm.NFC.String(b.String())
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// Compact strips diacritics and removes every whitespace rune, producing a
// token safe for URL query values and transfer descriptions.
//
//	Compact("Nguyễn Văn Đức") == "NguyenVanDuc"
func Compact(name string) string {
	return strings.Map(func(r rune) rune {
		if isSpace(r) {
			return -1
		}
		return r
	}, fold(name))
}

// UpperSpaced strips diacritics and upper-cases the name, keeping its spacing.
//
//	UpperSpaced("Nguyễn Văn Đức") == "NGUYEN VAN DUC"
func UpperSpaced(name string) string {
	// Case mapping can emit combining marks (ǰ -> J + U+030C), so fold after it.
	return fold(cases.Upper(language.Und).String(name))
}
