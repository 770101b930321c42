// Package extractor parses the carrier page's visible text into structured fields.
// Everything here is pure and safe for concurrent use.
package extractor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// WindowSize is the number of characters inspected from a label onwards.
const WindowSize = 150

var spaceReplacer = strings.NewReplacer(
	"\u00a0", " ",
	"\u202f", " ",
	"\u2007", " ",
)

// Normalize replaces the non-breaking space variants the page uses inside labels.
func Normalize(text string) string {
	return spaceReplacer.Replace(text)
}

// foldAccents strips diacritical marks so "Búsqueda" matches "Busqueda".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// window returns up to size characters of text starting at the first match of label.
func window(text string, label *regexp.Regexp, size int) (string, bool) {
	loc := label.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[0]:]

	end, n := 0, 0
	for end < len(rest) && n < size {
		_, w := utf8.DecodeRuneInString(rest[end:])
		end += w
		n++
	}
	return rest[:end], true
}
