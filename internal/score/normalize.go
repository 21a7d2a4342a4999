package score

import (
	"strings"
	"unicode"

	"github.com/xrash/smetrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases a name and strips diacritics so "Müller" and
// "Muller" compare equal. Punctuation becomes a separator and runs of
// whitespace collapse to single spaces.
func Normalize(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(out)

	var b strings.Builder
	b.Grow(len(out))
	for _, r := range out {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// PhoneticCode returns the Soundex code used for phonetic blocking.
// Names that normalize to nothing ASCII yield the empty code, which
// callers treat as unblockable.
func PhoneticCode(name string) string {
	n := Normalize(name)
	var b strings.Builder
	for _, r := range n {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return smetrics.Soundex(strings.ToUpper(b.String()))
}
