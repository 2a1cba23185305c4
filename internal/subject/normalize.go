package subject

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds case, strips diacritics and collapses whitespace so that
// "Kylian Mbappé" and "kylian  mbappe" compare equal.
func Normalize(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	return strings.Join(strings.Fields(cases.Fold().String(stripped)), " ")
}

// Matches reports whether candidate names the entry or one of its aliases
func (e Entry) Matches(candidate string) bool {
	want := Normalize(candidate)
	if want == "" {
		return false
	}
	if Normalize(e.Name) == want {
		return true
	}
	for _, alias := range e.Aliases {
		if Normalize(alias) == want {
			return true
		}
	}
	return false
}
