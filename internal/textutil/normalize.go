package textutil

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// germanReplacer spells out umlauts the way German orthography does when the
// diacritic is unavailable, so "München" and "Muenchen" converge.
var germanReplacer = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"ß", "ss",
)

// Normalize converts a raw title or name into its canonical comparable form.
// The result is lower-case ASCII with single spaces between words. Stored text
// is never passed through Normalize; it is applied at comparison time only.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	t := transform.Chain(norm.NFC, runes.Remove(runes.Predicate(isControl)))
	composed, _, err := transform.String(t, text)
	if err != nil {
		composed = text
	}
	folded := cases.Fold().String(composed)
	folded = germanReplacer.Replace(folded)
	ascii := unidecode.Unidecode(folded)
	return strings.Join(strings.Fields(strings.ToLower(ascii)), " ")
}

func isControl(r rune) bool {
	return unicode.IsControl(r) && !unicode.IsSpace(r)
}
