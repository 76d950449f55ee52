package checklist

import (
	"strings"
	"unicode"
)

// Normalize folds item text for matching: lowercase, punctuation to spaces,
// whitespace collapsed. Used by the carry-forward merge and by the interview
// question deduper.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(' ')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
