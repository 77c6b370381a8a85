package evaluation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
)

// minStemLength matches the ROUGE reference tokenizer: short tokens are
// kept verbatim.
const minStemLength = 3

// Tokenize lowercases text, splits it on every non letter/digit rune and
// stems tokens longer than three runes.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) > minStemLength {
			f = english.Stem(f, true)
		}
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
