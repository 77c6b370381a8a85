// Package textnorm turns raw article content into plain cleaned text.
package textnorm

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"

	"FinNewsAnalyzer/internal/ports"
)

// Normalizer strips markup and punctuation noise from article bodies.
type Normalizer struct {
	policy *bluemonday.Policy
}

var _ ports.TextNormalizer = (*Normalizer)(nil)

// NewNormalizer creates a normalizer that drops every HTML element.
func NewNormalizer() *Normalizer {
	return &Normalizer{policy: bluemonday.StrictPolicy()}
}

// Normalize removes tags, decodes entities, keeps letters, digits,
// underscores and sentence periods, and collapses whitespace.
func (n *Normalizer) Normalize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	text := raw
	if strings.Contains(text, "<") {
		text = n.policy.Sanitize(text)
	}
	text = html.UnescapeString(text)

	text = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '.':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, text)

	return strings.Join(strings.Fields(text), " "), nil
}
