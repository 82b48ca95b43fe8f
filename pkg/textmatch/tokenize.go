// Package textmatch provides the syntactic text heuristics used by the
// clarification matching engine: tokenization and similarity ratios. All
// matching here is deliberately non-semantic; there is no embedding search.
//
// Tokenize intentionally appends singular forms next to plural tokens, so
// token multisets are wider than a plain split. Ratio scores therefore
// differ from a bare tokenizer's on plural-heavy text.
package textmatch

import (
	"strings"

	"github.com/jinzhu/inflection"
)

const minTokenLength = 3

// Tokenize lower-cases the text, splits on non-alphanumeric boundaries, and
// keeps tokens of at least three characters. For each token whose singular
// form differs, the singular is appended as well so plural phrasing still
// matches singular keyword hints. The original tokens are never removed.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isAlphanumeric(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, tok := range fields {
		if len(tok) < minTokenLength {
			continue
		}
		tokens = append(tokens, tok)
		if singular := inflection.Singular(tok); singular != tok && len(singular) >= minTokenLength {
			tokens = append(tokens, singular)
		}
	}
	return tokens
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
