package extract

import (
	"strings"
	"unicode"
)

const minWordLength = 3

// Words tokenizes page text into deduplicated lowercase vocabulary
// candidates. Only runs of ASCII letters at least three characters long
// qualify; a run touching digits, underscores, or non-ASCII letters is
// excluded entirely, trading recall for precision on English text. The
// returned order is unspecified.
func Words(text string) []string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	seen := make(map[string]struct{})
	words := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) < minWordLength || !asciiLetters(token) {
			continue
		}
		lowered := strings.ToLower(token)
		if _, ok := seen[lowered]; ok {
			continue
		}
		seen[lowered] = struct{}{}
		words = append(words, lowered)
	}
	return words
}

func asciiLetters(token string) bool {
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
