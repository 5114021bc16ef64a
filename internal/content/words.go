package content

import (
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/words"
)

// WordCount counts the words in a markup body using UAX #29 segmentation.
// Tokens without a letter or digit (whitespace, punctuation) do not count.
func WordCount(body []byte) int {
	count := 0
	tokens := words.FromBytes(body)
	for tokens.Next() {
		if tokenIsWord(tokens.Value()) {
			count++
		}
	}
	return count
}

func tokenIsWord(token []byte) bool {
	for i := 0; i < len(token); {
		r, size := utf8.DecodeRune(token[i:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
		i += size
	}
	return false
}

// wordsPerMinute is the reading speed assumed for the reading-time estimate.
const wordsPerMinute = 200

// ReadingTimeMinutes estimates reading time for a word count. Never below 1.
func ReadingTimeMinutes(wordCount int) int {
	minutes := (wordCount + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
