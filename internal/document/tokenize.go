package document

import "regexp"

// wordRegex matches a maximal run of word characters: Unicode letters,
// digits, and underscore.
var wordRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize extracts the ordered words of text with their byte offsets.
// Pure and deterministic; empty input or input with no word characters
// yields an empty slice.
func Tokenize(text string) []Word {
	matches := wordRegex.FindAllStringIndex(text, -1)
	words := make([]Word, 0, len(matches))
	for _, m := range matches {
		words = append(words, Word{
			Text:  text[m[0]:m[1]],
			Start: m[0],
			End:   m[1],
		})
	}
	return words
}
