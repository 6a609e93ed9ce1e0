// Package textchunk splits long text into sentence-aligned segments for speech synthesis.
package textchunk

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// sentencePattern matches a run of text ending in terminal punctuation, or
// the unterminated tail of the input.
var sentencePattern = regexp.MustCompile(`[^.!?]*[.!?]+|[^.!?]+$`)

// Sentences splits text into sentence-like units. Concatenating the result
// reproduces text.
func Sentences(text string) []string {
	units := sentencePattern.FindAllString(text, -1)
	if len(units) == 0 {
		return []string{text}
	}
	return units
}

// Split greedily packs sentences into chunks of at most maxChunkSize runes.
// A single sentence longer than maxChunkSize becomes its own oversized chunk.
// The result is never empty: if nothing survives trimming, it is []string{text}.
func Split(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		size = 0
	}

	for _, sentence := range Sentences(text) {
		n := utf8.RuneCountInString(sentence)
		if size+n > maxChunkSize && size > 0 {
			flush()
		}
		current.WriteString(sentence)
		size += n
	}
	flush()

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
