package voice

import (
	"regexp"
	"strings"
)

var (
	markdownReplacer = strings.NewReplacer(
		"**", "", // bold
		"__", "", // underline
		"~~", "", // strikethrough
		"*", "", // italic
		"`", "", // inline code
	)
	emojiRegex          = regexp.MustCompile(`[\p{So}\x{FE0F}\x{200D}\x{20E3}\x{1F3FB}-\x{1F3FF}]`)
	multipleSpacesRegex = regexp.MustCompile(`\s+`)
)

// NormalizeText strips markdown emphasis markers and emoji and collapses
// whitespace, so an answer reads aloud without its formatting.
// Text that normalises to nothing is returned unchanged.
func NormalizeText(text string) string {
	out := markdownReplacer.Replace(text)
	out = emojiRegex.ReplaceAllString(out, "")
	out = multipleSpacesRegex.ReplaceAllString(out, " ")
	out = strings.TrimSpace(out)
	if out == "" {
		return text
	}
	return out
}
