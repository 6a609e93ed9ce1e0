package chatstore

import (
	"strings"

	"github.com/Vdnsh/groq-qna/internal/domain/entity"
)

const titleWords = 7

// DeriveTitle returns the first seven whitespace-separated words of text, or
// the default title when text is blank.
func DeriveTitle(text string) string {
	words := strings.Fields(text)
	if len(words) > titleWords {
		words = words[:titleWords]
	}
	if len(words) == 0 {
		return entity.DefaultChatTitle
	}
	return strings.Join(words, " ")
}
