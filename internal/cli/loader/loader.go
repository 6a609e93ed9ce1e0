package loader

import (
	"fmt"
	"os"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/Vdnsh/groq-qna/internal/domain/entity"
)

// KindTranscript is the only kind of file voxctl reads and writes
const KindTranscript = "ChatTranscript"

// TranscriptFile represents a chat transcript stored as YAML.
//
// sigs.k8s.io/yaml converts to JSON first, so the field tags are json tags.
type TranscriptFile struct {
	// Kind must be "ChatTranscript"
	Kind string `json:"kind"`
	// Spec contains the transcript
	Spec TranscriptSpec `json:"spec"`
}

// TranscriptSpec is the body of a transcript
type TranscriptSpec struct {
	Title     string              `json:"title,omitempty"`
	CreatedAt *time.Time          `json:"createdAt,omitempty"`
	Messages  []TranscriptMessage `json:"messages"`
}

// TranscriptMessage is one message of a transcript
type TranscriptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LoadFromFile loads a transcript from a YAML file
func LoadFromFile(path string) (*TranscriptFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML transcript
func Parse(data []byte) (*TranscriptFile, error) {
	var file TranscriptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if file.Kind == "" {
		return nil, fmt.Errorf("'kind' field is required")
	}
	if file.Kind != KindTranscript {
		return nil, fmt.Errorf("invalid kind '%s', must be '%s'", file.Kind, KindTranscript)
	}
	if len(file.Spec.Messages) == 0 {
		return nil, fmt.Errorf("spec.messages is required and must not be empty")
	}
	for i, m := range file.Spec.Messages {
		if _, err := entity.ParseRole(m.Role); err != nil {
			return nil, fmt.Errorf("spec.messages[%d]: %w", i, err)
		}
		if strings.TrimSpace(m.Content) == "" {
			return nil, fmt.Errorf("spec.messages[%d].content is required", i)
		}
	}

	return &file, nil
}

// FromChat builds a transcript of chat
func FromChat(chat *entity.Chat) *TranscriptFile {
	created := time.UnixMilli(chat.CreatedAt).UTC()
	file := &TranscriptFile{
		Kind: KindTranscript,
		Spec: TranscriptSpec{
			Title:     chat.Title,
			CreatedAt: &created,
			Messages:  make([]TranscriptMessage, 0, len(chat.Messages)),
		},
	}
	for _, m := range chat.Messages {
		file.Spec.Messages = append(file.Spec.Messages, TranscriptMessage{Role: string(m.Role), Content: m.Content})
	}
	return file
}

// Marshal encodes the transcript as YAML
func (f *TranscriptFile) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

// NewMessages converts the transcript messages for the chat store.
// Roles are normalized to lower case.
func (f *TranscriptFile) NewMessages() []entity.NewMessage {
	out := make([]entity.NewMessage, 0, len(f.Spec.Messages))
	for _, m := range f.Spec.Messages {
		role, err := entity.ParseRole(m.Role)
		if err != nil {
			continue
		}
		out = append(out, entity.NewMessage{Role: role, Content: m.Content})
	}
	return out
}
