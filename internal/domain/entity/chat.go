package entity

import (
	"fmt"
	"strings"
)

// DefaultChatTitle is the title a chat carries until its first user message.
const DefaultChatTitle = "New Chat"

// Role 消息角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// ParseRole accepts a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// TTSStatus is the synthesis/playback state of one message in the UI.
type TTSStatus string

const (
	TTSIdle    TTSStatus = "idle"
	TTSLoading TTSStatus = "loading"
	TTSReady   TTSStatus = "ready"
	TTSPlaying TTSStatus = "playing"
	TTSError   TTSStatus = "error"
)

// TTSState is per-session speech state attached to a message. Never persisted.
type TTSState struct {
	Status   TTSStatus
	Voice    string
	AudioRef string
}

// Message Chat消息
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds

	TTS *TTSState `json:"-"`
}

// NewMessage is the caller-supplied part of a message; the store assigns the rest.
type NewMessage struct {
	Role    Role
	Content string
}

// Chat 会话
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt int64     `json:"createdAt"` // unix milliseconds
	UpdatedAt int64     `json:"updatedAt"` // unix milliseconds
	Messages  []Message `json:"messages"`
}

// LastMessage returns the most recent message, if any.
func (c *Chat) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// LastAssistantMessage returns the most recent assistant reply, if any.
func (c *Chat) LastAssistantMessage() (Message, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i], true
		}
	}
	return Message{}, false
}
