package types

import "time"

// ChatMessage represents a chat message
type ChatMessage struct {
	Role    string `json:"role"`    // user, assistant, system
	Content string `json:"content"` // Message content
}

// AskRequest represents a question or conversation sent to /api/ask
type AskRequest struct {
	Question string        `json:"question,omitempty"`
	Messages []ChatMessage `json:"messages,omitempty"`
}

// TokenUsage represents token usage reported by the server
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// AskResponse represents the answer returned by /api/ask
type AskResponse struct {
	Answer string      `json:"answer"`
	Tokens *TokenUsage `json:"tokens,omitempty"`
}

// SpeechRequest represents a /api/tts request body
type SpeechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// Voice represents a selectable voice
type Voice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VoicesResponse represents the voice catalogue
type VoicesResponse struct {
	Voices  []Voice `json:"voices"`
	Default string  `json:"default"`
}

// ErrorResponse represents an error body returned by the server
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// LogRecord represents one performance log entry
type LogRecord struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	StartTime  time.Time      `json:"startTime"`
	EndTime    *time.Time     `json:"endTime,omitempty"`
	Duration   *float64       `json:"duration,omitempty"`
	Status     string         `json:"status"`
	Tokens     *TokenUsage    `json:"tokens,omitempty"`
	AudioSize  *int           `json:"audioSize,omitempty"`
	TextLength *int           `json:"textLength,omitempty"`
	Error      string         `json:"error,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// LogsResponse represents the performance log listing
type LogsResponse struct {
	Logs  []LogRecord `json:"logs"`
	Count int         `json:"count"`
}

// ClearLogsResponse represents the result of clearing logs
type ClearLogsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UpstreamCheckResponse represents the upstream connectivity probe
type UpstreamCheckResponse struct {
	Success   bool   `json:"success"`
	HasAPIKey bool   `json:"hasApiKey"`
	Message   string `json:"message,omitempty"`
	Answer    string `json:"answer,omitempty"`
	Error     string `json:"error,omitempty"`
}
