package dto

// ============ 问答 API（HTTP 层使用）============

// AskMessage one conversation turn
type AskMessage struct {
	Role    string `json:"role"`    // user, assistant, system
	Content string `json:"content"` // 消息内容
}

// AskRequest 问答请求
type AskRequest struct {
	Question string       `json:"question,omitempty"`
	Messages []AskMessage `json:"messages,omitempty"`
}

// TokenUsage token 用量
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// AskResponse 问答响应
type AskResponse struct {
	Answer string      `json:"answer"`
	Tokens *TokenUsage `json:"tokens,omitempty"`
}
