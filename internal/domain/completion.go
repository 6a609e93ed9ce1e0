package domain

import (
	"context"

	"github.com/Vdnsh/groq-qna/internal/domain/entity"
)

// ============ Usecase 层内部使用of DTO ============

// DefaultSystemPrompt is inserted when a conversation carries no system message.
const DefaultSystemPrompt = "You are a helpful assistant."

// MaxHistoryMessages is how many non-system turns are forwarded upstream.
const MaxHistoryMessages = 20

// ChatTurn one {role, content} pair sent upstream
type ChatTurn struct {
	Role    entity.Role
	Content string
}

// AskRequest 问答请求：question or messages
type AskRequest struct {
	Question string
	Messages []ChatTurn
}

// TokenUsage token 用量
type TokenUsage struct {
	Prompt     int
	Completion int
	Total      int
}

// AskResult 问答结果
type AskResult struct {
	Answer string
	Tokens *TokenUsage
}

// CompletionCall is one request to the completion service.
type CompletionCall struct {
	Model    string
	Messages []ChatTurn
}

// Completion is the parsed reply of the completion service.
type Completion struct {
	// Content is the first choice's message content; HasContent is false when
	// the service returned no choices or an empty message.
	Content      string
	HasContent   bool
	FinishReason string
	Usage        *TokenUsage
}

// CompletionProvider 上游文本补全服务
type CompletionProvider interface {
	// Complete sends the turns upstream. Non-success replies are returned as UpstreamError.
	Complete(ctx context.Context, call CompletionCall) (*Completion, error)
}

// CompletionUsecase 问答用例interface
type CompletionUsecase interface {
	// Ask answers a question or continues a conversation.
	Ask(ctx context.Context, req *AskRequest) (*AskResult, error)

	// Ping sends a trivial prompt to verify the upstream credential and connectivity.
	Ping(ctx context.Context) (*AskResult, error)

	// HasCredential reports whether an upstream API key is configured.
	HasCredential() bool
}
