// Package upstream talks to the OpenAI-compatible completion and speech
// endpoints.
package upstream

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/Vdnsh/groq-qna/internal/domain"
)

// DefaultTimeout is used when no request timeout is configured.
const DefaultTimeout = 60 * time.Second

// Options 上游客户端配置
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o Options) baseURL() string {
	return strings.TrimRight(o.BaseURL, "/")
}

// CompletionClient implements domain.CompletionProvider on go-openai.
type CompletionClient struct {
	client *openai.Client
	logger *slog.Logger
}

// NewCompletionClient creates a completion client for opts.BaseURL.
func NewCompletionClient(opts Options, logger *slog.Logger) *CompletionClient {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	if base := opts.baseURL(); base != "" {
		cfg.BaseURL = base
	}
	cfg.HTTPClient = &http.Client{Timeout: opts.timeout()}

	return &CompletionClient{
		client: openai.NewClientWithConfig(cfg),
		logger: logger,
	}
}

// Complete sends one chat completion request.
func (c *CompletionClient) Complete(ctx context.Context, call domain.CompletionCall) (*domain.Completion, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(call.Messages))
	for _, m := range call.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    call.Model,
		Messages: messages,
	})
	if err != nil {
		c.logger.Warn("completion request failed", "model", call.Model, "error", err)
		return nil, completionError(err)
	}

	out := &domain.Completion{}
	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		out.Content = choice.Message.Content
		out.HasContent = choice.Message.Content != ""
		out.FinishReason = string(choice.FinishReason)
	}
	if u := resp.Usage; u.TotalTokens > 0 || u.PromptTokens > 0 || u.CompletionTokens > 0 {
		out.Usage = &domain.TokenUsage{
			Prompt:     u.PromptTokens,
			Completion: u.CompletionTokens,
			Total:      u.TotalTokens,
		}
	}
	return out, nil
}

// completionError maps go-openai failures onto UpstreamError. Transport
// failures carry status 0.
func completionError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return withCause(domain.NewUpstreamError(apiErr.HTTPStatusCode, apiErr.Message), err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return withCause(domain.NewUpstreamError(reqErr.HTTPStatusCode, msg), err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return withCause(domain.NewUpstreamError(0, "upstream request timed out or was cancelled"), err)
	}
	return withCause(domain.NewUpstreamError(0, ""), err)
}

// withCause keeps the original error reachable for logging while the
// DomainError still matches domain.ErrUpstream.
func withCause(err error, cause error) error {
	var de *domain.DomainError
	if errors.As(err, &de) {
		de.Err = errors.Join(domain.ErrUpstream, cause)
	}
	return err
}
