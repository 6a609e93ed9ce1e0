package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Vdnsh/groq-qna/internal/domain"
	"github.com/Vdnsh/groq-qna/internal/domain/entity"
	"github.com/Vdnsh/groq-qna/pkg/perflog"
)

const (
	// DefaultChatModel 默认补全模型
	DefaultChatModel = "llama-3.1-8b-instant"

	pingPrompt            = "Say hello from Groq"
	noAnswerFallback      = "No answer received"
	noPingAnswerFallback  = "No response received"
	upstreamErrorFallback = "Failed to get response from completion service"
	missingKeyMessage     = "API key not configured. Please add GROQ_API_KEY to .env.local and restart the server."
)

// CompletionConfig 问答用例配置
type CompletionConfig struct {
	Model  string
	HasKey bool
}

// completionUsecase is CompletionUsecase interfaceofimplementation。
// It assembles the conversation, calls the provider and records a perf timer
// around every upstream attempt.
type completionUsecase struct {
	provider domain.CompletionProvider
	perf     *perflog.Recorder
	cfg      CompletionConfig
	logger   *slog.Logger
}

// NewCompletionUsecase create一个newof问答用例实例。
func NewCompletionUsecase(
	provider domain.CompletionProvider,
	perf *perflog.Recorder,
	cfg CompletionConfig,
	logger *slog.Logger,
) domain.CompletionUsecase {
	if cfg.Model == "" {
		cfg.Model = DefaultChatModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &completionUsecase{
		provider: provider,
		perf:     perf,
		cfg:      cfg,
		logger:   logger,
	}
}

// HasCredential reports whether an upstream API key is configured.
func (u *completionUsecase) HasCredential() bool {
	return u.cfg.HasKey
}

// Ask 回答问题或续写会话。
//
// Messages, when present, take precedence over Question. The conversation
// sent upstream always starts with exactly one system message and carries
// at most MaxHistoryMessages other turns.
func (u *completionUsecase) Ask(ctx context.Context, req *domain.AskRequest) (*domain.AskResult, error) {
	// 校验失败也要留下计时记录
	timer := u.perf.Start(perflog.KindText, map[string]any{
		"endpoint": "/api/ask",
		"model":    u.cfg.Model,
	})

	if req == nil {
		return nil, u.fail(timer, domain.NewInvalidInputError("Question or messages are required"))
	}

	turns, err := BuildConversation(req)
	if err != nil {
		return nil, u.fail(timer, err)
	}

	if !u.cfg.HasKey {
		return nil, u.fail(timer, domain.NewConfigurationError(missingKeyMessage))
	}

	out, err := u.complete(ctx, timer, turns)
	if err != nil {
		return nil, err
	}

	answer := out.Content
	if !out.HasContent {
		answer = noAnswerFallback
	}
	return &domain.AskResult{Answer: answer, Tokens: out.Usage}, nil
}

// Ping sends a fixed prompt to verify the credential and connectivity.
func (u *completionUsecase) Ping(ctx context.Context) (*domain.AskResult, error) {
	if !u.cfg.HasKey {
		return nil, domain.NewConfigurationError("GROQ_API_KEY not found in environment variables")
	}

	timer := u.perf.Start(perflog.KindText, map[string]any{
		"endpoint": "/api/upstream/check",
		"model":    u.cfg.Model,
	})
	out, err := u.complete(ctx, timer, []domain.ChatTurn{{Role: entity.RoleUser, Content: pingPrompt}})
	if err != nil {
		return nil, err
	}

	answer := out.Content
	if !out.HasContent {
		answer = noPingAnswerFallback
	}
	return &domain.AskResult{Answer: answer, Tokens: out.Usage}, nil
}

// fail ends timer with err and returns it.
func (u *completionUsecase) fail(timer string, err error) error {
	u.perf.End(timer, perflog.Outcome{Status: perflog.StatusError, Error: errorMessage(err)})
	return err
}

// complete calls the provider and ends timer with the outcome.
func (u *completionUsecase) complete(ctx context.Context, timer string, turns []domain.ChatTurn) (*domain.Completion, error) {
	meta := map[string]any{"messages": len(turns)}

	out, err := u.provider.Complete(ctx, domain.CompletionCall{Model: u.cfg.Model, Messages: turns})
	if err != nil {
		err = normalizeUpstreamError(err, upstreamErrorFallback)
		u.perf.End(timer, perflog.Outcome{Status: perflog.StatusError, Error: errorMessage(err), Metadata: meta})
		u.logger.Error("completion failed",
			"model", u.cfg.Model,
			"status", domain.UpstreamStatus(err),
			"error", err,
		)
		return nil, err
	}

	outcome := perflog.Outcome{Status: perflog.StatusSuccess, Metadata: meta}
	if out.Usage != nil {
		outcome.Tokens = &perflog.Tokens{
			Prompt:     out.Usage.Prompt,
			Completion: out.Usage.Completion,
			Total:      out.Usage.Total,
		}
	}
	if out.FinishReason != "" {
		meta["finishReason"] = out.FinishReason
	}
	u.perf.End(timer, outcome)
	return out, nil
}

// BuildConversation turns an ask request into the upstream turn list.
//
// The first system message in Messages is kept (or DefaultSystemPrompt is
// inserted) and the remaining non-system turns are windowed to the last
// MaxHistoryMessages. With no Messages the Question becomes the single user turn.
func BuildConversation(req *domain.AskRequest) ([]domain.ChatTurn, error) {
	if len(req.Messages) == 0 {
		if strings.TrimSpace(req.Question) == "" {
			return nil, domain.NewInvalidInputError("Question or messages are required")
		}
		return []domain.ChatTurn{
			{Role: entity.RoleSystem, Content: domain.DefaultSystemPrompt},
			{Role: entity.RoleUser, Content: req.Question},
		}, nil
	}

	var system *domain.ChatTurn
	rest := make([]domain.ChatTurn, 0, len(req.Messages))
	for i, m := range req.Messages {
		if !m.Role.Valid() {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("messages[%d]: invalid role %q", i, m.Role))
		}
		if m.Role == entity.RoleSystem {
			if system == nil {
				s := m
				system = &s
			}
			continue
		}
		rest = append(rest, m)
	}
	if system == nil {
		system = &domain.ChatTurn{Role: entity.RoleSystem, Content: domain.DefaultSystemPrompt}
	}
	if len(rest) > domain.MaxHistoryMessages {
		rest = rest[len(rest)-domain.MaxHistoryMessages:]
	}

	return append([]domain.ChatTurn{*system}, rest...), nil
}

// normalizeUpstreamError fills an empty upstream message with fallback and
// wraps anything that is not already a DomainError.
func normalizeUpstreamError(err error, fallback string) error {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		return &domain.DomainError{
			Code:    "UPSTREAM_ERROR",
			Message: fallback,
			Err:     errors.Join(domain.ErrUpstream, err),
		}
	}
	if strings.TrimSpace(de.Message) == "" {
		de.Message = fallback
	}
	return err
}

func errorMessage(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return de.UserMessage()
	}
	return err.Error()
}
