package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vdnsh/groq-qna/internal/domain"
	"github.com/Vdnsh/groq-qna/internal/domain/entity"
	"github.com/Vdnsh/groq-qna/internal/domain/mocks"
	"github.com/Vdnsh/groq-qna/pkg/perflog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCompletion(provider domain.CompletionProvider, hasKey bool) (domain.CompletionUsecase, *perflog.Recorder) {
	perf := perflog.New(10, testLogger())
	uc := NewCompletionUsecase(provider, perf, CompletionConfig{Model: "test-model", HasKey: hasKey}, testLogger())
	return uc, perf
}

func turns(n int, role entity.Role) []domain.ChatTurn {
	out := make([]domain.ChatTurn, n)
	for i := range out {
		out[i] = domain.ChatTurn{Role: role, Content: fmt.Sprintf("m%d", i)}
	}
	return out
}

func TestBuildConversation(t *testing.T) {
	tests := []struct {
		name      string
		req       *domain.AskRequest
		wantLen   int
		wantFirst domain.ChatTurn
		wantLast  string
		wantErr   bool
	}{
		{
			name:      "问题only",
			req:       &domain.AskRequest{Question: "why is the sky blue"},
			wantLen:   2,
			wantFirst: domain.ChatTurn{Role: entity.RoleSystem, Content: domain.DefaultSystemPrompt},
			wantLast:  "why is the sky blue",
		},
		{
			name:    "blank question",
			req:     &domain.AskRequest{Question: "  "},
			wantErr: true,
		},
		{
			name:      "messages win over question",
			req:       &domain.AskRequest{Question: "ignored", Messages: turns(3, entity.RoleUser)},
			wantLen:   4,
			wantFirst: domain.ChatTurn{Role: entity.RoleSystem, Content: domain.DefaultSystemPrompt},
			wantLast:  "m2",
		},
		{
			name:      "history windowed to last 20",
			req:       &domain.AskRequest{Messages: turns(25, entity.RoleUser)},
			wantLen:   21,
			wantFirst: domain.ChatTurn{Role: entity.RoleSystem, Content: domain.DefaultSystemPrompt},
			wantLast:  "m24",
		},
		{
			name: "first caller system message kept",
			req: &domain.AskRequest{Messages: append([]domain.ChatTurn{
				{Role: entity.RoleSystem, Content: "be brief"},
				{Role: entity.RoleSystem, Content: "second system"},
			}, turns(2, entity.RoleUser)...)},
			wantLen:   3,
			wantFirst: domain.ChatTurn{Role: entity.RoleSystem, Content: "be brief"},
			wantLast:  "m1",
		},
		{
			name:    "invalid role",
			req:     &domain.AskRequest{Messages: []domain.ChatTurn{{Role: "robot", Content: "x"}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildConversation(tt.req)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			require.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.wantFirst, got[0])
			assert.Equal(t, tt.wantLast, got[len(got)-1].Content)

			systems := 0
			for _, turn := range got {
				if turn.Role == entity.RoleSystem {
					systems++
				}
			}
			assert.Equal(t, 1, systems)
		})
	}
}

func TestAsk_Success(t *testing.T) {
	provider := &mocks.MockCompletionProvider{
		CompleteFunc: func(ctx context.Context, call domain.CompletionCall) (*domain.Completion, error) {
			return &domain.Completion{
				Content:      "pong",
				HasContent:   true,
				FinishReason: "stop",
				Usage:        &domain.TokenUsage{Prompt: 5, Completion: 1, Total: 6},
			}, nil
		},
	}
	uc, perf := newCompletion(provider, true)

	res, err := uc.Ask(context.Background(), &domain.AskRequest{Question: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "pong", res.Answer)
	require.NotNil(t, res.Tokens)
	assert.Equal(t, 6, res.Tokens.Total)

	require.Len(t, provider.Calls, 1)
	assert.Equal(t, "test-model", provider.Calls[0].Model)

	logs := perf.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, perflog.KindText, logs[0].Kind)
	assert.Equal(t, perflog.StatusSuccess, logs[0].Status)
	require.NotNil(t, logs[0].Tokens)
	assert.Equal(t, perflog.Tokens{Prompt: 5, Completion: 1, Total: 6}, *logs[0].Tokens)
	assert.Equal(t, "test-model", logs[0].Metadata["model"])
}

func TestAsk_EmptyAnswerFallback(t *testing.T) {
	provider := &mocks.MockCompletionProvider{
		CompleteFunc: func(ctx context.Context, call domain.CompletionCall) (*domain.Completion, error) {
			return &domain.Completion{}, nil
		},
	}
	uc, _ := newCompletion(provider, true)

	res, err := uc.Ask(context.Background(), &domain.AskRequest{Question: "?"})
	require.NoError(t, err)
	assert.Equal(t, "No answer received", res.Answer)
	assert.Nil(t, res.Tokens)
}

func TestAsk_Errors(t *testing.T) {
	tests := []struct {
		name       string
		hasKey     bool
		req        *domain.AskRequest
		providerFn func(ctx context.Context, call domain.CompletionCall) (*domain.Completion, error)
		check      func(t *testing.T, err error)
		wantCalls  int
		wantLogs   int
	}{
		{
			name:   "nil request",
			hasKey: true,
			check: func(t *testing.T, err error) {
				assert.True(t, domain.IsInvalidInput(err))
			},
			wantLogs: 1,
		},
		{
			name:   "missing question",
			hasKey: true,
			req:    &domain.AskRequest{},
			check: func(t *testing.T, err error) {
				assert.True(t, domain.IsInvalidInput(err))
			},
			wantLogs: 1,
		},
		{
			name:   "invalid role",
			hasKey: true,
			req:    &domain.AskRequest{Messages: []domain.ChatTurn{{Role: "robot", Content: "beep"}}},
			check: func(t *testing.T, err error) {
				assert.True(t, domain.IsInvalidInput(err))
			},
			wantLogs: 1,
		},
		{
			name:   "missing key",
			hasKey: false,
			req:    &domain.AskRequest{Question: "hi"},
			check: func(t *testing.T, err error) {
				assert.True(t, domain.IsConfiguration(err))
				assert.Contains(t, err.Error(), "GROQ_API_KEY")
			},
			wantLogs: 1,
		},
		{
			name:   "upstream status kept",
			hasKey: true,
			req:    &domain.AskRequest{Question: "hi"},
			providerFn: func(ctx context.Context, call domain.CompletionCall) (*domain.Completion, error) {
				return nil, domain.NewUpstreamError(429, "rate limited")
			},
			check: func(t *testing.T, err error) {
				assert.True(t, domain.IsUpstream(err))
				assert.Equal(t, 429, domain.UpstreamStatus(err))
				assert.Contains(t, err.Error(), "rate limited")
			},
			wantCalls: 1,
			wantLogs:  1,
		},
		{
			name:   "empty upstream message falls back",
			hasKey: true,
			req:    &domain.AskRequest{Question: "hi"},
			providerFn: func(ctx context.Context, call domain.CompletionCall) (*domain.Completion, error) {
				return nil, domain.NewUpstreamError(0, "")
			},
			check: func(t *testing.T, err error) {
				var de *domain.DomainError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, upstreamErrorFallback, de.UserMessage())
			},
			wantCalls: 1,
			wantLogs:  1,
		},
		{
			name:   "plain error wrapped",
			hasKey: true,
			req:    &domain.AskRequest{Question: "hi"},
			providerFn: func(ctx context.Context, call domain.CompletionCall) (*domain.Completion, error) {
				return nil, errors.New("connection reset")
			},
			check: func(t *testing.T, err error) {
				assert.True(t, domain.IsUpstream(err))
				assert.Equal(t, 0, domain.UpstreamStatus(err))
			},
			wantCalls: 1,
			wantLogs:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mocks.MockCompletionProvider{CompleteFunc: tt.providerFn}
			uc, perf := newCompletion(provider, tt.hasKey)

			_, err := uc.Ask(context.Background(), tt.req)
			require.Error(t, err)
			tt.check(t, err)
			assert.Len(t, provider.Calls, tt.wantCalls)

			logs := perf.Logs()
			require.Len(t, logs, tt.wantLogs)
			for _, r := range logs {
				assert.Equal(t, perflog.KindText, r.Kind)
				assert.Equal(t, perflog.StatusError, r.Status)
				assert.Equal(t, errorMessage(err), r.Error)
				assert.NotNil(t, r.Duration)
			}
		})
	}
}

func TestPing(t *testing.T) {
	provider := &mocks.MockCompletionProvider{
		CompleteFunc: func(ctx context.Context, call domain.CompletionCall) (*domain.Completion, error) {
			return &domain.Completion{Content: "Hello from Groq!", HasContent: true}, nil
		},
	}
	uc, _ := newCompletion(provider, true)

	res, err := uc.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello from Groq!", res.Answer)
	require.Len(t, provider.Calls, 1)
	require.Len(t, provider.Calls[0].Messages, 1)
	assert.Equal(t, "Say hello from Groq", provider.Calls[0].Messages[0].Content)

	noKey, _ := newCompletion(provider, false)
	assert.False(t, noKey.HasCredential())
	_, err = noKey.Ping(context.Background())
	assert.True(t, domain.IsConfiguration(err))
}
