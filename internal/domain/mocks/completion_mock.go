package mocks

import (
	"context"

	"github.com/Vdnsh/groq-qna/internal/domain"
)

// MockCompletionProvider is a mock implementation of domain.CompletionProvider
type MockCompletionProvider struct {
	CompleteFunc func(ctx context.Context, call domain.CompletionCall) (*domain.Completion, error)

	Calls []domain.CompletionCall
}

// Complete mocks the Complete method
func (m *MockCompletionProvider) Complete(ctx context.Context, call domain.CompletionCall) (*domain.Completion, error) {
	m.Calls = append(m.Calls, call)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, call)
	}
	return &domain.Completion{Content: "ok", HasContent: true, FinishReason: "stop"}, nil
}

// MockCompletionUsecase is a mock implementation of domain.CompletionUsecase
type MockCompletionUsecase struct {
	AskFunc           func(ctx context.Context, req *domain.AskRequest) (*domain.AskResult, error)
	PingFunc          func(ctx context.Context) (*domain.AskResult, error)
	HasCredentialFunc func() bool
}

// Ask mocks the Ask method
func (m *MockCompletionUsecase) Ask(ctx context.Context, req *domain.AskRequest) (*domain.AskResult, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, req)
	}
	return &domain.AskResult{Answer: "ok"}, nil
}

// Ping mocks the Ping method
func (m *MockCompletionUsecase) Ping(ctx context.Context) (*domain.AskResult, error) {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return &domain.AskResult{Answer: "hello"}, nil
}

// HasCredential mocks the HasCredential method
func (m *MockCompletionUsecase) HasCredential() bool {
	if m.HasCredentialFunc != nil {
		return m.HasCredentialFunc()
	}
	return true
}
