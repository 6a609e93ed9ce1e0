package mocks

import (
	"context"

	"github.com/Vdnsh/groq-qna/internal/domain"
)

// MockSpeechProvider is a mock implementation of domain.SpeechProvider
type MockSpeechProvider struct {
	SynthesizeFunc func(ctx context.Context, call domain.SpeechCall) (*domain.Audio, error)

	Calls []domain.SpeechCall
}

// Synthesize mocks the Synthesize method
func (m *MockSpeechProvider) Synthesize(ctx context.Context, call domain.SpeechCall) (*domain.Audio, error) {
	m.Calls = append(m.Calls, call)
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, call)
	}
	return &domain.Audio{Data: []byte("RIFF"), ContentType: "audio/wav"}, nil
}

// MockSpeechUsecase is a mock implementation of domain.SpeechUsecase
type MockSpeechUsecase struct {
	SynthesizeFunc   func(ctx context.Context, req *domain.SpeechRequest) (*domain.Audio, error)
	VoicesFunc       func() []domain.Voice
	DefaultVoiceFunc func() string
}

// Synthesize mocks the Synthesize method
func (m *MockSpeechUsecase) Synthesize(ctx context.Context, req *domain.SpeechRequest) (*domain.Audio, error) {
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, req)
	}
	return &domain.Audio{Data: []byte("RIFF"), ContentType: "audio/wav"}, nil
}

// Voices mocks the Voices method
func (m *MockSpeechUsecase) Voices() []domain.Voice {
	if m.VoicesFunc != nil {
		return m.VoicesFunc()
	}
	return domain.Voices
}

// DefaultVoice mocks the DefaultVoice method
func (m *MockSpeechUsecase) DefaultVoice() string {
	if m.DefaultVoiceFunc != nil {
		return m.DefaultVoiceFunc()
	}
	return domain.DefaultVoice
}
