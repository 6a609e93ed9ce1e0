package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/Vdnsh/groq-qna/internal/domain"
	"github.com/Vdnsh/groq-qna/pkg/perflog"
)

const (
	// DefaultSpeechModel 默认语音模型
	DefaultSpeechModel = "playai-tts"
	// DefaultSpeechFormat 默认音频格式
	DefaultSpeechFormat = "wav"
)

// Speech failure messages shown to the user.
const (
	MsgTermsRequired   = "The TTS model requires terms acceptance. Please visit https://console.groq.com/playground?model=playai-tts to accept the terms."
	MsgTextTooLong     = "Text is too long for TTS. The answer will be split into smaller parts. If you need higher limits, upgrade at https://console.groq.com/settings/billing"
	MsgInvalidKey      = "Invalid API key. Please check your GROQ_API_KEY."
	MsgInvalidRequest  = "Invalid request. Please check the text and voice parameters."
	MsgRateLimited     = "Rate limit exceeded. Please try again later."
	MsgSpeechFailed    = "Failed to generate speech. Please try again."
	MsgUnexpectedAudio = "Unexpected response format from TTS service."
)

// SpeechConfig 语音用例配置
type SpeechConfig struct {
	Model        string
	Format       string
	DefaultVoice string
	HasKey       bool
}

// speechUsecase is SpeechUsecase interfaceofimplementation
type speechUsecase struct {
	provider domain.SpeechProvider
	perf     *perflog.Recorder
	cfg      SpeechConfig
	logger   *slog.Logger
}

// NewSpeechUsecase create一个newof语音合成用例实例。
func NewSpeechUsecase(
	provider domain.SpeechProvider,
	perf *perflog.Recorder,
	cfg SpeechConfig,
	logger *slog.Logger,
) domain.SpeechUsecase {
	if cfg.Model == "" {
		cfg.Model = DefaultSpeechModel
	}
	if cfg.Format == "" {
		cfg.Format = DefaultSpeechFormat
	}
	if cfg.DefaultVoice == "" {
		cfg.DefaultVoice = domain.DefaultVoice
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &speechUsecase{
		provider: provider,
		perf:     perf,
		cfg:      cfg,
		logger:   logger,
	}
}

// Voices returns the voice catalogue.
func (u *speechUsecase) Voices() []domain.Voice {
	out := make([]domain.Voice, len(domain.Voices))
	copy(out, domain.Voices)
	return out
}

// DefaultVoice returns the voice used when a request names none.
func (u *speechUsecase) DefaultVoice() string {
	return u.cfg.DefaultVoice
}

// Synthesize 将文本合成为音频。
func (u *speechUsecase) Synthesize(ctx context.Context, req *domain.SpeechRequest) (*domain.Audio, error) {
	var text, voice string
	if req != nil {
		text, voice = req.Text, req.Voice
	}
	if voice == "" {
		voice = u.cfg.DefaultVoice
	}

	// 校验失败也要留下计时记录
	timer := u.perf.Start(perflog.KindTTS, map[string]any{
		"endpoint": "/api/tts",
		"voice":    voice,
	})
	textLength := utf8.RuneCountInString(text)

	if strings.TrimSpace(text) == "" {
		return nil, u.fail(timer, domain.NewInvalidInputError("Text is required"), nil)
	}
	if !u.cfg.HasKey {
		return nil, u.fail(timer, domain.NewConfigurationError(missingKeyMessage), nil)
	}

	audio, err := u.provider.Synthesize(ctx, domain.SpeechCall{
		Model:  u.cfg.Model,
		Voice:  voice,
		Input:  text,
		Format: u.cfg.Format,
	})
	if err != nil {
		err = u.fail(timer, remapSpeechError(err), &textLength)
		u.logger.Error("speech synthesis failed",
			"voice", voice,
			"status", domain.UpstreamStatus(err),
			"error", err,
		)
		return nil, err
	}

	contentType := audio.ContentType
	if !strings.Contains(contentType, "audio") && !strings.Contains(contentType, "wav") {
		err := domain.NewFormatError(MsgUnexpectedAudio)
		u.perf.End(timer, perflog.Outcome{
			Status:     perflog.StatusError,
			TextLength: &textLength,
			Error:      MsgUnexpectedAudio,
			Metadata:   map[string]any{"contentType": contentType},
		})
		u.logger.Error("unexpected speech content type", "content_type", contentType)
		return nil, err
	}

	audioSize := len(audio.Data)
	u.perf.End(timer, perflog.Outcome{
		Status:     perflog.StatusSuccess,
		AudioSize:  &audioSize,
		TextLength: &textLength,
		Metadata:   map[string]any{"contentType": contentType},
	})

	return &domain.Audio{Data: audio.Data, ContentType: contentType}, nil
}

// fail ends timer with err and returns it.
func (u *speechUsecase) fail(timer string, err error, textLength *int) error {
	u.perf.End(timer, perflog.Outcome{
		Status:     perflog.StatusError,
		TextLength: textLength,
		Error:      errorMessage(err),
	})
	return err
}

// remapSpeechError rewrites upstream speech failures into actionable
// messages. 4xx statuses are kept, anything else becomes 500.
func remapSpeechError(err error) error {
	var de *domain.DomainError
	if !errors.As(err, &de) || !domain.IsUpstream(err) {
		return normalizeUpstreamError(err, MsgSpeechFailed)
	}

	status := de.Status
	msg := de.Message
	switch {
	case strings.Contains(msg, "terms acceptance") || strings.Contains(msg, "requires terms"):
		msg = MsgTermsRequired
	case IsTooLongMessage(msg):
		msg = MsgTextTooLong
	case status == http.StatusUnauthorized:
		msg = MsgInvalidKey
	case status == http.StatusBadRequest:
		if msg == "" {
			msg = MsgInvalidRequest
		}
	case status == http.StatusTooManyRequests:
		msg = MsgRateLimited
	case msg == "":
		msg = MsgSpeechFailed
	}

	if status < 400 || status >= 500 {
		status = http.StatusInternalServerError
	}

	return &domain.DomainError{
		Code:    de.Code,
		Message: msg,
		Status:  status,
		Err:     de.Err,
	}
}

// IsTooLongMessage reports whether an upstream message says the input
// exceeded a size or daily token limit.
func IsTooLongMessage(msg string) bool {
	return strings.Contains(msg, "Request too large") ||
		strings.Contains(msg, "tokens per day") ||
		strings.Contains(msg, "TPD")
}
