package handler

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/Vdnsh/groq-qna/internal/domain"
	"github.com/Vdnsh/groq-qna/internal/handler/dto"
)

// SpeechHandler 语音合成处理器
type SpeechHandler struct {
	usecase domain.SpeechUsecase
	logger  *slog.Logger
}

// NewSpeechHandler create语音合成处理器
func NewSpeechHandler(usecase domain.SpeechUsecase, logger *slog.Logger) *SpeechHandler {
	return &SpeechHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// Synthesize 文本转语音
//
//	@Summary		Synthesize speech
//	@Description	Converts text to audio with the selected voice
//	@Tags			tts
//	@Accept			json
//	@Produce		audio/wav
//	@Param			request	body		dto.SpeechRequest	true	"text and optional voice"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	dto.ErrorResponse	"Text is required"
//	@Failure		413		{object}	dto.ErrorResponse	"Text is too long for TTS"
//	@Failure		500		{object}	dto.ErrorResponse
//	@Router			/api/tts [post]
func (h *SpeechHandler) Synthesize(ctx context.Context, c *app.RequestContext) {
	log := requestLogger(ctx, h.logger)

	var req dto.SpeechRequest
	if err := c.BindJSON(&req); err != nil {
		log.Warn("failed to bind request", "error", err)
		BadRequestResponse(c, "Invalid JSON body")
		return
	}

	audio, err := h.usecase.Synthesize(ctx, &domain.SpeechRequest{Text: req.Text, Voice: req.Voice})
	if err != nil {
		logFailure(log, "speech synthesis failed", err)
		ErrorResponse(c, err)
		return
	}

	c.Response.Header.Set("Cache-Control", "no-cache")
	c.Data(consts.StatusOK, audio.ContentType, audio.Data)
}

// Voices 列出可用语音
//
//	@Summary		List voices
//	@Description	Returns the voice catalogue and the default voice
//	@Tags			tts
//	@Produce		json
//	@Success		200	{object}	dto.VoicesResponse
//	@Router			/api/tts/voices [get]
func (h *SpeechHandler) Voices(ctx context.Context, c *app.RequestContext) {
	voices := h.usecase.Voices()
	resp := dto.VoicesResponse{
		Voices:  make([]dto.Voice, 0, len(voices)),
		Default: h.usecase.DefaultVoice(),
	}
	for _, v := range voices {
		resp.Voices = append(resp.Voices, dto.Voice{ID: v.ID, Name: v.Name})
	}
	SuccessResponse(c, resp)
}
