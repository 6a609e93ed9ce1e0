package handler

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/Vdnsh/groq-qna/internal/domain"
	"github.com/Vdnsh/groq-qna/internal/domain/entity"
	"github.com/Vdnsh/groq-qna/internal/handler/dto"
	"github.com/Vdnsh/groq-qna/pkg/logger"
)

// AskHandler 问答请求处理器
type AskHandler struct {
	usecase domain.CompletionUsecase
	logger  *slog.Logger
}

// NewAskHandler create问答处理器
func NewAskHandler(usecase domain.CompletionUsecase, logger *slog.Logger) *AskHandler {
	return &AskHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// Ask 回答问题或续写会话
//
//	@Summary		Ask a question
//	@Description	Sends a question, or a conversation, to the completion service
//	@Tags			ask
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.AskRequest		true	"question or messages"
//	@Success		200		{object}	dto.AskResponse
//	@Failure		400		{object}	dto.ErrorResponse	"Question or messages are required"
//	@Failure		500		{object}	dto.ErrorResponse	"API key not configured"
//	@Router			/api/ask [post]
func (h *AskHandler) Ask(ctx context.Context, c *app.RequestContext) {
	log := requestLogger(ctx, h.logger)

	var req dto.AskRequest
	if err := c.BindJSON(&req); err != nil {
		log.Warn("failed to bind request", "error", err)
		BadRequestResponse(c, "Invalid JSON body")
		return
	}

	askReq := &domain.AskRequest{Question: req.Question}
	for _, m := range req.Messages {
		askReq.Messages = append(askReq.Messages, domain.ChatTurn{
			Role:    entity.Role(m.Role),
			Content: m.Content,
		})
	}

	res, err := h.usecase.Ask(ctx, askReq)
	if err != nil {
		logFailure(log, "ask failed", err)
		ErrorResponse(c, err)
		return
	}

	resp := dto.AskResponse{Answer: res.Answer}
	if res.Tokens != nil {
		resp.Tokens = &dto.TokenUsage{
			Prompt:     res.Tokens.Prompt,
			Completion: res.Tokens.Completion,
			Total:      res.Tokens.Total,
		}
	}
	SuccessResponse(c, resp)
}

// requestLogger prefers the request-scoped logger installed by the logging middleware.
func requestLogger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	return logger.FromContextOr(ctx, fallback)
}
