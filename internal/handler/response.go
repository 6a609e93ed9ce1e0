package handler

import (
	"errors"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/Vdnsh/groq-qna/internal/domain"
	"github.com/Vdnsh/groq-qna/internal/handler/dto"
)

// SuccessResponse returns a 200 JSON body
func SuccessResponse(c *app.RequestContext, data interface{}) {
	c.JSON(consts.StatusOK, data)
}

// ErrorResponse returns an error response based on error type
func ErrorResponse(c *app.RequestContext, err error) {
	status, body := errorBody(err)
	c.JSON(status, body)
}

// errorBody maps err to a status and {error, code} body.
func errorBody(err error) (int, dto.ErrorResponse) {
	// getuser友好of错误消息（不暴露内部细节）
	message := "internal server error"
	code := "INTERNAL_ERROR"
	var de *domain.DomainError
	if errors.As(err, &de) {
		message = de.UserMessage()
		code = de.Code
	}

	switch {
	case domain.IsInvalidInput(err):
		return consts.StatusBadRequest, dto.ErrorResponse{Error: message, Code: code}
	case domain.IsNotFound(err):
		return consts.StatusNotFound, dto.ErrorResponse{Error: message, Code: code}
	case domain.IsConfiguration(err), domain.IsFormat(err):
		return consts.StatusInternalServerError, dto.ErrorResponse{Error: message, Code: code}
	case domain.IsUpstream(err):
		status := domain.UpstreamStatus(err)
		if status < 400 || status > 599 {
			status = consts.StatusInternalServerError
		}
		return status, dto.ErrorResponse{Error: message, Code: code}
	default:
		// Internal error：不暴露任何细节
		return consts.StatusInternalServerError, dto.ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		}
	}
}

// BadRequestResponse returns a bad request response
func BadRequestResponse(c *app.RequestContext, message string) {
	c.JSON(consts.StatusBadRequest, dto.ErrorResponse{
		Error: message,
		Code:  "INVALID_INPUT",
	})
}

// logFailure logs err at Warn for client errors and Error otherwise.
func logFailure(logger *slog.Logger, msg string, err error) {
	status, _ := errorBody(err)
	if status < 500 {
		logger.Warn(msg, "status", status, "error", err)
		return
	}
	logger.Error(msg, "status", status, "error", err)
}
