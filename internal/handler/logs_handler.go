package handler

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/Vdnsh/groq-qna/internal/handler/dto"
	"github.com/Vdnsh/groq-qna/pkg/perflog"
)

// LogsHandler 性能日志处理器
type LogsHandler struct {
	perf   *perflog.Recorder
	logger *slog.Logger
}

// NewLogsHandler create性能日志处理器
func NewLogsHandler(perf *perflog.Recorder, logger *slog.Logger) *LogsHandler {
	return &LogsHandler{
		perf:   perf,
		logger: logger,
	}
}

// List 列出性能日志
//
//	@Summary		List performance logs
//	@Description	Returns upstream call timings, newest first
//	@Tags			logs
//	@Produce		json
//	@Success		200	{object}	dto.LogsResponse
//	@Router			/api/logs [get]
func (h *LogsHandler) List(ctx context.Context, c *app.RequestContext) {
	logs := h.perf.Logs()
	perflog.SortNewestFirst(logs)
	SuccessResponse(c, dto.LogsResponse{Logs: logs, Count: len(logs)})
}

// Clear 清空性能日志
//
//	@Summary		Clear performance logs
//	@Tags			logs
//	@Produce		json
//	@Success		200	{object}	dto.ClearLogsResponse
//	@Router			/api/logs [delete]
func (h *LogsHandler) Clear(ctx context.Context, c *app.RequestContext) {
	h.perf.Clear()
	requestLogger(ctx, h.logger).Info("performance logs cleared")
	SuccessResponse(c, dto.ClearLogsResponse{Success: true, Message: "Logs cleared"})
}
