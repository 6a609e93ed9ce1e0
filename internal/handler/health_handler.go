package handler

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/Vdnsh/groq-qna/internal/domain"
	"github.com/Vdnsh/groq-qna/internal/handler/dto"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	completion domain.CompletionUsecase
	logger     *slog.Logger
}

// NewHealthHandler createnewof健康检查处理器
func NewHealthHandler(completion domain.CompletionUsecase, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		completion: completion,
		logger:     logger,
	}
}

// Ping 基本健康检查
// @Summary Ping 健康检查
// @Description 检查服务is否run
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *HealthHandler) Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status":  "ok",
		"message": "pong",
	})
}

// Readiness 就绪检查
// @Summary 就绪检查
// @Description 检查服务is否就绪（API key 已配置）
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/ready [get]
func (h *HealthHandler) Readiness(ctx context.Context, c *app.RequestContext) {
	if !h.completion.HasCredential() {
		c.JSON(consts.StatusServiceUnavailable, utils.H{
			"status":   "not_ready",
			"upstream": "api key not configured",
		})
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"status":   "ready",
		"upstream": "configured",
	})
}

// Liveness 存活检查
// @Summary 存活检查
// @Description 检查服务is否存活
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *HealthHandler) Liveness(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status": "alive",
	})
}

// UpstreamCheck 上游连通性检查
// @Summary Upstream connectivity check
// @Description Sends a fixed prompt to the completion service
// @Tags health
// @Produce json
// @Success 200 {object} dto.UpstreamCheckResponse
// @Failure 500 {object} dto.UpstreamCheckResponse
// @Router /api/upstream/check [get]
func (h *HealthHandler) UpstreamCheck(ctx context.Context, c *app.RequestContext) {
	hasKey := h.completion.HasCredential()

	res, err := h.completion.Ping(ctx)
	if err != nil {
		logFailure(requestLogger(ctx, h.logger), "upstream check failed", err)
		status, body := errorBody(err)
		c.JSON(status, dto.UpstreamCheckResponse{Error: body.Error, HasAPIKey: hasKey})
		return
	}

	SuccessResponse(c, dto.UpstreamCheckResponse{
		Success:   true,
		HasAPIKey: true,
		Message:   "Successfully connected to upstream API",
		Answer:    res.Answer,
	})
}
