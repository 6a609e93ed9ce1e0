package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/Vdnsh/groq-qna/pkg/idgen"
	"github.com/Vdnsh/groq-qna/pkg/logger"
)

// RequestIDKey 请求 ID of上下文键
const RequestIDKey = "X-Request-ID"

// Logger 日志中间件
//
// The request-scoped logger is stored in the context passed down the chain,
// so handlers can retrieve it with logger.FromContext.
func Logger(base *slog.Logger) app.HandlerFunc {
	if base == nil {
		base = slog.Default()
	}
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		path := string(c.Path())

		// 跳过健康检查路径of日志记录
		skipLogging := path == "/health/live" || path == "/health/ready" || path == "/ping"

		// 生成orget请求 ID
		requestID := string(c.Request.Header.Peek(RequestIDKey))
		if requestID == "" {
			requestID = idgen.New()
		}
		c.Response.Header.Set(RequestIDKey, requestID)

		reqLogger := logger.WithRequestID(base, requestID).With(
			"method", string(c.Method()),
			"path", path,
		)
		if !skipLogging {
			reqLogger.Info("request started", "client_ip", c.ClientIP())
		}

		// 处理请求
		c.Next(logger.WithContext(ctx, reqLogger))

		// 记录响应信息（跳过健康检查）
		if skipLogging {
			return
		}
		latency := time.Since(start)
		statusCode := c.Response.StatusCode()

		done := reqLogger.With(
			"status", statusCode,
			"latency", latency.String(),
			"latency_ms", latency.Milliseconds(),
		)

		switch {
		case statusCode >= 500:
			done.Error("request completed with server error")
		case statusCode >= 400:
			done.Warn("request completed with client error")
		default:
			done.Info("request completed successfully")
		}
	}
}

// GetRequestID 从上下文中get请求 ID
func GetRequestID(c *app.RequestContext) string {
	return string(c.Response.Header.Peek(RequestIDKey))
}
