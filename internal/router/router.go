package router

import (
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/hertz-contrib/swagger"
	swaggerFiles "github.com/swaggo/files"

	"github.com/Vdnsh/groq-qna/internal/handler"
	"github.com/Vdnsh/groq-qna/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Setup
type Handlers struct {
	Ask    *handler.AskHandler
	Speech *handler.SpeechHandler
	Logs   *handler.LogsHandler
	Health *handler.HealthHandler
}

// Setup sets up all routes. allowedOrigins is passed to the CORS middleware.
func Setup(h *server.Hertz, hs Handlers, logger *slog.Logger, allowedOrigins ...string) {
	// Global middleware
	h.Use(middleware.Recovery())
	h.Use(middleware.Logger(logger))
	h.Use(middleware.CORS(allowedOrigins...))

	// Swagger API documentation
	// Access at: http://localhost:8080/swagger/index.html
	h.GET("/swagger/*any", swagger.WrapHandler(swaggerFiles.Handler))

	// Health check routes
	h.GET("/ping", hs.Health.Ping)
	h.GET("/health/ready", hs.Health.Readiness)
	h.GET("/health/live", hs.Health.Liveness)

	api := h.Group("/api")
	{
		api.POST("/ask", hs.Ask.Ask)

		tts := api.Group("/tts")
		{
			tts.POST("", hs.Speech.Synthesize)
			tts.GET("/voices", hs.Speech.Voices)
		}

		api.GET("/logs", hs.Logs.List)
		api.DELETE("/logs", hs.Logs.Clear)

		api.GET("/upstream/check", hs.Health.UpstreamCheck)
	}
}
