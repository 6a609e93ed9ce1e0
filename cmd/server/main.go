package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/network/netpoll"
	"github.com/spf13/cobra"

	_ "github.com/Vdnsh/groq-qna/docs" // swagger docs
	"github.com/Vdnsh/groq-qna/internal/config"
	"github.com/Vdnsh/groq-qna/internal/handler"
	"github.com/Vdnsh/groq-qna/internal/infrastructure/upstream"
	"github.com/Vdnsh/groq-qna/internal/router"
	"github.com/Vdnsh/groq-qna/internal/usecase"
	"github.com/Vdnsh/groq-qna/pkg/logger"
	"github.com/Vdnsh/groq-qna/pkg/perflog"
)

//	@title			Groq Q&A Server
//	@version		0.1.0
//	@description	Question answering and text-to-speech proxy for an OpenAI-compatible upstream

//	@host		localhost:8080
//	@BasePath	/

var (
	cfgFile string
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "groqqna-server",
	Short: "Question answering and text-to-speech API server",
	Long: `groqqna-server is an HTTP API server built with the Hertz framework.
It forwards questions and speech requests to an OpenAI-compatible upstream
and keeps a bounded log of upstream call timings.`,
	Version: version,
	Run:     runServer,
}

func init() {
	// Define flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file (default ./configs/config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	slog.Info("server starting...",
		"version", version,
		"config", cfgFile,
		"upstream", cfg.Upstream.BaseURL,
		"chat_model", cfg.Upstream.ChatModel,
		"speech_model", cfg.Upstream.SpeechModel,
	)
	if !cfg.Upstream.HasAPIKey() {
		slog.Warn("GROQ_API_KEY is not set; /api/ask and /api/tts will fail until it is configured")
	}

	// Setup Hertz to use slog
	hlog.SetLogger(logger.NewHertzSlogAdapter(slog.Default()))
	if cfg.Server.Mode == "debug" {
		hlog.SetLevel(hlog.LevelDebug)
	} else {
		hlog.SetLevel(hlog.LevelInfo)
	}

	handlers, err := newHandlers(cfg, slog.Default())
	if err != nil {
		slog.Error("failed to initialize handlers", "error", err)
		os.Exit(1)
	}

	// Create Hertz server
	h := server.Default(
		server.WithHostPorts(cfg.GetServerAddr()),
		server.WithReadTimeout(cfg.GetReadTimeout()),
		server.WithWriteTimeout(cfg.GetWriteTimeout()),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodySize*1024*1024),
		server.WithTransport(netpoll.NewTransporter),
	)

	// Setup routes
	router.Setup(h, handlers, slog.Default(), cfg.Server.CORSOrigins...)

	slog.Info("server started successfully",
		"address", cfg.GetServerAddr(),
		"mode", cfg.Server.Mode,
	)

	// Graceful shutdown
	go func() {
		if err := h.Run(); err != nil {
			slog.Error("server run failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// newHandlers wires upstream clients, usecases and handlers from cfg.
func newHandlers(cfg *config.Config, log *slog.Logger) (router.Handlers, error) {
	opts := upstream.Options{
		BaseURL: cfg.Upstream.BaseURL,
		APIKey:  cfg.Upstream.APIKey,
		Timeout: cfg.Upstream.Timeout,
	}
	speechClient, err := upstream.NewSpeechClient(opts, log)
	if err != nil {
		return router.Handlers{}, err
	}
	completionClient := upstream.NewCompletionClient(opts, log)

	perf := perflog.New(cfg.PerfLog.Capacity, log)

	completion := usecase.NewCompletionUsecase(completionClient, perf, usecase.CompletionConfig{
		Model:  cfg.Upstream.ChatModel,
		HasKey: cfg.Upstream.HasAPIKey(),
	}, log)
	speech := usecase.NewSpeechUsecase(speechClient, perf, usecase.SpeechConfig{
		Model:        cfg.Upstream.SpeechModel,
		Format:       cfg.Upstream.SpeechFormat,
		DefaultVoice: cfg.Upstream.DefaultVoice,
		HasKey:       cfg.Upstream.HasAPIKey(),
	}, log)

	return router.Handlers{
		Ask:    handler.NewAskHandler(completion, log),
		Speech: handler.NewSpeechHandler(speech, log),
		Logs:   handler.NewLogsHandler(perf, log),
		Health: handler.NewHealthHandler(completion, log),
	}, nil
}
