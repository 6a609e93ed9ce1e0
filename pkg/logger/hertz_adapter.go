package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// HertzSlogAdapter adapts slog to Hertz's hlog interface.
// Records carry component=hertz so framework logs can be told apart from
// request logs, and SetLevel filters them independently of the slog handler.
type HertzSlogAdapter struct {
	logger *slog.Logger
	level  slog.LevelVar
}

// NewHertzSlogAdapter creates a new Hertz logger adapter using slog
func NewHertzSlogAdapter(logger *slog.Logger) *HertzSlogAdapter {
	a := &HertzSlogAdapter{logger: logger.With("component", "hertz")}
	a.level.Set(slog.LevelDebug)
	return a
}

// hlogLevel maps hlog levels onto slog; Trace folds into Debug, Notice into Info
// and Fatal into Error.
func hlogLevel(level hlog.Level) slog.Level {
	switch level {
	case hlog.LevelTrace, hlog.LevelDebug:
		return slog.LevelDebug
	case hlog.LevelInfo, hlog.LevelNotice:
		return slog.LevelInfo
	case hlog.LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func (h *HertzSlogAdapter) log(ctx context.Context, level slog.Level, msg string) {
	if level < h.level.Level() {
		return
	}
	h.logger.Log(ctx, level, msg)
}

func (h *HertzSlogAdapter) Trace(v ...interface{})  { h.log(context.Background(), slog.LevelDebug, formatMessage(v...)) }
func (h *HertzSlogAdapter) Debug(v ...interface{})  { h.log(context.Background(), slog.LevelDebug, formatMessage(v...)) }
func (h *HertzSlogAdapter) Info(v ...interface{})   { h.log(context.Background(), slog.LevelInfo, formatMessage(v...)) }
func (h *HertzSlogAdapter) Notice(v ...interface{}) { h.log(context.Background(), slog.LevelInfo, formatMessage(v...)) }
func (h *HertzSlogAdapter) Warn(v ...interface{})   { h.log(context.Background(), slog.LevelWarn, formatMessage(v...)) }
func (h *HertzSlogAdapter) Error(v ...interface{})  { h.log(context.Background(), slog.LevelError, formatMessage(v...)) }

// Fatal logs at error level; the server decides whether to exit.
func (h *HertzSlogAdapter) Fatal(v ...interface{}) {
	h.log(context.Background(), slog.LevelError, formatMessage(v...))
}

func (h *HertzSlogAdapter) Tracef(format string, v ...interface{}) {
	h.log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Debugf(format string, v ...interface{}) {
	h.log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Infof(format string, v ...interface{}) {
	h.log(context.Background(), slog.LevelInfo, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Noticef(format string, v ...interface{}) {
	h.log(context.Background(), slog.LevelInfo, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Warnf(format string, v ...interface{}) {
	h.log(context.Background(), slog.LevelWarn, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Errorf(format string, v ...interface{}) {
	h.log(context.Background(), slog.LevelError, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Fatalf(format string, v ...interface{}) {
	h.log(context.Background(), slog.LevelError, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxTracef(ctx context.Context, format string, v ...interface{}) {
	h.log(ctx, slog.LevelDebug, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxDebugf(ctx context.Context, format string, v ...interface{}) {
	h.log(ctx, slog.LevelDebug, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxInfof(ctx context.Context, format string, v ...interface{}) {
	h.log(ctx, slog.LevelInfo, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxNoticef(ctx context.Context, format string, v ...interface{}) {
	h.log(ctx, slog.LevelInfo, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxWarnf(ctx context.Context, format string, v ...interface{}) {
	h.log(ctx, slog.LevelWarn, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxErrorf(ctx context.Context, format string, v ...interface{}) {
	h.log(ctx, slog.LevelError, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxFatalf(ctx context.Context, format string, v ...interface{}) {
	h.log(ctx, slog.LevelError, fmt.Sprintf(format, v...))
}

// SetLevel drops hertz records below level
func (h *HertzSlogAdapter) SetLevel(level hlog.Level) {
	h.level.Set(hlogLevel(level))
}

// SetOutput is a no-op: output is owned by the slog handler set up in Setup.
func (h *HertzSlogAdapter) SetOutput(writer io.Writer) {}

func formatMessage(v ...interface{}) string {
	if len(v) == 1 {
		if s, ok := v[0].(string); ok {
			return s
		}
	}
	return fmt.Sprint(v...)
}
