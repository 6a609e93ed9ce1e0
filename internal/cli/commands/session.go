package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Vdnsh/groq-qna/internal/chatstore"
	"github.com/Vdnsh/groq-qna/internal/cli/client"
	"github.com/Vdnsh/groq-qna/internal/cli/config"
	appconfig "github.com/Vdnsh/groq-qna/internal/config"
	"github.com/Vdnsh/groq-qna/internal/domain"
	"github.com/Vdnsh/groq-qna/internal/domain/entity"
	"github.com/Vdnsh/groq-qna/internal/playback"
	"github.com/Vdnsh/groq-qna/internal/voice"
	"github.com/Vdnsh/groq-qna/pkg/kvstore"
	"github.com/Vdnsh/groq-qna/pkg/logger"
)

// session bundles what most commands need: config, log, chat store and API client
type session struct {
	cfg    *config.Config
	log    *slog.Logger
	kv     kvstore.Store
	store  *chatstore.Store
	client *client.APIClient
}

// openSession loads the config and opens the chat store.
// The terminal belongs to the UI, so logs go to ~/.voxctl/voxctl.log.
func openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if serverOverride != "" {
		cfg.Server = serverOverride
	}

	log, err := newLogger()
	if err != nil {
		return nil, err
	}

	kv, err := kvstore.Open(cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat store: %w", err)
	}

	apiClient, err := client.NewAPIClient(cfg.Server)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &session{
		cfg:    cfg,
		log:    log,
		kv:     kv,
		store:  chatstore.New(kv, log),
		client: apiClient,
	}, nil
}

func newLogger() (*slog.Logger, error) {
	path, err := config.LogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return logger.New(appconfig.LogConfig{
		Level:  "info",
		Format: "json",
		Output: "file",
		// 追加写入，和 server 的 file 输出一致
		FilePath: path,
	})
}

// Close releases the chat store
func (s *session) Close() {
	if err := s.kv.Close(); err != nil {
		s.log.Warn("failed to close chat store", "error", err)
	}
}

// voice returns the selected voice, falling back to the default
func (s *session) voice(ctx context.Context) string {
	v, ok, err := s.store.SelectedVoice(ctx)
	if err != nil {
		s.log.Warn("failed to read selected voice", "error", err)
	}
	if !ok || v == "" {
		return domain.DefaultVoice
	}
	return v
}

// narrator wires the API client, the playback controller and the player command
func (s *session) narrator(opts ...voice.Option) (*voice.Narrator, *playback.Controller, error) {
	sink, err := playback.DetectExecSink(s.cfg.Player, s.cfg.PlayerArgs...)
	if err != nil {
		return nil, nil, err
	}
	controller := playback.NewController(sink, s.log)

	if s.cfg.ChunkSize > 0 {
		opts = append([]voice.Option{voice.WithChunkSize(s.cfg.ChunkSize)}, opts...)
	}
	if s.cfg.StripMarkdown {
		opts = append(opts, voice.WithNormalize())
	}
	return voice.NewNarrator(s.client, controller, s.log, opts...), controller, nil
}

// resolveChat returns the chat named by id, or the active chat, creating one
// when there is none.
func (s *session) resolveChat(ctx context.Context, id string, fresh bool) (*entity.Chat, error) {
	if fresh {
		return s.store.Create(ctx)
	}
	if id != "" {
		chat, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.store.SetActiveChatID(ctx, chat.ID); err != nil {
			return nil, err
		}
		return chat, nil
	}

	activeID, ok, err := s.store.ActiveChatID(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		chat, err := s.store.Get(ctx, activeID)
		if err == nil {
			return chat, nil
		}
		if !domain.IsNotFound(err) {
			return nil, err
		}
		// stale pointer
		s.log.Info("active chat no longer exists", "chat_id", activeID)
	}

	chats, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(chats) > 0 {
		if err := s.store.SetActiveChatID(ctx, chats[0].ID); err != nil {
			return nil, err
		}
		return &chats[0], nil
	}
	return s.store.Create(ctx)
}
