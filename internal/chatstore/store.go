// Package chatstore persists chats, the active-chat pointer and the selected
// voice in a key-value store.
//
// The whole chat collection lives under one key and every mutation rewrites
// it. Writers in different processes are last-writer-wins; within one process
// mutations are serialized.
package chatstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/Vdnsh/groq-qna/internal/domain"
	"github.com/Vdnsh/groq-qna/internal/domain/entity"
	"github.com/Vdnsh/groq-qna/pkg/idgen"
	"github.com/Vdnsh/groq-qna/pkg/kvstore"
)

// Storage keys
const (
	KeyChats         = "groq.chat.v1"
	KeyActiveChatID  = "groq.chat.activeId.v1"
	KeySelectedVoice = "app.tts.voice.v1"
)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the id generator for chats and messages.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Store is the chat repository.
type Store struct {
	kv     kvstore.Store
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	mu sync.Mutex
}

// New creates a Store on top of kv.
func New(kv kvstore.Store, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:     kv,
		logger: logger,
		now:    time.Now,
		newID:  idgen.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all chats, most recently created first.
func (s *Store) List(ctx context.Context) ([]entity.Chat, error) {
	return s.load(ctx)
}

// Get returns the chat with id, or a NotFound error.
func (s *Store) Get(ctx context.Context, id string) (*entity.Chat, error) {
	chats, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(chats, id)
	if idx < 0 {
		return nil, domain.NewNotFoundError("chat", id)
	}
	return &chats[idx], nil
}

// Create inserts an empty chat at the front of the collection and makes it active.
func (s *Store) Create(ctx context.Context) (*entity.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chats, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	chat := entity.Chat{
		ID:        s.uniqueID(chats),
		Title:     entity.DefaultChatTitle,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []entity.Message{},
	}
	chats = slices.Insert(chats, 0, chat)

	if err := s.save(ctx, chats); err != nil {
		return nil, err
	}
	if err := s.SetActiveChatID(ctx, chat.ID); err != nil {
		return nil, err
	}

	s.logger.Debug("chat created", "chat_id", chat.ID)
	return &chat, nil
}

// AppendMessage appends msg to the chat, assigning its id and timestamp. The
// first user message of a chat still carrying the default title names the chat.
func (s *Store) AppendMessage(ctx context.Context, chatID string, msg entity.NewMessage) (*entity.Message, error) {
	if !msg.Role.Valid() {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("invalid message role %q", msg.Role))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	chats, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(chats, chatID)
	if idx < 0 {
		return nil, domain.NewNotFoundError("chat", chatID)
	}
	chat := &chats[idx]

	full := entity.Message{
		ID:        s.newID(),
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: s.timestamp(),
	}
	chat.Messages = append(chat.Messages, full)
	chat.UpdatedAt = max(chat.UpdatedAt, full.CreatedAt)

	if msg.Role == entity.RoleUser && chat.Title == entity.DefaultChatTitle {
		chat.Title = DeriveTitle(msg.Content)
	}

	if err := s.save(ctx, chats); err != nil {
		return nil, err
	}
	return &full, nil
}

// Rename sets the chat title. A blank title resets it to the default.
// It reports false when the chat does not exist.
func (s *Store) Rename(ctx context.Context, chatID, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chats, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	idx := indexOf(chats, chatID)
	if idx < 0 {
		return false, nil
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = entity.DefaultChatTitle
	}
	chats[idx].Title = title
	chats[idx].UpdatedAt = max(chats[idx].UpdatedAt, s.timestamp())

	if err := s.save(ctx, chats); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the chat. When it was active, the pointer moves to the new
// first chat or is cleared if none remain. It reports false when nothing was removed.
func (s *Store) Delete(ctx context.Context, chatID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chats, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	idx := indexOf(chats, chatID)
	if idx < 0 {
		return false, nil
	}
	chats = slices.Delete(chats, idx, idx+1)

	if err := s.save(ctx, chats); err != nil {
		return false, err
	}

	active, ok, err := s.ActiveChatID(ctx)
	if err != nil {
		return true, err
	}
	if ok && active == chatID {
		if err := s.ClearActiveChatID(ctx); err != nil {
			return true, err
		}
		if len(chats) > 0 {
			if err := s.SetActiveChatID(ctx, chats[0].ID); err != nil {
				return true, err
			}
		}
	}

	s.logger.Debug("chat deleted", "chat_id", chatID, "remaining", len(chats))
	return true, nil
}

// ActiveChatID returns the last-viewed chat id, if one is recorded.
func (s *Store) ActiveChatID(ctx context.Context) (string, bool, error) {
	return s.getString(ctx, KeyActiveChatID)
}

// SetActiveChatID records id as the last-viewed chat.
func (s *Store) SetActiveChatID(ctx context.Context, id string) error {
	return s.kv.Set(ctx, KeyActiveChatID, id)
}

// ClearActiveChatID forgets the last-viewed chat.
func (s *Store) ClearActiveChatID(ctx context.Context) error {
	return s.kv.Delete(ctx, KeyActiveChatID)
}

// SelectedVoice returns the preferred synthesis voice, if one is recorded.
func (s *Store) SelectedVoice(ctx context.Context) (string, bool, error) {
	return s.getString(ctx, KeySelectedVoice)
}

// SetSelectedVoice records the preferred synthesis voice.
func (s *Store) SetSelectedVoice(ctx context.Context, voice string) error {
	return s.kv.Set(ctx, KeySelectedVoice, voice)
}

func (s *Store) getString(ctx context.Context, key string) (string, bool, error) {
	v, err := s.kv.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, v != "", nil
}

// load reads the collection. An unreadable payload is logged and treated as
// empty; the next write replaces it.
func (s *Store) load(ctx context.Context) ([]entity.Chat, error) {
	raw, err := s.kv.Get(ctx, KeyChats)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []entity.Chat{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read chats: %w", err)
	}

	var chats []entity.Chat
	if err := sonic.UnmarshalString(raw, &chats); err != nil {
		s.logger.Error("stored chats are unreadable, starting empty", "key", KeyChats, "error", err)
		return []entity.Chat{}, nil
	}
	for i := range chats {
		if chats[i].Messages == nil {
			chats[i].Messages = []entity.Message{}
		}
	}
	return chats, nil
}

func (s *Store) save(ctx context.Context, chats []entity.Chat) error {
	raw, err := sonic.MarshalString(chats)
	if err != nil {
		return fmt.Errorf("failed to encode chats: %w", err)
	}
	if err := s.kv.Set(ctx, KeyChats, raw); err != nil {
		return fmt.Errorf("failed to write chats: %w", err)
	}
	return nil
}

func (s *Store) timestamp() int64 {
	return s.now().UnixMilli()
}

// uniqueID draws ids until one is unused in chats.
func (s *Store) uniqueID(chats []entity.Chat) string {
	for {
		id := s.newID()
		if indexOf(chats, id) < 0 {
			return id
		}
	}
}

func indexOf(chats []entity.Chat, id string) int {
	return slices.IndexFunc(chats, func(c entity.Chat) bool { return c.ID == id })
}
