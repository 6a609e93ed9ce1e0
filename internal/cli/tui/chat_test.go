package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vdnsh/groq-qna/internal/chatstore"
	"github.com/Vdnsh/groq-qna/internal/cli/types"
	"github.com/Vdnsh/groq-qna/internal/domain"
	"github.com/Vdnsh/groq-qna/internal/domain/entity"
	"github.com/Vdnsh/groq-qna/internal/playback"
	"github.com/Vdnsh/groq-qna/pkg/kvstore"
)

type fakeAsker struct {
	answer string
	err    error
	got    []types.ChatMessage
}

func (f *fakeAsker) Ask(_ context.Context, req *types.AskRequest) (*types.AskResponse, error) {
	f.got = req.Messages
	if f.err != nil {
		return nil, f.err
	}
	return &types.AskResponse{Answer: f.answer}, nil
}

type fakeSpeaker struct {
	mu      sync.Mutex
	err     error
	texts   []string
	voices  []string
	stopped int
}

func (f *fakeSpeaker) Speak(_ context.Context, text, voice string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	f.voices = append(f.voices, voice)
	return f.err
}

func (f *fakeSpeaker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
}

func newTestModel(t *testing.T, deps Deps) (chatModel, *chatstore.Store) {
	t.Helper()
	store := chatstore.New(kvstore.NewMemory(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	chat, err := store.Create(context.Background())
	require.NoError(t, err)
	deps.Store = store
	return initialModel(deps, chat), store
}

func update(t *testing.T, m chatModel, msg any) chatModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(chatModel)
}

func TestAsk_AppendsQuestionAndAnswer(t *testing.T) {
	asker := &fakeAsker{answer: "Lisbon is lovely in May."}
	m, store := newTestModel(t, Deps{API: asker})

	m.startAsk("Where should I travel in May?")
	assert.Equal(t, requestWaiting, m.state)

	msg := m.ask("Where should I travel in May?")()
	m = update(t, m, msg)

	require.NoError(t, m.err)
	assert.Equal(t, requestIdle, m.state)
	assert.Empty(t, m.pending)
	require.Len(t, m.chat.Messages, 2)
	assert.Equal(t, entity.RoleUser, m.chat.Messages[0].Role)
	assert.Equal(t, entity.RoleAssistant, m.chat.Messages[1].Role)
	assert.Equal(t, "Where should I travel in May?", m.chat.Title)

	// the whole stored history is sent
	assert.Equal(t, []types.ChatMessage{{Role: "user", Content: "Where should I travel in May?"}}, asker.got)

	stored, err := store.Get(context.Background(), m.chat.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Messages, 2)
}

func TestAsk_ErrorKeepsQuestion(t *testing.T) {
	asker := &fakeAsker{err: domain.NewUpstreamError(429, "Rate limit exceeded")}
	m, _ := newTestModel(t, Deps{API: asker})

	m.startAsk("hi")
	m = update(t, m, m.ask("hi")())

	require.Error(t, m.err)
	assert.Equal(t, "Rate limit exceeded", errorText(m.err))
	require.Len(t, m.chat.Messages, 1)
	assert.Equal(t, entity.RoleUser, m.chat.Messages[0].Role)
	assert.Equal(t, requestIdle, m.state)
}

func chatWithAnswer(t *testing.T, m chatModel, store *chatstore.Store) chatModel {
	t.Helper()
	ctx := context.Background()
	_, err := store.AppendMessage(ctx, m.chat.ID, entity.NewMessage{Role: entity.RoleUser, Content: "hi"})
	require.NoError(t, err)
	_, err = store.AppendMessage(ctx, m.chat.ID, entity.NewMessage{Role: entity.RoleAssistant, Content: "Hello there."})
	require.NoError(t, err)
	m.chat, err = store.Get(ctx, m.chat.ID)
	require.NoError(t, err)
	return m
}

func TestSpeakLast(t *testing.T) {
	tests := []struct {
		name       string
		speakErr   error
		wantStatus entity.TTSStatus
		wantErr    bool
	}{
		{"finished", nil, entity.TTSReady, false},
		{"stopped", playback.ErrStopped, entity.TTSIdle, false},
		{"failed", errors.New("no audio player found"), entity.TTSError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			speaker := &fakeSpeaker{err: tt.speakErr}
			m, store := newTestModel(t, Deps{API: &fakeAsker{}, Speaker: speaker, Voice: domain.VoiceQuinn})
			m = chatWithAnswer(t, m, store)
			answer, _ := m.chat.LastAssistantMessage()

			cmd := m.speakLast()
			require.NotNil(t, cmd)
			assert.Equal(t, entity.TTSLoading, m.tts[answer.ID].Status)
			assert.Equal(t, answer.ID, m.speakingID)

			m = update(t, m, cmd())
			assert.Equal(t, tt.wantStatus, m.tts[answer.ID].Status)
			assert.Equal(t, domain.VoiceQuinn, m.tts[answer.ID].Voice)
			assert.Empty(t, m.speakingID)
			assert.Equal(t, tt.wantErr, m.err != nil)

			assert.Equal(t, []string{"Hello there."}, speaker.texts)
			assert.Equal(t, []string{domain.VoiceQuinn}, speaker.voices)
		})
	}
}

func TestSpeakLast_NothingToSay(t *testing.T) {
	m, _ := newTestModel(t, Deps{API: &fakeAsker{}, Speaker: &fakeSpeaker{}})
	assert.Nil(t, m.speakLast())

	m, _ = newTestModel(t, Deps{API: &fakeAsker{}})
	assert.Nil(t, m.speakLast())
}

func TestSyncPlaying(t *testing.T) {
	playing := false
	m, store := newTestModel(t, Deps{API: &fakeAsker{}, Speaker: &fakeSpeaker{}, Playing: func() bool { return playing }})
	m = chatWithAnswer(t, m, store)
	answer, _ := m.chat.LastAssistantMessage()

	require.NotNil(t, m.speakLast())
	m.syncPlaying()
	assert.Equal(t, entity.TTSLoading, m.tts[answer.ID].Status)

	playing = true
	m.syncPlaying()
	assert.Equal(t, entity.TTSPlaying, m.tts[answer.ID].Status)
	assert.Contains(t, m.contentView.View(), "[speaking]")
}

func TestAutoSpeak(t *testing.T) {
	speaker := &fakeSpeaker{}
	m, _ := newTestModel(t, Deps{API: &fakeAsker{answer: "Sure."}, Speaker: speaker, AutoSpeak: true})

	m.startAsk("hi")
	m = update(t, m, m.ask("hi")())

	answer, ok := m.chat.LastAssistantMessage()
	require.True(t, ok)
	assert.Equal(t, entity.TTSLoading, m.tts[answer.ID].Status)
	assert.Equal(t, answer.ID, m.speakingID)
}

func TestStopSpeaking(t *testing.T) {
	speaker := &fakeSpeaker{}
	m, store := newTestModel(t, Deps{API: &fakeAsker{}, Speaker: speaker})

	// idle: nothing to stop
	m.stopSpeaking()
	assert.Equal(t, 0, speaker.stopped)

	m = chatWithAnswer(t, m, store)
	require.NotNil(t, m.speakLast())
	m.stopSpeaking()
	assert.Equal(t, 1, speaker.stopped)
}

func TestCycleVoice(t *testing.T) {
	m, store := newTestModel(t, Deps{API: &fakeAsker{}})
	assert.Equal(t, domain.DefaultVoice, m.voice)

	cmd := m.cycleVoice()
	assert.Equal(t, domain.Voices[1].ID, m.voice)

	saved := cmd().(voiceSavedMsg)
	require.NoError(t, saved.err)
	voice, ok, err := store.SelectedVoice(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Voices[1].ID, voice)

	// wraps around
	m.voice = domain.Voices[len(domain.Voices)-1].ID
	m.cycleVoice()
	assert.Equal(t, domain.Voices[0].ID, m.voice)
}

func TestNewChat(t *testing.T) {
	m, store := newTestModel(t, Deps{API: &fakeAsker{}})
	first := m.chat.ID

	m = update(t, m, m.newChat()())
	require.NoError(t, m.err)
	assert.NotEqual(t, first, m.chat.ID)

	active, ok, err := store.ActiveChatID(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, m.chat.ID, active)
}

func TestWrapLine(t *testing.T) {
	assert.Equal(t, "short", wrapLine("short", 20))
	assert.Equal(t, "abcde\nfghij\nk", wrapLine("abcdefghijk", 5))
	// wide runes take two cells
	assert.Equal(t, "你好\n世界", wrapLine("你好世界", 5))
}
