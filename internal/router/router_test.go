package router

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vdnsh/groq-qna/internal/handler"
	"github.com/Vdnsh/groq-qna/internal/handler/dto"
	"github.com/Vdnsh/groq-qna/internal/infrastructure/upstream"
	"github.com/Vdnsh/groq-qna/internal/usecase"
	"github.com/Vdnsh/groq-qna/pkg/perflog"
)

// fakeUpstream answers chat completions with "pong" and speech requests
// according to speechStatus.
type fakeUpstream struct {
	speechStatus int
	speechBody   string
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/chat/completions"):
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"pong"},"finish_reason":"stop"}],"usage":{"prompt_tokens":7,"completion_tokens":1,"total_tokens":8}}`)
	case strings.HasSuffix(r.URL.Path, "/audio/speech"):
		if f.speechStatus != 0 && f.speechStatus != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.speechStatus)
			_, _ = io.WriteString(w, f.speechBody)
			return
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFF....WAVE"))
	default:
		http.NotFound(w, r)
	}
}

func newTestServer(t *testing.T, up *fakeUpstream, hasKey bool) *server.Hertz {
	t.Helper()
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := upstream.Options{BaseURL: srv.URL, APIKey: "test-key"}
	speechClient, err := upstream.NewSpeechClient(opts, log)
	require.NoError(t, err)

	perf := perflog.New(100, log)
	completion := usecase.NewCompletionUsecase(upstream.NewCompletionClient(opts, log), perf, usecase.CompletionConfig{HasKey: hasKey}, log)
	speech := usecase.NewSpeechUsecase(speechClient, perf, usecase.SpeechConfig{HasKey: hasKey}, log)

	h := server.Default()
	Setup(h, Handlers{
		Ask:    handler.NewAskHandler(completion, log),
		Speech: handler.NewSpeechHandler(speech, log),
		Logs:   handler.NewLogsHandler(perf, log),
		Health: handler.NewHealthHandler(completion, log),
	}, log)
	return h
}

func jsonBody(t *testing.T, v any) *ut.Body {
	t.Helper()
	raw, err := sonic.Marshal(v)
	require.NoError(t, err)
	return &ut.Body{Body: bytes.NewReader(raw), Len: len(raw)}
}

var jsonHeader = ut.Header{Key: "Content-Type", Value: "application/json"}

func TestAsk_EndToEnd(t *testing.T) {
	h := newTestServer(t, &fakeUpstream{}, true)

	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/ask", jsonBody(t, map[string]string{"question": "ping"}), jsonHeader)
	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var got dto.AskResponse
	require.NoError(t, sonic.Unmarshal(resp.Body(), &got))
	assert.Equal(t, "pong", got.Answer)
	require.NotNil(t, got.Tokens)
	assert.Equal(t, 8, got.Tokens.Total)
	assert.NotEmpty(t, string(resp.Header.Peek("X-Request-ID")))
}

func TestAsk_Validation(t *testing.T) {
	tests := []struct {
		name       string
		hasKey     bool
		body       any
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{"missing question", true, map[string]string{}, http.StatusBadRequest, "INVALID_INPUT", "Question or messages are required"},
		{"missing key", false, map[string]string{"question": "hi"}, http.StatusInternalServerError, "CONFIGURATION_ERROR", "API key not configured"},
		{"bad role", true, map[string]any{"messages": []map[string]string{{"role": "robot", "content": "x"}}}, http.StatusBadRequest, "INVALID_INPUT", "invalid role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &fakeUpstream{}, tt.hasKey)
			w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/ask", jsonBody(t, tt.body), jsonHeader)
			resp := w.Result()
			assert.Equal(t, tt.wantStatus, resp.StatusCode())

			var got dto.ErrorResponse
			require.NoError(t, sonic.Unmarshal(resp.Body(), &got))
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Contains(t, got.Error, tt.wantError)
		})
	}
}

func TestTTS_EndToEnd(t *testing.T) {
	h := newTestServer(t, &fakeUpstream{}, true)

	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/tts", jsonBody(t, map[string]string{"text": "Hello there."}), jsonHeader)
	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "audio/wav", string(resp.Header.ContentType()))
	assert.Equal(t, "no-cache", string(resp.Header.Peek("Cache-Control")))
	assert.Equal(t, []byte("RIFF....WAVE"), resp.Body())
}

func TestTTS_TooLong(t *testing.T) {
	h := newTestServer(t, &fakeUpstream{
		speechStatus: http.StatusRequestEntityTooLarge,
		speechBody:   `{"error":{"message":"Request too large: Limit 1200 tokens per day"}}`,
	}, true)

	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/tts", jsonBody(t, map[string]string{"text": "long text"}), jsonHeader)
	resp := w.Result()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode())

	var got dto.ErrorResponse
	require.NoError(t, sonic.Unmarshal(resp.Body(), &got))
	assert.Equal(t, usecase.MsgTextTooLong, got.Error)
}

func TestTTS_BlankText(t *testing.T) {
	h := newTestServer(t, &fakeUpstream{}, true)

	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/tts", jsonBody(t, map[string]string{"text": "  "}), jsonHeader)
	resp := w.Result()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
}

func TestVoices(t *testing.T) {
	h := newTestServer(t, &fakeUpstream{}, true)

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/api/tts/voices", nil)
	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var got dto.VoicesResponse
	require.NoError(t, sonic.Unmarshal(resp.Body(), &got))
	assert.Len(t, got.Voices, 4)
	assert.Equal(t, "Celeste-PlayAI", got.Default)
}

func TestLogs_ListAndClear(t *testing.T) {
	h := newTestServer(t, &fakeUpstream{}, true)

	ut.PerformRequest(h.Engine, http.MethodPost, "/api/ask", jsonBody(t, map[string]string{"question": "one"}), jsonHeader)
	ut.PerformRequest(h.Engine, http.MethodPost, "/api/tts", jsonBody(t, map[string]string{"text": "two"}), jsonHeader)

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/api/logs", nil)
	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var list struct {
		Logs []struct {
			Type   string `json:"type"`
			Status string `json:"status"`
		} `json:"logs"`
		Count int `json:"count"`
	}
	require.NoError(t, sonic.Unmarshal(resp.Body(), &list))
	assert.Equal(t, 2, list.Count)
	require.Len(t, list.Logs, 2)
	// newest first
	assert.Equal(t, "tts", list.Logs[0].Type)
	assert.Equal(t, "text", list.Logs[1].Type)
	for _, l := range list.Logs {
		assert.Equal(t, "success", l.Status)
	}

	w = ut.PerformRequest(h.Engine, http.MethodDelete, "/api/logs", nil)
	resp = w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode())
	var cleared dto.ClearLogsResponse
	require.NoError(t, sonic.Unmarshal(resp.Body(), &cleared))
	assert.True(t, cleared.Success)
	assert.Equal(t, "Logs cleared", cleared.Message)

	w = ut.PerformRequest(h.Engine, http.MethodGet, "/api/logs", nil)
	require.NoError(t, sonic.Unmarshal(w.Result().Body(), &list))
	assert.Equal(t, 0, list.Count)
}

func TestHealth(t *testing.T) {
	ready := newTestServer(t, &fakeUpstream{}, true)
	notReady := newTestServer(t, &fakeUpstream{}, false)

	tests := []struct {
		name       string
		h          *server.Hertz
		path       string
		wantStatus int
	}{
		{"ping", ready, "/ping", http.StatusOK},
		{"live", notReady, "/health/live", http.StatusOK},
		{"ready", ready, "/health/ready", http.StatusOK},
		{"not ready", notReady, "/health/ready", http.StatusServiceUnavailable},
		{"upstream check", ready, "/api/upstream/check", http.StatusOK},
		{"upstream check without key", notReady, "/api/upstream/check", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ut.PerformRequest(tt.h.Engine, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.wantStatus, w.Result().StatusCode())
		})
	}
}

func TestUpstreamCheck_Body(t *testing.T) {
	h := newTestServer(t, &fakeUpstream{}, true)

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/api/upstream/check", nil)
	var got dto.UpstreamCheckResponse
	require.NoError(t, sonic.Unmarshal(w.Result().Body(), &got))
	assert.True(t, got.Success)
	assert.True(t, got.HasAPIKey)
	assert.Equal(t, "pong", got.Answer)
}

func TestLogs_RecordsFailures(t *testing.T) {
	h := newTestServer(t, &fakeUpstream{
		speechStatus: http.StatusTooManyRequests,
		speechBody:   `{"error":{"message":"Rate limit reached"}}`,
	}, true)

	ut.PerformRequest(h.Engine, http.MethodPost, "/api/ask", jsonBody(t, map[string]string{"question": "ping"}), jsonHeader)
	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/tts", jsonBody(t, map[string]string{"text": "hello"}), jsonHeader)
	assert.Equal(t, http.StatusTooManyRequests, w.Result().StatusCode())

	w = ut.PerformRequest(h.Engine, http.MethodGet, "/api/logs", nil)
	var list struct {
		Logs []struct {
			Type     string   `json:"type"`
			Status   string   `json:"status"`
			Duration *float64 `json:"duration"`
			Error    string   `json:"error"`
		} `json:"logs"`
		Count int `json:"count"`
	}
	require.NoError(t, sonic.Unmarshal(w.Result().Body(), &list))
	require.Equal(t, 2, list.Count)

	byType := map[string]string{}
	for _, l := range list.Logs {
		require.NotNil(t, l.Duration)
		assert.GreaterOrEqual(t, *l.Duration, 0.0)
		byType[l.Type] = l.Status
	}
	assert.Equal(t, map[string]string{"text": "success", "tts": "error"}, byType)
}
