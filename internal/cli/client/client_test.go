package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vdnsh/groq-qna/internal/cli/types"
	"github.com/Vdnsh/groq-qna/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewAPIClient(srv.URL)
	require.NoError(t, err)
	return c
}

func TestNormalizeServerURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"localhost:8080", "http://localhost:8080", false},
		{"https://qna.example.com/", "https://qna.example.com", false},
		{"http://127.0.0.1:9000/api/v1", "http://127.0.0.1:9000", false},
		{"http://", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeServerURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsk(t *testing.T) {
	var gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/ask", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"answer":"Paris","tokens":{"prompt":5,"completion":1,"total":6}}`)
	})

	resp, err := c.Ask(context.Background(), &types.AskRequest{
		Messages: []types.ChatMessage{{Role: "user", Content: "Capital of France?"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris", resp.Answer)
	require.NotNil(t, resp.Tokens)
	assert.Equal(t, 6, resp.Tokens.Total)
	assert.Contains(t, gotBody, `"Capital of France?"`)
	assert.NotContains(t, gotBody, `"question"`)
}

func TestAsk_ErrorBody(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
		msg    string
	}{
		{"invalid input", http.StatusBadRequest, `{"error":"Question or messages are required","code":"INVALID_INPUT"}`, domain.IsInvalidInput, "Question or messages are required"},
		{"missing key", http.StatusInternalServerError, `{"error":"API key not configured","code":"CONFIGURATION_ERROR"}`, domain.IsConfiguration, "API key not configured"},
		{"rate limited", http.StatusTooManyRequests, `{"error":"Rate limit exceeded","code":"UPSTREAM_ERROR"}`, domain.IsUpstream, "Rate limit exceeded"},
		{"no body", http.StatusBadGateway, ``, domain.IsUpstream, "HTTP 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Ask(context.Background(), &types.AskRequest{Question: "hi"})
			require.Error(t, err)
			assert.True(t, tt.check(err))

			var de *domain.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.msg, de.UserMessage())
		})
	}
}

func TestSynthesize(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tts", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"text":"Hello","voice":"Gail-PlayAI"}`, string(raw))
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFF"))
	})

	audio, err := c.Synthesize(context.Background(), &domain.SpeechRequest{Text: "Hello", Voice: domain.VoiceGail})
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF"), audio.Data)
	assert.Equal(t, "audio/wav", audio.ContentType)
}

func TestSynthesize_TooLarge(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_, _ = io.WriteString(w, `{"error":"Text is too long for TTS.","code":"UPSTREAM_ERROR"}`)
	})

	_, err := c.Synthesize(context.Background(), &domain.SpeechRequest{Text: "long"})
	require.Error(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, domain.UpstreamStatus(err))
}

func TestLogsAndClear(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `{"logs":[{"id":"a","type":"tts","startTime":"2026-01-02T03:04:05Z","duration":12.5,"status":"success","audioSize":2048}],"count":1}`)
		case http.MethodDelete:
			_, _ = io.WriteString(w, `{"success":true,"message":"Logs cleared"}`)
		}
	})

	logs, err := c.Logs(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, logs.Count)
	assert.Equal(t, "tts", logs.Logs[0].Type)
	require.NotNil(t, logs.Logs[0].AudioSize)
	assert.Equal(t, 2048, *logs.Logs[0].AudioSize)

	cleared, err := c.ClearLogs(context.Background())
	require.NoError(t, err)
	assert.True(t, cleared.Success)
}

func TestUpstreamCheck_ErrorStatusKeepsBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"success":false,"hasApiKey":false,"error":"GROQ_API_KEY not found in environment variables"}`)
	})

	got, err := c.UpstreamCheck(context.Background())
	require.NoError(t, err)
	assert.False(t, got.Success)
	assert.False(t, got.HasAPIKey)
	assert.Contains(t, got.Error, "GROQ_API_KEY")
}
