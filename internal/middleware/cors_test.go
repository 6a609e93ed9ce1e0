package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
)

func newCORSServer(origins ...string) *server.Hertz {
	h := server.Default()
	h.Use(CORS(origins...))
	h.GET("/api/logs", func(ctx context.Context, c *app.RequestContext) {
		c.String(http.StatusOK, "ok")
	})
	return h
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"any origin by default", nil, http.MethodGet, "http://app.local", http.StatusOK, "*"},
		{"wildcard", []string{"*"}, http.MethodGet, "http://app.local", http.StatusOK, "*"},
		{"listed origin echoed", []string{"http://app.local"}, http.MethodGet, "http://app.local", http.StatusOK, "http://app.local"},
		{"unlisted origin", []string{"http://app.local"}, http.MethodGet, "http://evil.local", http.StatusOK, ""},
		{"preflight", nil, http.MethodOptions, "http://app.local", http.StatusNoContent, "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newCORSServer(tt.origins...)
			w := ut.PerformRequest(h.Engine, tt.method, "/api/logs", nil, ut.Header{Key: "Origin", Value: tt.origin})
			resp := w.Result()

			assert.Equal(t, tt.wantStatus, resp.StatusCode())
			assert.Equal(t, tt.wantAllow, string(resp.Header.Peek("Access-Control-Allow-Origin")))
			assert.Contains(t, string(resp.Header.Peek("Access-Control-Allow-Headers")), "X-Request-ID")
			assert.Contains(t, string(resp.Header.Peek("Access-Control-Expose-Headers")), "X-Request-ID")
		})
	}
}
