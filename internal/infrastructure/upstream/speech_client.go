package upstream

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/Vdnsh/groq-qna/internal/domain"
)

const speechPath = "/audio/speech"

// maxRawErrorLen bounds how many runes of a non-JSON error body are kept as the message.
const maxRawErrorLen = 300

type speechBody struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// SpeechClient implements domain.SpeechProvider with the Hertz HTTP client.
type SpeechClient struct {
	client  *client.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewSpeechClient creates a speech client for opts.BaseURL.
func NewSpeechClient(opts Options, logger *slog.Logger) (*SpeechClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithMaxIdleConnDuration(60*time.Second),
		client.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return &SpeechClient{
		client:  c,
		baseURL: opts.baseURL(),
		apiKey:  opts.APIKey,
		timeout: opts.timeout(),
		logger:  logger,
	}, nil
}

// Synthesize posts one speech request and returns the reply body.
func (c *SpeechClient) Synthesize(ctx context.Context, call domain.SpeechCall) (*domain.Audio, error) {
	bodyBytes, err := sonic.Marshal(speechBody{
		Model:          call.Model,
		Voice:          call.Voice,
		Input:          call.Input,
		ResponseFormat: call.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.baseURL + speechPath)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.SetBody(bodyBytes)

	if err := c.do(ctx, req, resp); err != nil {
		c.logger.Warn("speech request failed", "voice", call.Voice, "error", err)
		return nil, withCause(domain.NewUpstreamError(0, ""), err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		msg := parseErrorMessage(resp.Body())
		c.logger.Warn("speech service returned an error",
			"status", status,
			"message", msg,
		)
		return nil, domain.NewUpstreamError(status, msg)
	}

	// the body belongs to resp and is released with it
	data := append([]byte(nil), resp.Body()...)
	return &domain.Audio{
		Data:        data,
		ContentType: string(resp.Header.Peek(consts.HeaderContentType)),
	}, nil
}

// do honours the context deadline when there is one, else the client timeout.
func (c *SpeechClient) do(ctx context.Context, req *protocol.Request, resp *protocol.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		return c.client.DoDeadline(ctx, req, resp, deadline)
	}
	return c.client.DoTimeout(ctx, req, resp, c.timeout)
}

// parseErrorMessage extracts the message from {"error":{"message":..}} or
// {"error":".."}. Other bodies are returned trimmed and truncated.
func parseErrorMessage(body []byte) string {
	var env struct {
		Error any `json:"error"`
	}
	if err := sonic.Unmarshal(body, &env); err == nil {
		switch e := env.Error.(type) {
		case string:
			return e
		case map[string]any:
			if m, ok := e["message"].(string); ok {
				return m
			}
			return ""
		case nil:
			return ""
		}
	}
	raw := strings.ToValidUTF8(strings.TrimSpace(string(body)), "\uFFFD")
	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "<") {
		return ""
	}
	// cut on a rune boundary
	if utf8.RuneCountInString(raw) > maxRawErrorLen {
		raw = string([]rune(raw)[:maxRawErrorLen])
	}
	return raw
}
