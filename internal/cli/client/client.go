package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/Vdnsh/groq-qna/internal/cli/types"
	"github.com/Vdnsh/groq-qna/internal/domain"
)

// DefaultTimeout bounds one request when the context carries no deadline.
// Speech synthesis of a long chunk routinely takes tens of seconds.
const DefaultTimeout = 2 * time.Minute

// APIClient wraps Hertz Client for HTTP communication with API Server
type APIClient struct {
	client  *client.Client
	server  string
	timeout time.Duration
}

// NewAPIClient creates a new API client
func NewAPIClient(server string) (*APIClient, error) {
	normalizedServer, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	c, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithMaxIdleConnDuration(60*time.Second),
		client.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &APIClient{
		client:  c,
		server:  normalizedServer,
		timeout: DefaultTimeout,
	}, nil
}

// Server returns the normalized server address
func (c *APIClient) Server() string {
	return c.server
}

// normalizeServerURL normalizes server URL to ensure it has a scheme and no trailing slash
func normalizeServerURL(server string) (string, error) {
	// Add scheme if missing
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}

	// Return scheme://host (no path, no trailing slash)
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// Ask sends the conversation (or a single question when messages is empty)
func (c *APIClient) Ask(ctx context.Context, req *types.AskRequest) (*types.AskResponse, error) {
	var out types.AskResponse
	if err := c.doJSON(ctx, consts.MethodPost, endpointAsk, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Synthesize requests speech audio for req.Text.
//
// Server errors come back as domain errors carrying the HTTP status and the
// server's message, so callers can react to "too long" replies.
func (c *APIClient) Synthesize(ctx context.Context, req *domain.SpeechRequest) (*domain.Audio, error) {
	bodyBytes, err := sonic.Marshal(types.SpeechRequest{Text: req.Text, Voice: req.Voice})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(httpReq)
		protocol.ReleaseResponse(resp)
	}()

	httpReq.SetMethod(consts.MethodPost)
	httpReq.SetRequestURI(c.server + endpointTTS)
	httpReq.Header.SetContentTypeBytes([]byte("application/json"))
	httpReq.SetBody(bodyBytes)

	if err := c.do(ctx, httpReq, resp); err != nil {
		return nil, err
	}
	if err := statusError(resp); err != nil {
		return nil, err
	}

	return &domain.Audio{
		Data:        append([]byte(nil), resp.Body()...),
		ContentType: string(resp.Header.ContentType()),
	}, nil
}

// Voices lists the selectable voices
func (c *APIClient) Voices(ctx context.Context) (*types.VoicesResponse, error) {
	var out types.VoicesResponse
	if err := c.doJSON(ctx, consts.MethodGet, endpointVoices, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logs returns the server's performance log, newest first
func (c *APIClient) Logs(ctx context.Context) (*types.LogsResponse, error) {
	var out types.LogsResponse
	if err := c.doJSON(ctx, consts.MethodGet, endpointLogs, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearLogs empties the server's performance log
func (c *APIClient) ClearLogs(ctx context.Context) (*types.ClearLogsResponse, error) {
	var out types.ClearLogsResponse
	if err := c.doJSON(ctx, consts.MethodDelete, endpointLogs, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpstreamCheck probes the server's upstream connectivity.
// The probe body is returned even when the server answers with an error status.
func (c *APIClient) UpstreamCheck(ctx context.Context) (*types.UpstreamCheckResponse, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(c.server + endpointUpstreamCheck)

	if err := c.do(ctx, req, resp); err != nil {
		return nil, err
	}

	var out types.UpstreamCheckResponse
	if err := sonic.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response (HTTP %d): %w", resp.StatusCode(), err)
	}
	return &out, nil
}

// Ready reports whether the server is ready to answer (API key configured)
func (c *APIClient) Ready(ctx context.Context) (bool, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(c.server + endpointReady)

	if err := c.do(ctx, req, resp); err != nil {
		return false, err
	}
	return resp.StatusCode() == consts.StatusOK, nil
}

// doJSON sends an optional JSON body and decodes a JSON reply into out
func (c *APIClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(method)
	req.SetRequestURI(c.server + path)
	if in != nil {
		bodyBytes, err := sonic.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(bodyBytes)
	}

	if err := c.do(ctx, req, resp); err != nil {
		return err
	}
	if err := statusError(resp); err != nil {
		return err
	}

	if err := sonic.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *APIClient) do(ctx context.Context, req *protocol.Request, resp *protocol.Response) error {
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(ctx, req, resp, deadline)
	} else {
		err = c.client.DoTimeout(ctx, req, resp, c.timeout)
	}
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return nil
}

// statusError converts a non-2xx reply into a domain error.
// The server's {error, code} body is used when present.
func statusError(resp *protocol.Response) error {
	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		return nil
	}

	var body types.ErrorResponse
	if err := sonic.Unmarshal(resp.Body(), &body); err != nil || body.Error == "" {
		body.Error = fmt.Sprintf("HTTP %d", status)
	}

	switch {
	case status == consts.StatusBadRequest && body.Code == "INVALID_INPUT":
		return domain.NewInvalidInputError(body.Error)
	case body.Code == "CONFIGURATION_ERROR":
		return domain.NewConfigurationError(body.Error)
	}
	return domain.NewUpstreamError(status, body.Error)
}
