// Package remote talks to the identity provider and the record store over HTTP.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config describes the backend the client talks to.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// Dial overrides how connections are opened, e.g. to an in-memory listener in tests.
	Dial fasthttp.DialFunc
}

// Client is the shared HTTP transport of the identity and record clients.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

// envelope mirrors the backend's response wrapper.
type envelope struct {
	Status string              `json:"status"`
	Code   string              `json:"code,omitempty"`
	Data   jsoniter.RawMessage `json:"data,omitempty"`
	Error  interface{}         `json:"error,omitempty"`
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                "taskboard",
			Dial:                cfg.Dial,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: time.Minute,
		},
		baseURL: strings.TrimRight(parsed.String(), "/"),
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// call performs one round trip. A non-2xx reply becomes a *domain.Error carrying
// the backend's code and message; out is filled from the envelope's data.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, token string, body, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return domain.WrapError(domain.ErrCodeRemote, "request cancelled", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := c.baseURL + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return domain.WrapError(domain.ErrCodeInternal, "encoding request", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Warn("remote call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return domain.WrapError(domain.ErrCodeRemote, "Could not reach the server", err)
	}

	status := resp.StatusCode()
	raw := resp.Body()
	c.logger.Debug("remote call", zap.String("method", method), zap.String("path", path), zap.Int("status", status))

	if status == http.StatusNoContent || len(raw) == 0 {
		if status >= 300 {
			return statusError(status, "", "")
		}
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if status >= 300 {
			return statusError(status, "", "")
		}
		return domain.WrapError(domain.ErrCodeRemote, "Unexpected server response", err)
	}

	if status >= 300 || env.Status == "error" {
		return statusError(status, env.Code, errorMessage(env.Error))
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return domain.WrapError(domain.ErrCodeRemote, "Unexpected server response", err)
		}
	}
	return nil
}

func statusError(status int, code, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	if code != "" {
		return domain.NewError(domain.ErrorCode(code), message)
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.NewError(domain.ErrCodeUnauthorized, message)
	case status == http.StatusNotFound:
		return domain.NewError(domain.ErrCodeNotFound, message)
	case status == http.StatusConflict:
		return domain.NewError(domain.ErrCodeConflict, message)
	case status >= 400 && status < 500:
		return domain.NewError(domain.ErrCodeInvalid, message)
	default:
		return domain.NewError(domain.ErrCodeRemote, message)
	}
}

func errorMessage(v interface{}) string {
	switch msg := v.(type) {
	case nil:
		return ""
	case string:
		return msg
	case map[string]interface{}:
		if text, ok := msg["message"].(string); ok {
			return text
		}
	}
	return fmt.Sprint(v)
}
