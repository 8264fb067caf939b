// Package apiclient performs authenticated round trips to the backend API and
// validates every response envelope at the boundary.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/backoffice/internal/session"
)

// Observer receives one observation per round trip.
type Observer interface {
	ObserveBackendCall(resource, method, outcome string, elapsed time.Duration)
}

// Config configures a Client.
type Config struct {
	BaseURL string
	// Timeout bounds each round trip. Zero leaves the runtime default.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	Observer   Observer
}

// Client is the generic request executor.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	observer   Observer
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Resource labels metrics and logs. Defaults to Path.
	Resource string
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("apiclient: base URL is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("apiclient: invalid base URL: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(base, "/"),
		httpClient: httpClient,
		logger:     logger,
		observer:   cfg.Observer,
	}, nil
}

// Do issues the request with the session's bearer token and returns the
// validated envelope. A nil session still issues the call without an
// Authorization header; the backend is responsible for rejecting it.
func (c *Client) Do(ctx context.Context, sess *session.Session, req Request) (*Envelope, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	label := req.Resource
	if label == "" {
		label = req.Path
	}

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.url(req.Path, req.Query), body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if token := sess.BearerToken(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		httpReq.Header.Set("X-Request-ID", reqID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(label, method, KindTransport, start)
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(label, method, KindTransport, start)
		return nil, &Error{Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}

	env, err := parseEnvelope(raw)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			apiErr.Status = resp.StatusCode
			c.observe(label, method, apiErr.Kind, start)
		}
		c.logger.Error("backend response rejected at boundary",
			slog.String("resource", label),
			slog.String("method", method),
			slog.Int("http_status", resp.StatusCode),
			slog.Any("error", err))
		return nil, err
	}

	if !env.Success {
		status := env.Status
		if status == 0 {
			status = resp.StatusCode
		}
		c.observe(label, method, KindRejected, start)
		c.logger.Warn("backend rejected request",
			slog.String("resource", label),
			slog.String("method", method),
			slog.Int("status", status),
			slog.String("message", env.Message))
		return nil, &Error{Kind: KindRejected, Status: status, Detail: env.Message}
	}

	c.observe(label, method, "ok", start)
	return env, nil
}

func (c *Client) url(path string, query url.Values) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

func (c *Client) observe(resource, method string, outcome Kind, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendCall(resource, method, string(outcome), time.Since(start))
}
