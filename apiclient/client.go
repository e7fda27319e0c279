// Package apiclient talks to the career-guide REST backend.
//
// The client holds no credentials. Each call reads its bearer token from
// the context (core.ContextWithToken), so one Client can serve any number
// of sessions.
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

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/lborres/careerguide/core"
	"github.com/lborres/careerguide/pkg/crypto"
)

const (
	DevelopmentBaseURL = "http://localhost/ECareerGuide/backend/api"
	DevelopmentTimeout = 10 * time.Second
	ProductionTimeout  = 15 * time.Second

	// MaxResponseSize bounds how much of a response body is read.
	MaxResponseSize = 4 << 20

	HeaderRequestID = "X-Request-ID"
)

// Error is a non-2xx response. Message is the backend's message when it
// sent one.
type Error struct {
	Status   int
	Endpoint string
	Message  string
}

func (e *Error) Error() string {
	return e.Message
}

// IsStatus reports whether err is an *Error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Config struct {
	BaseURL string
	// Timeout applies to the whole exchange. Defaults to DevelopmentTimeout.
	Timeout time.Duration
	// HTTPClient overrides the transport; Timeout is ignored when set.
	HTTPClient *http.Client
	// RateLimit caps outgoing requests per second. Zero disables throttling.
	RateLimit float64
	Burst     int
	UserAgent string
	Logger    *slog.Logger
}

type Client struct {
	base      *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *slog.Logger
}

var _ core.API = (*Client)(nil)

func New(c Config) (*Client, error) {
	if c.BaseURL == "" {
		return nil, core.ErrBaseURLRequired
	}
	base, err := url.Parse(strings.TrimRight(c.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", c.BaseURL)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = DevelopmentTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if c.RateLimit > 0 {
		burst := c.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(c.RateLimit), burst)
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	userAgent := c.UserAgent
	if userAgent == "" {
		userAgent = "careerguide-go"
	}

	return &Client{
		base:      base,
		http:      httpClient,
		limiter:   limiter,
		userAgent: userAgent,
		logger:    logger.With("component", "apiclient"),
	}, nil
}

// BaseURL returns the normalized base URL (with trailing slash).
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpointURL(endpoint string, query url.Values) string {
	u := c.base.ResolveReference(&url.URL{Path: endpoint})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, query, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpointURL(endpoint, query), reader)
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, requestID)

	token, authenticated := core.TokenFromContext(ctx)
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			"method", method, "endpoint", endpoint, "request_id", requestID, "error", err)
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}

	c.logger.Debug("request",
		"method", method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"latency", time.Since(start),
		"request_id", requestID,
		"token", crypto.Fingerprint(token))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Endpoint: endpoint}
		var env core.Envelope
		if json.Unmarshal(raw, &env) == nil && env.Message != "" {
			apiErr.Message = env.Message
		} else {
			apiErr.Message = fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
