package httputil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/edgeflare/pgrest/pkg/metrics"
	"go.uber.org/zap"
)

// RequestConfig holds configuration for sending requests
type RequestConfig struct {
	Logger         *zap.Logger
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	RetryEnabled   bool
}

// DefaultRequestConfig returns a RequestConfig with sensible defaults
func DefaultRequestConfig() RequestConfig {
	return RequestConfig{
		Timeout:        5 * time.Second,
		RetryEnabled:   true,
		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
	}
}

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the round tripper used to send requests, e.g. one wrapped
// with middleware.Chain.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport = rt
	}
}

// Client sends requests with retries. It implements rest.Doer.
type Client struct {
	http   *http.Client
	config RequestConfig
	logger *zap.Logger
}

// NewClient returns a Client for config.
func NewClient(config RequestConfig, opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{Timeout: config.Timeout},
		config: config,
		logger: config.Logger,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var errBodyNotReplayable = errors.New("request body cannot be replayed")

// Do sends req. Network errors and 502, 503 and 504 responses are retried with
// exponential backoff; any other response is returned as is. When retries are
// exhausted on an unavailable server, the last response is returned.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if !c.config.RetryEnabled {
		return c.http.Do(req)
	}

	ctx := req.Context()
	var response *http.Response
	attempt := 0

	operation := func() error {
		if attempt > 0 {
			if err := rewindBody(req); err != nil {
				return backoff.Permanent(err)
			}
		}
		attempt++

		resp, err := c.http.Do(req)
		if err != nil {
			response = nil
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return fmt.Errorf("request failed: %w", err)
		}

		if !retryableStatus(resp.StatusCode) {
			response = resp
			return nil
		}

		// buffer the body so the last response stays readable after retries
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			response = nil
			return fmt.Errorf("failed to read response body: %w", err)
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))
		response = resp
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.InitialBackoff
	b.MaxInterval = c.config.MaxBackoff
	b.MaxElapsedTime = 0 // bounded by MaxRetries
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.config.MaxRetries)), ctx)

	notify := func(err error, next time.Duration) {
		metrics.Retries.WithLabelValues(req.Method).Inc()
		c.logger.Warn("retrying request",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", next),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if response != nil {
			return response, nil
		}
		c.logger.Error("request failed", zap.String("url", req.URL.String()), zap.Error(err))
		return nil, err
	}
	return response, nil
}

func rewindBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	if req.GetBody == nil {
		return errBodyNotReplayable
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("failed to rewind request body: %w", err)
	}
	req.Body = body
	return nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
