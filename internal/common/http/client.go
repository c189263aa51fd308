// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrTimeout     = errors.New("HTTP_TIMEOUT")
	ErrRateLimited = errors.New("HTTP_RATE_LIMITED")
	ErrBadStatus   = errors.New("HTTP_BAD_STATUS")
)

// AttemptHook runs before every attempt. A non-nil error aborts the call without sending.
type AttemptHook func(ctx context.Context, attempt int) error

// Client is a JSON-over-HTTP client with bounded retries and exponential backoff.
type Client struct {
	httpClient  *http.Client
	maxRetries  int
	beforeEach  AttemptHook
	baseBackoff time.Duration
}

type Option func(*Client)

// WithMaxRetries sets the number of retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

func WithAttemptHook(hook AttemptHook) Option {
	return func(c *Client) { c.beforeEach = hook }
}

// WithBaseBackoff overrides the first backoff step (100ms).
func WithBaseBackoff(d time.Duration) Option {
	return func(c *Client) { c.baseBackoff = d }
}

func NewClient(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		maxRetries:  2,
		baseBackoff: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON sends payload to url and decodes a 200 response into out.
// 429 and 5xx responses and transport errors are retried; other statuses fail immediately.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ErrTimeout
			}
		}

		if c.beforeEach != nil {
			if err := c.beforeEach(ctx, attempt); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			if resp != nil {
				resp.Body.Close()
			}
			return ErrTimeout
		}
		if err != nil {
			lastErr = err
			continue
		}

		retry, err := c.handleResponse(resp, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
	}

	if errors.Is(lastErr, ErrRateLimited) || errors.Is(lastErr, ErrBadStatus) {
		return lastErr
	}
	return fmt.Errorf("request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) handleResponse(resp *http.Response, out interface{}) (bool, error) {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return false, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("decode response: %w", err)
		}
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return true, ErrRateLimited
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("%w: status %d", ErrBadStatus, resp.StatusCode)
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("%w: status %d: %s", ErrBadStatus, resp.StatusCode, bytes.TrimSpace(snippet))
	}
}
