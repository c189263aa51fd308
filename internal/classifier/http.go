package classifier

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"sales-assistant/internal/common/errors"
	httpclient "sales-assistant/internal/common/http"
	"sales-assistant/internal/common/logger"
)

// HTTPProvider talks to an OpenAI-compatible chat completions endpoint.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	model   string
	client  *httpclient.Client
	logger  logger.Logger
}

type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

func NewHTTPProvider(cfg HTTPConfig, log logger.Logger) *HTTPProvider {
	opts := []httpclient.Option{
		httpclient.WithMaxRetries(cfg.MaxRetries),
		httpclient.WithAttemptHook(func(ctx context.Context, _ int) error {
			return spendAttempt(ctx)
		}),
	}
	if cfg.Backoff > 0 {
		opts = append(opts, httpclient.WithBaseBackoff(cfg.Backoff))
	}
	return &HTTPProvider{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  httpclient.NewClient(cfg.Timeout, opts...),
		logger:  log.WithFields(map[string]interface{}{"provider": "http"}),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *HTTPProvider) Complete(ctx context.Context, operation, prompt string) (string, error) {
	text, err := p.chat(ctx, operation, prompt, false)
	return text, observe(operation, err)
}

func (p *HTTPProvider) Extract(ctx context.Context, operation, prompt, schema string) (json.RawMessage, error) {
	full := prompt + "\n\nRespond with a single JSON object matching this JSON schema, and nothing else:\n" + schema
	text, err := p.chat(ctx, operation, full, true)
	if err != nil {
		return nil, observe(operation, err)
	}
	return json.RawMessage(text), observe(operation, nil)
}

func (p *HTTPProvider) chat(ctx context.Context, operation, prompt string, jsonMode bool) (string, error) {
	req := chatRequest{
		Model:    p.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	if jsonMode {
		req.ResponseFormat = map[string]string{"type": "json_object"}
	}

	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	var resp chatResponse
	err := p.client.PostJSON(ctx, p.baseURL+"/chat/completions", headers, req, &resp)
	if err != nil {
		p.logger.Warn("classifier call failed", map[string]interface{}{
			"operation": operation,
			"error":     err.Error(),
		})
		return "", mapTransportError(operation, err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.NewClassifierMalformedError(operation, "no choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func mapTransportError(operation string, err error) error {
	var stdErr *errors.StandardError
	switch {
	case stderrors.As(err, &stdErr):
		return stdErr
	case stderrors.Is(err, httpclient.ErrTimeout):
		return errors.NewClassifierTimeoutError(operation)
	case stderrors.Is(err, httpclient.ErrRateLimited):
		return errors.NewClassifierRateLimitedError(operation)
	default:
		return errors.NewClassifierFailedError(operation, err)
	}
}
