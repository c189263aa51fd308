package classifier

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"

	"google.golang.org/genai"
)

// GeminiProvider uses the Google GenAI SDK.
type GeminiProvider struct {
	client     *genai.Client
	model      string
	maxRetries int
	timeout    time.Duration
	logger     logger.Logger
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string // optional, for tests and proxies
	Timeout    time.Duration
	MaxRetries int
}

func NewGeminiProvider(ctx context.Context, cfg GeminiConfig, log logger.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiProvider{
		client:     client,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		timeout:    cfg.Timeout,
		logger:     log.WithFields(map[string]interface{}{"provider": "gemini"}),
	}, nil
}

func (p *GeminiProvider) Complete(ctx context.Context, operation, prompt string) (string, error) {
	text, err := p.generate(ctx, operation, prompt, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	return text, observe(operation, err)
}

func (p *GeminiProvider) Extract(ctx context.Context, operation, prompt, schema string) (json.RawMessage, error) {
	full := prompt + "\n\nRespond with a single JSON object matching this JSON schema:\n" + schema
	text, err := p.generate(ctx, operation, full, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, observe(operation, err)
	}
	return json.RawMessage(text), observe(operation, nil)
}

func (p *GeminiProvider) generate(ctx context.Context, operation, prompt string, gcfg *genai.GenerateContentConfig) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", errors.NewClassifierTimeoutError(operation)
			}
		}

		if err := spendAttempt(ctx); err != nil {
			return "", err
		}

		text, err := p.call(ctx, prompt, gcfg)
		if err == nil {
			if text == "" {
				return "", errors.NewClassifierMalformedError(operation, "empty response")
			}
			return text, nil
		}

		if ctx.Err() != nil || stderrors.Is(err, context.DeadlineExceeded) {
			return "", errors.NewClassifierTimeoutError(operation)
		}

		lastErr = err
		if !retryableGenAIError(err) {
			break
		}
		p.logger.Warn("gemini call failed, retrying", map[string]interface{}{
			"operation": operation,
			"attempt":   attempt,
			"error":     err.Error(),
		})
	}

	var apiErr genai.APIError
	if stderrors.As(lastErr, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return "", errors.NewClassifierRateLimitedError(operation)
	}
	return "", errors.NewClassifierFailedError(operation, lastErr)
}

func (p *GeminiProvider) call(ctx context.Context, prompt string, gcfg *genai.GenerateContentConfig) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), gcfg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}

func retryableGenAIError(err error) bool {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return true
}
