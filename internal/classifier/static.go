package classifier

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"sync"

	"sales-assistant/internal/common/errors"
)

// StaticRule answers any prompt containing Match. Err takes precedence over Response.
type StaticRule struct {
	Match    string
	Response string
	Err      error
}

// Static is a deterministic Port. Rules are checked in order; the first match wins.
type Static struct {
	mu       sync.Mutex
	rules    []StaticRule
	fallback string
	prompts  []string
}

func NewStatic(fallback string, rules ...StaticRule) *Static {
	return &Static{rules: rules, fallback: fallback}
}

// On appends a rule and returns the receiver for chaining.
func (s *Static) On(match, response string) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, StaticRule{Match: match, Response: response})
	return s
}

// OnError appends a rule that fails.
func (s *Static) OnError(match string, err error) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, StaticRule{Match: match, Err: err})
	return s
}

func (s *Static) Complete(ctx context.Context, operation, prompt string) (string, error) {
	out, err := s.answer(ctx, operation, prompt)
	return out, observe(operation, err)
}

func (s *Static) Extract(ctx context.Context, operation, prompt, _ string) (json.RawMessage, error) {
	out, err := s.answer(ctx, operation, prompt)
	if err != nil {
		return nil, observe(operation, err)
	}
	return json.RawMessage(out), observe(operation, nil)
}

// Prompts returns every prompt seen so far.
func (s *Static) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}

func (s *Static) answer(ctx context.Context, operation, prompt string) (string, error) {
	if err := spendAttempt(ctx); err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return "", errors.NewClassifierTimeoutError(operation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)

	for _, r := range s.rules {
		if strings.Contains(prompt, r.Match) {
			if r.Err != nil {
				return "", r.Err
			}
			return r.Response, nil
		}
	}
	if s.fallback == "" {
		return "", errors.NewClassifierFailedError(operation, errNoRule)
	}
	return s.fallback, nil
}

var errNoRule = stderrors.New("no static rule matched the prompt")
