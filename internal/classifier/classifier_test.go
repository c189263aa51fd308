package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"sales-assistant/internal/common/budget"
	"sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

func chatServer(t *testing.T, status int, content string, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		assert.Equal(t, "/chat/completions", r.URL.Path)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
}

func newHTTP(t *testing.T, url string, retries int) *HTTPProvider {
	return NewHTTPProvider(HTTPConfig{
		BaseURL:    url,
		APIKey:     "test-key",
		Model:      "test-model",
		Timeout:    time.Second,
		MaxRetries: retries,
		Backoff:    time.Millisecond,
	}, logger.NewTestLogger(t))
}

// ==========================
// HTTP provider
// ==========================

func TestHTTPProvider_Complete(t *testing.T) {
	server := chatServer(t, http.StatusOK, " SALESREP|insights \n", nil)
	defer server.Close()

	out, err := newHTTP(t, server.URL, 0).Complete(context.Background(), OpRoute, "classify")
	require.NoError(t, err)
	assert.Equal(t, "SALESREP|insights", out)
}

func TestHTTPProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode errors.ErrorCode
	}{
		{"rate limited", http.StatusTooManyRequests, errors.ErrCodeClassifierRateLimited},
		{"server error", http.StatusInternalServerError, errors.ErrCodeClassifierFailed},
		{"bad request", http.StatusBadRequest, errors.ErrCodeClassifierFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := chatServer(t, tt.status, "", nil)
			defer server.Close()

			_, err := newHTTP(t, server.URL, 1).Complete(context.Background(), OpRoute, "classify")
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestHTTPProvider_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newHTTP(t, server.URL, 0).Complete(ctx, OpRoute, "classify")
	assert.True(t, errors.HasCode(err, errors.ErrCodeClassifierTimeout))
}

func TestHTTPProvider_SpendsBudgetPerAttempt(t *testing.T) {
	var calls int32
	server := chatServer(t, http.StatusServiceUnavailable, "", &calls)
	defer server.Close()

	tracker := budget.NewTracker(2, time.Minute)
	ctx, cancel := budget.WithTracker(context.Background(), tracker)
	defer cancel()

	_, err := newHTTP(t, server.URL, 5).Complete(ctx, OpRoute, "classify")
	assert.True(t, errors.HasCode(err, errors.ErrCodeBudgetExceeded))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 2, tracker.Spent())
}

// ==========================
// Structured extraction
// ==========================

func TestExtractInto(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  bool
		wantLen  int
	}{
		{"valid", `{"filters":[{"field":"State","operator":"equals","value":"TX"}]}`, false, 1},
		{"fenced", "```json\n{\"filters\":[]}\n```", false, 0},
		{"bad operator", `{"filters":[{"field":"State","operator":"between","value":"TX"}]}`, true, 0},
		{"not json", `I could not find filters`, true, 0},
		{"missing key", `{"conditions":[]}`, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := NewStatic(tt.response)
			fs, err := ExtractInto[models.FilterSet](context.Background(), port, OpExtractFilters, "query", models.FilterSetSchema)
			if tt.wantErr {
				assert.True(t, errors.HasCode(err, errors.ErrCodeClassifierMalformed), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, fs.Filters, tt.wantLen)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence(`  {"a":1} `))
}

// ==========================
// Static port
// ==========================

func TestStatic(t *testing.T) {
	port := NewStatic("").
		On("Texas", `{"filters":[{"field":"State","operator":"equals","value":"TX"}]}`).
		OnError("explode", errors.NewClassifierTimeoutError(OpRoute))

	out, err := port.Complete(context.Background(), OpRoute, "businesses in Texas")
	require.NoError(t, err)
	assert.Contains(t, out, "TX")

	_, err = port.Complete(context.Background(), OpRoute, "please explode")
	assert.True(t, errors.HasCode(err, errors.ErrCodeClassifierTimeout))

	_, err = port.Complete(context.Background(), OpRoute, "unmatched")
	assert.True(t, errors.HasCode(err, errors.ErrCodeClassifierFailed))

	assert.Len(t, port.Prompts(), 3)
}

// ==========================
// Redis cache
// ==========================

func TestCachedPort(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	inner := NewStatic(`{"filters":[]}`)
	cached := NewCachedPort(inner, rdb, time.Minute, logger.NewTestLogger(t))

	for i := 0; i < 3; i++ {
		raw, err := cached.Extract(context.Background(), OpExtractFilters, "Find plumbers", models.FilterSetSchema)
		require.NoError(t, err)
		assert.JSONEq(t, `{"filters":[]}`, string(raw))
	}
	assert.Len(t, inner.Prompts(), 1, "later calls are served from redis")

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], cacheKeyPrefix+OpExtractFilters)
	assert.True(t, mr.TTL(keys[0]) > 0)

	_, err = cached.Complete(context.Background(), OpRoute, "route me")
	require.NoError(t, err)
	assert.Len(t, inner.Prompts(), 2, "completions bypass the cache")
}

func TestCachedPort_RedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	inner := NewStatic(`{"filters":[]}`)
	cached := NewCachedPort(inner, rdb, time.Minute, logger.NewTestLogger(t))

	raw, err := cached.Extract(context.Background(), OpExtractFilters, "q", models.FilterSetSchema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"filters":[]}`, string(raw))
}

func TestCachedPort_Commands(t *testing.T) {
	const body = `{"filters":[]}`
	key := cacheKey(OpExtractFilters, "Find roofers", models.FilterSetSchema)

	t.Run("miss writes through with ttl", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(key).RedisNil()
		mock.ExpectSet(key, []byte(body), 5*time.Minute).SetVal("OK")

		cached := NewCachedPort(NewStatic(body), rdb, 5*time.Minute, logger.NewTestLogger(t))
		raw, err := cached.Extract(context.Background(), OpExtractFilters, "Find roofers", models.FilterSetSchema)
		require.NoError(t, err)
		assert.JSONEq(t, body, string(raw))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt entry is refreshed", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(key).SetVal("not json")
		mock.ExpectSet(key, []byte(body), time.Minute).SetVal("OK")

		inner := NewStatic(body)
		cached := NewCachedPort(inner, rdb, time.Minute, logger.NewTestLogger(t))
		_, err := cached.Extract(context.Background(), OpExtractFilters, "Find roofers", models.FilterSetSchema)
		require.NoError(t, err)
		assert.Len(t, inner.Prompts(), 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid upstream output is not stored", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(key).RedisNil()

		cached := NewCachedPort(NewStatic("sorry, no idea"), rdb, time.Minute, logger.NewTestLogger(t))
		raw, err := cached.Extract(context.Background(), OpExtractFilters, "Find roofers", models.FilterSetSchema)
		require.NoError(t, err)
		assert.Equal(t, "sorry, no idea", string(raw))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// ==========================
// Gemini provider
// ==========================

func TestGeminiProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":generateContent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"DEMANDGEN|prospecting"}]}}]}`))
	}))
	defer server.Close()

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: time.Second,
	}, logger.NewTestLogger(t))
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), OpRoute, "classify")
	require.NoError(t, err)
	assert.Equal(t, "DEMANDGEN|prospecting", out)
}

func TestGeminiProvider_RequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), GeminiConfig{}, logger.NewNoOpLogger())
	assert.Error(t, err)
}
