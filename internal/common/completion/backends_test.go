// internal/common/completion/backends_test.go
package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-finder/internal/common/config"
	"scheme-finder/internal/common/logger"
)

// ==========================
// Gateway
// ==========================

func TestGatewayBackend_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/generate", r.URL.Path)
		assert.Equal(t, "Bearer gw-key", r.Header.Get("Authorization"))

		var body gatewayRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sys", body.System)
		assert.Equal(t, "usr", body.Prompt)
		assert.Equal(t, 256, body.MaxTokens)
		assert.InDelta(t, 0.2, body.Temperature, 1e-9)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(gatewayResponse{Text: "```json\n{}\n```"})
	}))
	defer server.Close()

	backend := NewGatewayBackend(GatewayConfig{BaseURL: server.URL + "/", APIKey: "gw-key"})
	text, err := backend.Generate(context.Background(), Request{System: "sys", User: "usr", MaxTokens: 256, Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "```json\n{}\n```", text)
}

func TestGatewayBackend_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer server.Close()

	_, err := NewGatewayBackend(GatewayConfig{BaseURL: server.URL}).Generate(context.Background(), Request{})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.True(t, statusErr.RateLimited())
	assert.Equal(t, "slow down", statusErr.Message)
}

func TestGatewayBackend_UndecodableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	backend := NewGatewayBackend(GatewayConfig{BaseURL: server.URL})
	_, err := backend.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyResponse))
	assert.Contains(t, err.Error(), "decode gateway response")

	client := NewClient(backend, Config{Timeout: time.Second, RateLimitBackoff: 5 * time.Millisecond}, logger.NewTestLogger(t))
	_, err = client.Complete(context.Background(), "s", "u")
	assert.True(t, errors.Is(err, ErrEmptyResponse))
	assert.False(t, errors.Is(err, ErrNetwork))
}

// Drives the full Client over HTTP: two 429s must yield exactly two requests.
func TestGatewayBackend_ClientRateLimitedTwice(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(
		NewGatewayBackend(GatewayConfig{BaseURL: server.URL}),
		Config{Timeout: time.Second, RateLimitBackoff: 5 * time.Millisecond},
		logger.NewTestLogger(t),
	)
	_, err := client.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

// ==========================
// Anthropic
// ==========================

func TestAnthropicBackend_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"))
		assert.Equal(t, "anthropic-key", r.Header.Get("X-Api-Key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-test", body["model"])
		assert.EqualValues(t, 512, body["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "[{\"title\":\"X\"}]"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer server.Close()

	backend := NewAnthropicBackend(AnthropicConfig{APIKey: "anthropic-key", BaseURL: server.URL, Model: "claude-test"})
	text, err := backend.Generate(context.Background(), Request{System: "s", User: "u", MaxTokens: 512, Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, `[{"title":"X"}]`, text)
}

func TestAnthropicBackend_StatusMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		rateLimited bool
	}{
		{"rate limit", http.StatusTooManyRequests, true},
		{"overloaded", 529, false},
		{"unauthorized", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"nope"}}`))
			}))
			defer server.Close()

			backend := NewAnthropicBackend(AnthropicConfig{APIKey: "k", BaseURL: server.URL})
			_, err := backend.Generate(context.Background(), Request{User: "u", MaxTokens: 10})

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr), "got %v", err)
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, tt.rateLimited, statusErr.RateLimited())
			assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "SDK retries must stay disabled")
		})
	}
}

// ==========================
// Gemini
// ==========================

func TestGeminiBackend_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-test:generateContent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"age\":30}"}]}}]}`))
	}))
	defer server.Close()

	backend, err := NewGeminiBackend(context.Background(), GeminiConfig{APIKey: "g-key", BaseURL: server.URL, Model: "gemini-test"})
	require.NoError(t, err)

	text, err := backend.Generate(context.Background(), Request{System: "s", User: "u", MaxTokens: 100, Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, `{"age":30}`, text)
}

func TestGeminiBackend_StatusMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	backend, err := NewGeminiBackend(context.Background(), GeminiConfig{APIKey: "g-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = backend.Generate(context.Background(), Request{User: "u", MaxTokens: 10})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestNewGeminiBackend_RequiresKey(t *testing.T) {
	_, err := NewGeminiBackend(context.Background(), GeminiConfig{})
	assert.Error(t, err)
}

// ==========================
// Factory
// ==========================

func TestNewBackend(t *testing.T) {
	ctx := context.Background()

	b, err := NewBackend(ctx, config.CompletionConfig{Provider: "gateway", BaseURL: "http://gw"})
	require.NoError(t, err)
	assert.Equal(t, "gateway", b.Name())

	b, err = NewBackend(ctx, config.CompletionConfig{Provider: "anthropic", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", b.Name())

	b, err = NewBackend(ctx, config.CompletionConfig{Provider: "gemini", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", b.Name())

	_, err = NewBackend(ctx, config.CompletionConfig{Provider: "other"})
	assert.Error(t, err)
}
