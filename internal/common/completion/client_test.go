// internal/common/completion/client_test.go
package completion

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"scheme-finder/internal/common/logger"
)

// ==========================
// Test doubles
// ==========================

type scriptedStep struct {
	text string
	err  error
}

type scriptedBackend struct {
	mu       sync.Mutex
	steps    []scriptedStep
	requests []Request
	delay    time.Duration
}

func (b *scriptedBackend) Name() string { return "scripted" }

func (b *scriptedBackend) Generate(ctx context.Context, req Request) (string, error) {
	b.mu.Lock()
	b.requests = append(b.requests, req)
	idx := len(b.requests) - 1
	b.mu.Unlock()

	if b.delay > 0 {
		select {
		case <-time.After(b.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if idx >= len(b.steps) {
		return "", errors.New("unexpected call")
	}
	return b.steps[idx].text, b.steps[idx].err
}

func (b *scriptedBackend) attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func createTestConfig() Config {
	return Config{
		MaxTokens:        1024,
		Temperature:      0.2,
		Timeout:          time.Second,
		RateLimitBackoff: 10 * time.Millisecond,
	}
}

func status(code int) error { return &StatusError{StatusCode: code} }

// ==========================
// Complete
// ==========================

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name         string
		steps        []scriptedStep
		wantText     string
		wantErr      error
		wantAttempts int
	}{
		{
			name:         "success returns sanitized text",
			steps:        []scriptedStep{{text: "```json\n{\"a\":1}\n```"}},
			wantText:     `{"a":1}`,
			wantAttempts: 1,
		},
		{
			name:         "429 then success",
			steps:        []scriptedStep{{err: status(http.StatusTooManyRequests)}, {text: "[]"}},
			wantText:     "[]",
			wantAttempts: 2,
		},
		{
			name:         "429 twice is rate limited after one retry",
			steps:        []scriptedStep{{err: status(http.StatusTooManyRequests)}, {err: status(http.StatusTooManyRequests)}},
			wantErr:      ErrRateLimited,
			wantAttempts: 2,
		},
		{
			name:         "500 is not retried",
			steps:        []scriptedStep{{err: status(http.StatusInternalServerError)}},
			wantErr:      ErrServiceUnavailable,
			wantAttempts: 1,
		},
		{
			name:         "401 is not retried",
			steps:        []scriptedStep{{err: status(http.StatusUnauthorized)}},
			wantErr:      ErrServiceUnavailable,
			wantAttempts: 1,
		},
		{
			name:         "429 then 500 stops at service unavailable",
			steps:        []scriptedStep{{err: status(http.StatusTooManyRequests)}, {err: status(http.StatusBadGateway)}},
			wantErr:      ErrServiceUnavailable,
			wantAttempts: 2,
		},
		{
			name:         "transport failure",
			steps:        []scriptedStep{{err: errors.New("dial tcp: connection refused")}},
			wantErr:      ErrNetwork,
			wantAttempts: 1,
		},
		{
			name:         "empty text",
			steps:        []scriptedStep{{text: "  \n "}},
			wantErr:      ErrEmptyResponse,
			wantAttempts: 1,
		},
		{
			name:         "fence with nothing inside",
			steps:        []scriptedStep{{text: "```json\n```"}},
			wantErr:      ErrEmptyResponse,
			wantAttempts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &scriptedBackend{steps: tt.steps}
			client := NewClient(backend, createTestConfig(), logger.NewTestLogger(t))

			text, err := client.Complete(context.Background(), "system", "user")

			assert.Equal(t, tt.wantAttempts, backend.attempts())
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Empty(t, text)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestClient_Complete_ForwardsSettings(t *testing.T) {
	backend := &scriptedBackend{steps: []scriptedStep{{text: "ok"}}}
	client := NewClient(backend, createTestConfig(), logger.NewNoOpLogger())

	_, err := client.Complete(context.Background(), "pin the schema", "raw text")
	require.NoError(t, err)

	require.Len(t, backend.requests, 1)
	assert.Equal(t, "pin the schema", backend.requests[0].System)
	assert.Equal(t, "raw text", backend.requests[0].User)
	assert.Equal(t, 1024, backend.requests[0].MaxTokens)
	assert.InDelta(t, 0.2, backend.requests[0].Temperature, 1e-9)
}

func TestClient_Complete_ZeroTemperatureIsKept(t *testing.T) {
	backend := &scriptedBackend{steps: []scriptedStep{{text: "ok"}}}
	cfg := createTestConfig()
	cfg.Temperature = 0
	client := NewClient(backend, cfg, logger.NewNoOpLogger())

	_, err := client.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	require.Len(t, backend.requests, 1)
	assert.Zero(t, backend.requests[0].Temperature)
}

func TestClient_Complete_BackoffWaits(t *testing.T) {
	backend := &scriptedBackend{steps: []scriptedStep{{err: status(http.StatusTooManyRequests)}, {text: "ok"}}}
	cfg := createTestConfig()
	cfg.RateLimitBackoff = 50 * time.Millisecond
	client := NewClient(backend, cfg, logger.NewNoOpLogger())

	start := time.Now()
	_, err := client.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestClient_Complete_TimeoutIsNetworkError(t *testing.T) {
	backend := &scriptedBackend{steps: []scriptedStep{{text: "late"}}, delay: time.Second}
	cfg := createTestConfig()
	cfg.Timeout = 20 * time.Millisecond
	client := NewClient(backend, cfg, logger.NewNoOpLogger())

	_, err := client.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, 1, backend.attempts())
}

func TestClient_Complete_CancelDuringBackoff(t *testing.T) {
	backend := &scriptedBackend{steps: []scriptedStep{{err: status(http.StatusTooManyRequests)}, {text: "ok"}}}
	cfg := createTestConfig()
	cfg.RateLimitBackoff = time.Minute
	client := NewClient(backend, cfg, logger.NewNoOpLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, "s", "u")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 1, backend.attempts())
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(&scriptedBackend{}, Config{}, logger.NewNoOpLogger())
	assert.Equal(t, 4096, client.config.MaxTokens)
	assert.Equal(t, 2*time.Second, client.config.RateLimitBackoff)
	assert.Equal(t, 60*time.Second, client.config.Timeout)
}

func TestClient_Complete_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	tests := []struct {
		name     string
		steps    []scriptedStep
		attempts int64
		status   codes.Code
	}{
		{"ok after retry", []scriptedStep{{err: status(http.StatusTooManyRequests)}, {text: "done"}}, 2, codes.Unset},
		{"unavailable", []scriptedStep{{err: status(http.StatusInternalServerError)}}, 1, codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &scriptedBackend{steps: tt.steps}
			client := NewClient(backend, createTestConfig(), logger.NewNoOpLogger()).
				WithTracer(provider.Tracer("test"))

			_, _ = client.Complete(context.Background(), "s", "u")

			spans := recorder.Ended()
			span := spans[len(spans)-1]
			assert.Equal(t, "completion.Complete", span.Name())
			assert.Equal(t, tt.status, span.Status().Code)

			attrs := map[attribute.Key]attribute.Value{}
			for _, kv := range span.Attributes() {
				attrs[kv.Key] = kv.Value
			}
			assert.Equal(t, "scripted", attrs["completion.provider"].AsString())
			assert.Equal(t, tt.attempts, attrs["completion.attempts"].AsInt64())
		})
	}
}
