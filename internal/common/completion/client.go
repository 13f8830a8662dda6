// internal/common/completion/client.go
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"scheme-finder/internal/common/config"
	"scheme-finder/internal/common/metrics"
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type Config struct {
	MaxTokens        int
	Temperature      float64
	Timeout          time.Duration
	RateLimitBackoff time.Duration
}

func ConfigFrom(cfg config.CompletionConfig) Config {
	return Config{
		MaxTokens:        cfg.MaxTokens,
		Temperature:      cfg.Temperature,
		Timeout:          config.GetDuration(cfg.Timeout),
		RateLimitBackoff: config.GetDuration(cfg.RateLimitBackoff),
	}
}

// maxAttempts is the first try plus the single retry after a 429.
const maxAttempts = 2

// Client is the only place in the pipeline that retries completion calls.
type Client struct {
	backend Backend
	config  Config
	logger  Logger
	tracer  trace.Tracer
}

func NewClient(backend Backend, cfg Config, log Logger) *Client {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RateLimitBackoff <= 0 {
		cfg.RateLimitBackoff = 2 * time.Second
	}
	return &Client{
		backend: backend,
		config:  cfg,
		logger:  log,
		tracer:  otel.Tracer("scheme-finder/completion"),
	}
}

// WithTracer replaces the tracer taken from the global provider.
func (c *Client) WithTracer(tracer trace.Tracer) *Client {
	c.tracer = tracer
	return c
}

// Complete returns the sanitized completion text for the given instructions.
// Each call is one span covering every attempt and the backoff between them.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "completion.Complete", trace.WithAttributes(
		attribute.String("completion.provider", c.backend.Name()),
	))
	defer span.End()

	text, attempts, err := c.complete(ctx, system, user)
	span.SetAttributes(attribute.Int("completion.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return text, err
}

func (c *Client) complete(ctx context.Context, system, user string) (string, int, error) {
	req := Request{
		System:      system,
		User:        user,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}
	provider := c.backend.Name()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := c.attempt(ctx, req)
		if err == nil {
			metrics.CompletionAttempts.WithLabelValues(provider, "ok").Inc()
			return text, attempt, nil
		}
		lastErr = err

		if !errors.Is(err, ErrRateLimited) {
			metrics.CompletionAttempts.WithLabelValues(provider, outcomeLabel(err)).Inc()
			c.logger.Error("completion request failed", map[string]interface{}{
				"provider": provider,
				"attempt":  attempt,
				"error":    err.Error(),
			})
			return "", attempt, err
		}

		metrics.CompletionAttempts.WithLabelValues(provider, "rate_limited").Inc()
		if attempt == maxAttempts {
			break
		}

		c.logger.Warn("completion rate limited, backing off", map[string]interface{}{
			"provider": provider,
			"backoff":  c.config.RateLimitBackoff.String(),
		})
		metrics.CompletionRetries.WithLabelValues(provider).Inc()

		timer := time.NewTimer(c.config.RateLimitBackoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return "", attempt, fmt.Errorf("%w: backoff interrupted: %w", ErrRateLimited, ctx.Err())
		}
	}

	c.logger.Error("completion rate limited after retry", map[string]interface{}{
		"provider": provider,
		"attempts": maxAttempts,
	})
	return "", maxAttempts, lastErr
}

func (c *Client) attempt(ctx context.Context, req Request) (string, error) {
	actx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	text, err := c.backend.Generate(actx, req)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			if statusErr.RateLimited() {
				return "", fmt.Errorf("%w: %v", ErrRateLimited, statusErr)
			}
			return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, statusErr)
		}
		if errors.Is(err, ErrEmptyResponse) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	cleaned := Sanitize(text)
	if strings.TrimSpace(cleaned) == "" {
		return "", ErrEmptyResponse
	}
	return cleaned, nil
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrServiceUnavailable):
		return "unavailable"
	case errors.Is(err, ErrEmptyResponse):
		return "empty"
	default:
		return "network"
	}
}
