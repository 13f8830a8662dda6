// internal/common/completion/backend.go
package completion

import (
	"context"
	"fmt"
	"net/http"

	"scheme-finder/internal/common/config"
	pipelineerrors "scheme-finder/internal/common/errors"
)

// Sentinels returned by Client.Complete. They are the shared pipeline
// sentinels so errors.Is works across packages.
var (
	ErrRateLimited        = pipelineerrors.ErrRateLimited
	ErrServiceUnavailable = pipelineerrors.ErrServiceUnavailable
	ErrNetwork            = pipelineerrors.ErrNetwork
	ErrEmptyResponse      = pipelineerrors.ErrEmptyResponse
	ErrMalformedOutput    = pipelineerrors.ErrMalformedOutput
)

type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Backend sends a single request to a completion provider. Implementations
// never retry; non-2xx responses are reported as *StatusError and anything
// else that prevents a response is returned as-is.
type Backend interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("completion service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("completion service returned status %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func NewBackend(ctx context.Context, cfg config.CompletionConfig) (Backend, error) {
	switch cfg.Provider {
	case "gateway", "":
		return NewGatewayBackend(GatewayConfig{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey}), nil
	case "anthropic":
		return NewAnthropicBackend(AnthropicConfig{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model}), nil
	case "gemini":
		return NewGeminiBackend(ctx, GeminiConfig{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model})
	default:
		return nil, fmt.Errorf("unsupported completion provider %q", cfg.Provider)
	}
}
