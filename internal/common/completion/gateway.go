// internal/common/completion/gateway.go
package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	commonhttp "scheme-finder/internal/common/http"
)

type GatewayConfig struct {
	BaseURL string
	APIKey  string
	// HTTP overrides the transport, mainly for tests. The per-attempt timeout
	// comes from the request context.
	HTTP *commonhttp.Client
}

// GatewayBackend talks to the in-house GenAI gateway:
// POST {base}/api/ai/generate {system, prompt, max_tokens, temperature} -> {text}.
type GatewayBackend struct {
	url    string
	client *commonhttp.Client
}

func NewGatewayBackend(cfg GatewayConfig) *GatewayBackend {
	client := cfg.HTTP
	if client == nil {
		client = commonhttp.NewClient(0)
	}
	if cfg.APIKey != "" {
		client = client.WithHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &GatewayBackend{
		url:    strings.TrimRight(cfg.BaseURL, "/") + "/api/ai/generate",
		client: client,
	}
}

func (b *GatewayBackend) Name() string { return "gateway" }

type gatewayRequest struct {
	System      string  `json:"system"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type gatewayResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func (b *GatewayBackend) Generate(ctx context.Context, req Request) (string, error) {
	status, body, err := b.client.PostJSON(ctx, b.url, gatewayRequest{
		System:      req.System,
		Prompt:      req.User,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		var errBody gatewayResponse
		_ = json.Unmarshal(body, &errBody)
		return "", &StatusError{StatusCode: status, Message: errBody.Error}
	}

	var resp gatewayResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode gateway response: %v", ErrEmptyResponse, err)
	}
	return resp.Text, nil
}

var _ Backend = (*GatewayBackend)(nil)
