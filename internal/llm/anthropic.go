package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"brandforge/internal/config"
	"brandforge/internal/logger"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"

	// forbiddenModelMarker marks the most expensive Anthropic tier. Any
	// requested model containing it is substituted with the default model
	// no matter what the operator configured. Hard cost control.
	forbiddenModelMarker = "opus"
)

// Policy is the model-selection policy for the fallback backend: which
// models are permitted and what to substitute when a request falls outside
// the allowlist. Injected at construction so tests never touch env state.
type Policy struct {
	AllowedModels  []string
	DefaultModel   string
	RequestedModel string
}

// ResolveModel applies the cost-control policy to the requested model.
// The requested name is normalized (lowercased, trimmed) before matching:
// an exact allowlist match returns the canonical allowed name, and an
// unknown release of an allowed family (same family keyword, opus still
// excluded) maps onto the canonical allowed model rather than the
// default. Substitutions are logged, never surfaced as errors.
func (p Policy) ResolveModel() string {
	requested := strings.ToLower(strings.TrimSpace(p.RequestedModel))
	if requested == "" {
		return p.DefaultModel
	}
	if strings.Contains(requested, forbiddenModelMarker) {
		logger.Warn("Blocked expensive Anthropic model, substituting default",
			"requested", p.RequestedModel, "default", p.DefaultModel)
		return p.DefaultModel
	}

	for _, allowed := range p.AllowedModels {
		if requested == strings.ToLower(allowed) {
			return allowed
		}
	}

	for _, allowed := range p.AllowedModels {
		family := modelFamily(allowed)
		if family != "" && strings.Contains(requested, family) {
			logger.Info("Using allowed model variant",
				"requested", p.RequestedModel, "model", allowed)
			return allowed
		}
	}

	logger.Warn("Anthropic model not in allowlist, substituting default",
		"requested", p.RequestedModel, "default", p.DefaultModel)
	return p.DefaultModel
}

// modelFamily extracts the family keyword of an allowed model name: the
// first non-numeric segment after the vendor prefix, e.g. "haiku" for
// claude-haiku-20240307 and "sonnet" for claude-3-5-sonnet-20241022.
func modelFamily(model string) string {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(model)), "claude-")
	for _, part := range strings.Split(name, "-") {
		if part == "" || isDigits(part) {
			continue
		}
		return part
	}
	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// AnthropicClient is the fallback text-generation backend, reached only
// when the orchestrator escalates a non-rate-limit primary failure.
type AnthropicClient struct {
	apiKey     string
	policy     Policy
	maxTokens  int
	httpClient *http.Client
	endpoint   string
}

// NewAnthropicClient creates the fallback gateway from configuration.
func NewAnthropicClient(cfg config.AnthropicConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required. Set ANTHROPIC_API_KEY or ai.anthropic.api_key in config")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	return &AnthropicClient{
		apiKey: cfg.APIKey,
		policy: Policy{
			AllowedModels:  cfg.AllowedModels,
			DefaultModel:   cfg.DefaultModel,
			RequestedModel: cfg.Model,
		},
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   anthropicEndpoint,
	}, nil
}

// Name identifies this backend in logs and error messages.
func (c *AnthropicClient) Name() string {
	return "anthropic"
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateStructured sends the prompt to the Anthropic Messages API using
// the policy-resolved model and returns the parsed JSON object.
func (c *AnthropicClient) GenerateStructured(ctx context.Context, prompt string) (map[string]any, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, NewError(KindProviderError, 0, "prompt must not be empty", nil)
	}

	model := c.policy.ResolveModel()
	body, err := json.Marshal(anthropicRequest{
		Model:     model,
		MaxTokens: c.maxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt + jsonInstruction},
		},
	})
	if err != nil {
		return nil, NewError(KindProviderError, 0, "failed to encode anthropic request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, NewError(KindProviderError, 0, "failed to build anthropic request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewError(KindProviderError, 0, "anthropic request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(KindProviderError, resp.StatusCode, "failed to read anthropic response", err)
	}

	var decoded anthropicResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, NewError(KindProviderError, resp.StatusCode, "unexpected anthropic response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("anthropic API returned status %d", resp.StatusCode)
		if decoded.Error != nil {
			msg = fmt.Sprintf("anthropic API error (%s): %s", decoded.Error.Type, decoded.Error.Message)
		}
		kind := KindProviderError
		if resp.StatusCode == http.StatusTooManyRequests {
			kind = KindRateLimited
		}
		return nil, NewError(kind, resp.StatusCode, msg, nil)
	}

	var text string
	for _, block := range decoded.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, NewError(KindProviderError, resp.StatusCode, "anthropic response contained no text block", nil)
	}

	return decodeJSON(text)
}
