package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"brandforge/internal/config"
	"brandforge/internal/logger"
)

// GeminiClient is the primary text-generation backend. It walks an ordered
// list of candidate models (most capable first) and normalizes output to
// the generate-JSON-from-prompt contract.
type GeminiClient struct {
	client      *genai.Client
	models      []string
	maxTokens   int32
	temperature float32

	// generate is the raw per-model call. Swappable in tests.
	generate func(ctx context.Context, model, prompt string) (string, error)
}

// NewGeminiClient creates the primary gateway from configuration.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or ai.gemini.api_key in config")
	}
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("at least one gemini candidate model is required")
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &GeminiClient{
		client:      gClient,
		models:      cfg.Models,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
	c.generate = c.generateContent
	return c, nil
}

// Name identifies this backend in logs and error messages.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// GenerateStructured sends the prompt to each candidate model in order and
// returns the parsed JSON object from the first model that answers.
//
// A 404 (model unavailable) or a 429 (rate limited) advances to the next
// candidate immediately. There is no blocking retry on 429: quota resets
// are uniform across calls in a tight loop, so waiting on one model wastes
// time another candidate could use. Any other error aborts the walk. When
// every candidate is exhausted and all failures were rate limits, the
// error is RateLimited so the orchestrator can suppress escalation.
func (c *GeminiClient) GenerateStructured(ctx context.Context, prompt string) (map[string]any, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, NewError(KindProviderError, 0, "prompt must not be empty", nil)
	}

	full := prompt + jsonInstruction

	var lastErr error
	allRateLimited := true
	for _, model := range c.models {
		raw, err := c.generate(ctx, model, full)
		if err == nil {
			return decodeJSON(raw)
		}

		status := statusOf(err)
		switch {
		case status == 404:
			logger.Warn("Gemini model unavailable, trying next candidate", "model", model)
			allRateLimited = false
			lastErr = err
		case status == 429 || IsRateLimit(err):
			logger.Warn("Gemini model rate limited, trying next candidate", "model", model)
			lastErr = err
		default:
			return nil, NewError(KindProviderError, status,
				fmt.Sprintf("gemini model %s failed", model), err)
		}
	}

	if allRateLimited {
		return nil, NewError(KindRateLimited, 429,
			"all Gemini models are rate limited, please retry in a few minutes", lastErr)
	}
	return nil, NewError(KindModelUnavailable, 404,
		"all Gemini candidate models failed", lastErr)
}

// generateContent performs one GenerateContent call against one model.
func (c *GeminiClient) generateContent(ctx context.Context, model, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if c.maxTokens > 0 {
		cfg.MaxOutputTokens = c.maxTokens
	}
	if c.temperature > 0 {
		cfg.Temperature = genai.Ptr(c.temperature)
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", model)
	}
	return text, nil
}

// statusOf extracts an HTTP status code from a backend error. The genai
// SDK surfaces APIError with a numeric code; anything else falls back to
// substring checks on the message.
func statusOf(err error) int {
	if err == nil {
		return 0
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var ge *GenerationError
	if errors.As(err, &ge) && ge.Status != 0 {
		return ge.Status
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"):
		return 429
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found"):
		return 404
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized"):
		return 401
	}
	return 0
}
