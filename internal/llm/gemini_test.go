package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeGenerate builds a generate func that replays scripted responses per
// model name and records the order of models attempted.
func fakeGenerate(script map[string]error, success map[string]string, calls *[]string) func(ctx context.Context, model, prompt string) (string, error) {
	return func(ctx context.Context, model, prompt string) (string, error) {
		*calls = append(*calls, model)
		if err, ok := script[model]; ok {
			return "", err
		}
		if out, ok := success[model]; ok {
			return out, nil
		}
		return "", fmt.Errorf("unscripted model %s", model)
	}
}

func TestGeminiModelFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("first model succeeds", func(t *testing.T) {
		var calls []string
		c := &GeminiClient{models: []string{"model-a", "model-b"}}
		c.generate = fakeGenerate(nil, map[string]string{"model-a": `{"ok": true}`}, &calls)

		out, err := c.GenerateStructured(ctx, "prompt")
		if err != nil {
			t.Fatalf("GenerateStructured() error = %v", err)
		}
		if out["ok"] != true {
			t.Errorf("unexpected result %v", out)
		}
		if len(calls) != 1 || calls[0] != "model-a" {
			t.Errorf("calls = %v, want [model-a]", calls)
		}
	})

	t.Run("404 advances to next candidate", func(t *testing.T) {
		var calls []string
		c := &GeminiClient{models: []string{"model-a", "model-b"}}
		c.generate = fakeGenerate(
			map[string]error{"model-a": errors.New("googleapi: 404 model not found")},
			map[string]string{"model-b": `{"ok": true}`},
			&calls,
		)

		_, err := c.GenerateStructured(ctx, "prompt")
		if err != nil {
			t.Fatalf("GenerateStructured() error = %v", err)
		}
		if len(calls) != 2 {
			t.Errorf("calls = %v, want both models tried", calls)
		}
	})

	t.Run("429 advances without blocking retry", func(t *testing.T) {
		var calls []string
		c := &GeminiClient{models: []string{"model-a", "model-b"}}
		c.generate = fakeGenerate(
			map[string]error{"model-a": errors.New("googleapi: 429 quota exceeded")},
			map[string]string{"model-b": `{"ok": true}`},
			&calls,
		)

		_, err := c.GenerateStructured(ctx, "prompt")
		if err != nil {
			t.Fatalf("GenerateStructured() error = %v", err)
		}
		if len(calls) != 2 {
			t.Errorf("calls = %v, want both models tried", calls)
		}
	})

	t.Run("all candidates rate limited surfaces RateLimited", func(t *testing.T) {
		var calls []string
		c := &GeminiClient{models: []string{"model-a", "model-b", "model-c"}}
		c.generate = fakeGenerate(
			map[string]error{
				"model-a": errors.New("googleapi: 429 quota exceeded"),
				"model-b": errors.New("rate limit reached"),
				"model-c": errors.New("googleapi: 429 too many requests"),
			},
			nil,
			&calls,
		)

		_, err := c.GenerateStructured(ctx, "prompt")
		if KindOf(err) != KindRateLimited {
			t.Errorf("KindOf() = %s, want %s (err: %v)", KindOf(err), KindRateLimited, err)
		}
		if len(calls) != 3 {
			t.Errorf("calls = %v, want all candidates tried", calls)
		}
	})

	t.Run("mixed 404 and 429 exhaustion surfaces ModelUnavailable", func(t *testing.T) {
		var calls []string
		c := &GeminiClient{models: []string{"model-a", "model-b"}}
		c.generate = fakeGenerate(
			map[string]error{
				"model-a": errors.New("googleapi: 404 model not found"),
				"model-b": errors.New("googleapi: 429 quota exceeded"),
			},
			nil,
			&calls,
		)

		_, err := c.GenerateStructured(ctx, "prompt")
		if KindOf(err) != KindModelUnavailable {
			t.Errorf("KindOf() = %s, want %s (err: %v)", KindOf(err), KindModelUnavailable, err)
		}
	})

	t.Run("other error aborts immediately", func(t *testing.T) {
		var calls []string
		c := &GeminiClient{models: []string{"model-a", "model-b"}}
		c.generate = fakeGenerate(
			map[string]error{"model-a": errors.New("401 unauthorized")},
			map[string]string{"model-b": `{"ok": true}`},
			&calls,
		)

		_, err := c.GenerateStructured(ctx, "prompt")
		if err == nil {
			t.Fatal("expected error")
		}
		if KindOf(err) != KindProviderError {
			t.Errorf("KindOf() = %s, want %s", KindOf(err), KindProviderError)
		}
		if len(calls) != 1 {
			t.Errorf("calls = %v, want abort after first model", calls)
		}
	})

	t.Run("malformed output classified not retried", func(t *testing.T) {
		var calls []string
		c := &GeminiClient{models: []string{"model-a", "model-b"}}
		c.generate = fakeGenerate(nil, map[string]string{"model-a": "not json at all"}, &calls)

		_, err := c.GenerateStructured(ctx, "prompt")
		if KindOf(err) != KindMalformedJSON {
			t.Errorf("KindOf() = %s, want %s", KindOf(err), KindMalformedJSON)
		}
		if len(calls) != 1 {
			t.Errorf("calls = %v, want one call", calls)
		}
	})

	t.Run("empty prompt rejected", func(t *testing.T) {
		c := &GeminiClient{models: []string{"model-a"}}
		c.generate = func(ctx context.Context, model, prompt string) (string, error) {
			t.Fatal("generate should not be called for empty prompt")
			return "", nil
		}
		if _, err := c.GenerateStructured(ctx, "   "); err == nil {
			t.Error("expected error for empty prompt")
		}
	})
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"classified status", NewError(KindProviderError, 503, "down", nil), 503},
		{"429 in message", errors.New("googleapi: 429 resource exhausted"), 429},
		{"404 in message", errors.New("model not found"), 404},
		{"401 in message", errors.New("401 unauthorized"), 401},
		{"unknown", errors.New("connection reset"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusOf(tt.err); got != tt.want {
				t.Errorf("statusOf() = %d, want %d", got, tt.want)
			}
		})
	}
}
