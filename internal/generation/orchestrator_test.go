package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"brandforge/internal/llm"
)

// fakeBackend records calls and replays a scripted result or error.
type fakeBackend struct {
	name    string
	result  map[string]any
	err     error
	calls   int
	prompts []string
}

func (f *fakeBackend) GenerateStructured(ctx context.Context, prompt string) (map[string]any, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeBackend) Name() string { return f.name }

func TestOrchestratorPrimarySuccess(t *testing.T) {
	primary := &fakeBackend{name: "primary", result: map[string]any{"ok": true}}
	fallback := &fakeBackend{name: "fallback", result: map[string]any{"ok": true}}
	o := NewOrchestrator(primary, fallback, true)

	out, err := o.Generate(context.Background(), "prompt", nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out["ok"] != true {
		t.Errorf("unexpected result %v", out)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback.calls = %d, want 0 on primary success", fallback.calls)
	}
}

func TestOrchestratorRateLimitNeverEscalates(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"classified kind", llm.NewError(llm.KindRateLimited, 429, "all models rate limited", nil)},
		{"quota message", errors.New("googleapi: quota exceeded")},
		{"status 429", llm.NewError(llm.KindProviderError, 429, "too many requests", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &fakeBackend{name: "primary", err: tt.err}
			fallback := &fakeBackend{name: "fallback", result: map[string]any{"ok": true}}
			o := NewOrchestrator(primary, fallback, true)

			_, err := o.Generate(context.Background(), "prompt", nil)
			if llm.KindOf(err) != llm.KindRateLimited {
				t.Errorf("KindOf() = %s, want %s", llm.KindOf(err), llm.KindRateLimited)
			}
			if fallback.calls != 0 {
				t.Errorf("fallback.calls = %d, want 0 for rate-limited primary", fallback.calls)
			}
		})
	}
}

func TestOrchestratorEscalatesNonRateLimitFailure(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: llm.NewError(llm.KindProviderError, 401, "unauthorized", nil)}
	fallback := &fakeBackend{name: "fallback", result: map[string]any{"ok": true}}
	o := NewOrchestrator(primary, fallback, true)

	out, err := o.Generate(context.Background(), "the exact prompt", nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out["ok"] != true {
		t.Errorf("unexpected result %v", out)
	}
	if fallback.calls != 1 {
		t.Fatalf("fallback.calls = %d, want exactly 1", fallback.calls)
	}
	if fallback.prompts[0] != "the exact prompt" {
		t.Errorf("fallback received %q, want identical prompt", fallback.prompts[0])
	}
}

func TestOrchestratorBothProvidersFailed(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: llm.NewError(llm.KindMalformedJSON, 0, "bad json", nil)}
	fallback := &fakeBackend{name: "fallback", err: llm.NewError(llm.KindProviderError, 500, "server error", nil)}
	o := NewOrchestrator(primary, fallback, true)

	_, err := o.Generate(context.Background(), "prompt", nil)
	if llm.KindOf(err) != llm.KindBothProvidersFailed {
		t.Errorf("KindOf() = %s, want %s", llm.KindOf(err), llm.KindBothProvidersFailed)
	}
}

func TestOrchestratorNoFallbackMessages(t *testing.T) {
	primaryErr := llm.NewError(llm.KindProviderError, 500, "server error", nil)

	t.Run("disabled by policy", func(t *testing.T) {
		primary := &fakeBackend{name: "primary", err: primaryErr}
		fallback := &fakeBackend{name: "fallback"}
		o := NewOrchestrator(primary, fallback, false)

		_, err := o.Generate(context.Background(), "prompt", nil)
		if llm.KindOf(err) != llm.KindPrimaryFailedNoFallback {
			t.Fatalf("KindOf() = %s, want %s", llm.KindOf(err), llm.KindPrimaryFailedNoFallback)
		}
		if !strings.Contains(err.Error(), "disabled by policy") {
			t.Errorf("error %q should mention policy", err.Error())
		}
		if fallback.calls != 0 {
			t.Errorf("fallback.calls = %d, want 0 when disabled", fallback.calls)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		primary := &fakeBackend{name: "primary", err: primaryErr}
		o := NewOrchestrator(primary, nil, true)

		_, err := o.Generate(context.Background(), "prompt", nil)
		if llm.KindOf(err) != llm.KindPrimaryFailedNoFallback {
			t.Fatalf("KindOf() = %s, want %s", llm.KindOf(err), llm.KindPrimaryFailedNoFallback)
		}
		if !strings.Contains(err.Error(), "not configured") {
			t.Errorf("error %q should mention missing configuration", err.Error())
		}
	})
}

func TestOrchestratorShapeValidation(t *testing.T) {
	requirePosts := func(result map[string]any) error {
		if _, ok := result["posts"]; !ok {
			return fmt.Errorf("missing posts array")
		}
		return nil
	}

	t.Run("invalid primary shape escalates", func(t *testing.T) {
		primary := &fakeBackend{name: "primary", result: map[string]any{"wrong": "shape"}}
		fallback := &fakeBackend{name: "fallback", result: map[string]any{"posts": []any{}}}
		o := NewOrchestrator(primary, fallback, true)

		out, err := o.Generate(context.Background(), "prompt", requirePosts)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if _, ok := out["posts"]; !ok {
			t.Errorf("expected fallback result, got %v", out)
		}
		if fallback.calls != 1 {
			t.Errorf("fallback.calls = %d, want 1", fallback.calls)
		}
	})

	t.Run("validator applied to fallback too", func(t *testing.T) {
		primary := &fakeBackend{name: "primary", result: map[string]any{"wrong": "shape"}}
		fallback := &fakeBackend{name: "fallback", result: map[string]any{"also": "wrong"}}
		o := NewOrchestrator(primary, fallback, true)

		_, err := o.Generate(context.Background(), "prompt", requirePosts)
		if llm.KindOf(err) != llm.KindBothProvidersFailed {
			t.Errorf("KindOf() = %s, want %s", llm.KindOf(err), llm.KindBothProvidersFailed)
		}
	})
}
