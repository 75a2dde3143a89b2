package llm

import (
	"errors"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare JSON untouched",
			input: `{"a":1}`,
			want:  `{"a":1}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "plain fence",
			input: "```\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "surrounding whitespace",
			input: "  \n```json\n{\"a\":1}\n```  \n",
			want:  `{"a":1}`,
		},
		{
			name:  "leading fence only",
			input: "```json\n{\"a\":1}",
			want:  `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.input); got != tt.want {
				t.Errorf("stripFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid object", func(t *testing.T) {
		out, err := decodeJSON(`{"posts": []}`)
		if err != nil {
			t.Fatalf("decodeJSON() error = %v", err)
		}
		if _, ok := out["posts"]; !ok {
			t.Errorf("expected posts key in %v", out)
		}
	})

	t.Run("fenced object", func(t *testing.T) {
		out, err := decodeJSON("```json\n{\"confidence_score\": 0.9}\n```")
		if err != nil {
			t.Fatalf("decodeJSON() error = %v", err)
		}
		if out["confidence_score"] != 0.9 {
			t.Errorf("confidence_score = %v, want 0.9", out["confidence_score"])
		}
	})

	t.Run("malformed text classified", func(t *testing.T) {
		_, err := decodeJSON("Sure! Here is your campaign:")
		if err == nil {
			t.Fatal("expected error for non-JSON text")
		}
		var ge *GenerationError
		if !errors.As(err, &ge) {
			t.Fatalf("expected *GenerationError, got %T", err)
		}
		if ge.Kind != KindMalformedJSON {
			t.Errorf("Kind = %s, want %s", ge.Kind, KindMalformedJSON)
		}
	})
}

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"classified kind", NewError(KindRateLimited, 429, "slow down", nil), true},
		{"status only", NewError(KindProviderError, 429, "too many requests", nil), true},
		{"quota message", errors.New("googleapi: Error: quota exceeded for model"), true},
		{"rate limit message", errors.New("rate limit reached"), true},
		{"auth error", NewError(KindProviderError, 401, "unauthorized", nil), false},
		{"plain failure", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimit(tt.err); got != tt.want {
				t.Errorf("IsRateLimit() = %v, want %v", got, tt.want)
			}
		})
	}
}
