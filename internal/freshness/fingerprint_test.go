package freshness

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"brandforge/internal/core"
)

func TestNaiveExtractor(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "first three long tokens",
			text: "Discover how artificial intelligence transforms modern business workflows",
			want: []string{"discover", "artificial", "intelligence"},
		},
		{
			name: "short tokens skipped",
			text: "We do it all for you every day",
			want: []string{},
		},
		{
			name: "punctuation split",
			text: "Innovation, strategy... growth! Together.",
			want: []string{"innovation", "strategy", "growth"},
		},
		{
			name: "lowercased",
			text: "LAUNCHING Tomorrow MORNING",
			want: []string{"launching", "tomorrow", "morning"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NaiveExtractor{}.Extract(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	batch := []core.CategoryPosts{
		{
			Type: core.TypeProductLaunch,
			Posts: []core.Post{
				{Text: "Discover how our platform changes everything\nMore detail below", Hashtags: []string{"#Launch", "#Innovation"}},
				{Text: "Something entirely different this time", Hashtags: []string{"#launch"}},
			},
		},
	}

	first := Fingerprint(batch, nil)
	second := Fingerprint(batch, nil)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("fingerprint not deterministic: %v vs %v", first, second)
	}
}

func TestFingerprintBounds(t *testing.T) {
	posts := make([]core.Post, 0, 40)
	for i := 0; i < 40; i++ {
		posts = append(posts, core.Post{
			Text:     fmt.Sprintf("Opening line number %d with plentiful distinctive wording%d here", i, i) + strings.Repeat(" padding", 20),
			Hashtags: []string{fmt.Sprintf("#tag%d", i)},
		})
	}
	batch := []core.CategoryPosts{{Type: core.TypeEngagement, Posts: posts}}

	fp := Fingerprint(batch, nil)
	if len(fp.Hooks) > 5 {
		t.Errorf("hooks = %d entries, want at most 5", len(fp.Hooks))
	}
	if len(fp.KeyThemes) > 10 {
		t.Errorf("themes = %d entries, want at most 10", len(fp.KeyThemes))
	}
	for _, hook := range fp.Hooks {
		if len(hook) > 60 {
			t.Errorf("hook %q is %d chars, want at most 60", hook, len(hook))
		}
	}
}

func TestFingerprintHookMultibyteText(t *testing.T) {
	batch := []core.CategoryPosts{
		{
			Type: core.TypeBrandAwareness,
			Posts: []core.Post{
				{Text: strings.Repeat("é", 70) + "\nsecond line"},
				{Text: "café räksmörgås " + strings.Repeat("日本語テキスト", 12)},
			},
		},
	}

	fp := Fingerprint(batch, nil)
	if len(fp.Hooks) != 2 {
		t.Fatalf("hooks = %v, want 2 entries", fp.Hooks)
	}
	for _, hook := range fp.Hooks {
		if !utf8.ValidString(hook) {
			t.Errorf("hook %q is not valid UTF-8", hook)
		}
		if n := utf8.RuneCountInString(hook); n > 60 {
			t.Errorf("hook %q is %d chars, want at most 60", hook, n)
		}
	}
}

func TestFingerprintLowercase(t *testing.T) {
	batch := []core.CategoryPosts{
		{
			Type: core.TypeBrandAwareness,
			Posts: []core.Post{
				{Text: "EXCITING Announcement Coming SOON", Hashtags: []string{"#BigNews"}},
			},
		},
	}

	fp := Fingerprint(batch, nil)
	for _, hook := range fp.Hooks {
		if hook != strings.ToLower(hook) {
			t.Errorf("hook %q is not lowercase", hook)
		}
	}
	for _, tag := range fp.Hashtags {
		if tag != strings.ToLower(tag) {
			t.Errorf("hashtag %q is not lowercase", tag)
		}
	}
}

func TestFingerprintHookUsesFirstLine(t *testing.T) {
	batch := []core.CategoryPosts{
		{
			Type: core.TypeThoughtLeadership,
			Posts: []core.Post{
				{Text: "Short hook here\nThis much longer second line should never appear in the hook"},
			},
		},
	}

	fp := Fingerprint(batch, nil)
	if len(fp.Hooks) != 1 || fp.Hooks[0] != "short hook here" {
		t.Errorf("hooks = %v, want [short hook here]", fp.Hooks)
	}
}

func TestFingerprintDeduplicatesIdenticalHooks(t *testing.T) {
	batch := []core.CategoryPosts{
		{
			Type: core.TypeEngagement,
			Posts: []core.Post{
				{Text: "Discover how..."},
				{Text: "Discover how..."},
				{Text: "A different opening entirely"},
			},
		},
	}

	fp := Fingerprint(batch, nil)
	if len(fp.Hooks) != 2 {
		t.Errorf("hooks = %v, want identical openings collapsed to one", fp.Hooks)
	}
}

func TestSeasonOf(t *testing.T) {
	tests := []struct {
		month time.Month
		want  string
	}{
		{time.January, "Winter"},
		{time.February, "Winter"},
		{time.March, "Spring"},
		{time.May, "Spring"},
		{time.June, "Summer"},
		{time.August, "Summer"},
		{time.September, "Fall"},
		{time.November, "Fall"},
		{time.December, "Winter"},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			if got := SeasonOf(tt.month); got != tt.want {
				t.Errorf("SeasonOf(%s) = %q, want %q", tt.month, got, tt.want)
			}
		})
	}
}
