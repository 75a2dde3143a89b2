// Package freshness derives compact summaries of previously generated and
// published content so new generation prompts can avoid repeating hooks,
// themes, and hashtags across successive runs.
package freshness

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"brandforge/internal/core"
)

const (
	// Fingerprint bounds.
	maxFingerprintThemes = 10
	maxFingerprintHooks  = 5
	maxHookLength        = 60

	themesPerPost = 3
	minThemeLen   = 6
)

// ThemeExtractor produces coarse theme keywords for one post text. The
// extraction quality can improve independently of fingerprinting and
// context building as long as the output stays an ordered keyword list.
type ThemeExtractor interface {
	Extract(text string) []string
}

// NaiveExtractor keeps the first few tokens longer than five characters.
// The goal is "avoid obviously repeating the same opening line or
// hashtag", not semantic deduplication, so cheap is fine here.
type NaiveExtractor struct{}

func (NaiveExtractor) Extract(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	themes := make([]string, 0, themesPerPost)
	for _, tok := range tokens {
		if len(tok) >= minThemeLen {
			themes = append(themes, tok)
			if len(themes) == themesPerPost {
				break
			}
		}
	}
	return themes
}

// Fingerprint derives the content fingerprint for a campaign batch. It is
// pure and deterministic: the same batch always yields the same themes,
// hooks, and hashtags, all lowercase and truncated to their bounds. This
// is the only place fingerprints are computed; read paths trust stored
// fingerprints as already correct.
func Fingerprint(categories []core.CategoryPosts, extractor ThemeExtractor) core.ContentFingerprint {
	if extractor == nil {
		extractor = NaiveExtractor{}
	}

	var themes, hooks, hashtags []string
	for _, cat := range categories {
		for _, post := range cat.Posts {
			if hook := hookOf(post.Text); hook != "" {
				hooks = appendUnique(hooks, hook, maxFingerprintHooks)
			}
			for _, theme := range extractor.Extract(post.Text) {
				themes = appendUnique(themes, theme, maxFingerprintThemes)
			}
			for _, tag := range post.Hashtags {
				hashtags = appendUnique(hashtags, strings.ToLower(tag), -1)
			}
		}
	}

	return core.ContentFingerprint{
		KeyThemes: themes,
		Hooks:     hooks,
		Hashtags:  hashtags,
	}
}

// hookOf takes the first line of a post, lowercased and truncated to the
// hook length bound.
func hookOf(text string) string {
	line := strings.TrimSpace(text)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	return truncate(strings.ToLower(line), maxHookLength)
}

// truncate keeps at most n characters, never splitting a rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// appendUnique appends value to list if absent, respecting a limit
// (limit < 0 means unbounded). Insertion order is preserved so
// most-recent-first inputs stay most-recent-first.
func appendUnique(list []string, value string, limit int) []string {
	if value == "" {
		return list
	}
	if limit >= 0 && len(list) >= limit {
		return list
	}
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

// SeasonOf maps a calendar month to its meteorological season.
func SeasonOf(month time.Month) string {
	switch month {
	case time.December, time.January, time.February:
		return "Winter"
	case time.March, time.April, time.May:
		return "Spring"
	case time.June, time.July, time.August:
		return "Summer"
	default:
		return "Fall"
	}
}
