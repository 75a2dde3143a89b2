// Package similarity implements word-level Jaccard similarity for
// flagging near-duplicate post copy.
package similarity

import (
	"strings"
	"unicode/utf8"

	"brandforge/internal/logger"
)

// DefaultThreshold is the similarity above which two posts count as
// duplicates.
const DefaultThreshold = 0.7

// Calculate returns the Jaccard similarity of the word sets of two texts,
// in [0, 1]. Comparison is case insensitive.
func Calculate(text1, text2 string) float64 {
	words1 := wordSet(text1)
	words2 := wordSet(text2)

	if len(words1) == 0 && len(words2) == 0 {
		return 0
	}

	intersection := 0
	for word := range words1 {
		if words2[word] {
			intersection++
		}
	}
	union := len(words1) + len(words2) - intersection

	return float64(intersection) / float64(union)
}

// CheckForDuplicates reports whether any new post exceeds the similarity
// threshold against any previous post. A threshold <= 0 uses the default.
func CheckForDuplicates(newPosts, previousPosts []string, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	for _, newPost := range newPosts {
		for _, oldPost := range previousPosts {
			score := Calculate(newPost, oldPost)
			if score > threshold {
				logger.Warn("High similarity to previous content detected",
					"similarity", score,
					"post_prefix", prefix(newPost, 50))
				return true
			}
		}
	}
	return false
}

func wordSet(text string) map[string]bool {
	set := map[string]bool{}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		set[word] = true
	}
	return set
}

// prefix keeps at most n characters, never splitting a rune.
func prefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
