package publish

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"brandforge/internal/core"
	"brandforge/internal/logger"
)

var hashtagRegex = regexp.MustCompile(`#\w+`)

// SyncStore is the persistence contract for the sync path. Lookups return
// (nil, nil) when no post matches.
type SyncStore interface {
	GetPublishedPostByPlatformID(ctx context.Context, accountID primitive.ObjectID, platformPostID string) (*core.PublishedPost, error)
	InsertPublishedPost(ctx context.Context, post *core.PublishedPost) (primitive.ObjectID, error)
	UpdateEngagement(ctx context.Context, id primitive.ObjectID, engagement core.PostEngagement) error
}

// PostFetcher lists posts already live on a platform.
type PostFetcher interface {
	FetchLinkedInPosts(ctx context.Context, accessToken, profileID string, limit int) ([]RemotePost, error)
}

// Syncer imports externally published posts into the published_posts
// collection so the freshness builder can see them.
type Syncer struct {
	fetcher PostFetcher
	store   SyncStore
	now     func() time.Time
}

// NewSyncer wires the sync path.
func NewSyncer(fetcher PostFetcher, store SyncStore) *Syncer {
	return &Syncer{fetcher: fetcher, store: store, now: time.Now}
}

// Sync pulls the account's live posts and stores new ones, refreshing
// engagement counters on posts already known. Returns the number of
// newly imported posts.
func (s *Syncer) Sync(ctx context.Context, account *core.SocialAccount) (int, error) {
	if !account.ExpiresAt.IsZero() && account.ExpiresAt.Before(s.now()) {
		return 0, fmt.Errorf("access token expired for %s account, please reconnect", account.Platform)
	}
	if account.Platform != core.PlatformLinkedIn {
		return 0, fmt.Errorf("syncing %s accounts is not supported yet", account.Platform)
	}

	posts, err := s.fetcher.FetchLinkedInPosts(ctx, account.AccessToken, account.ProfileID, 50)
	if err != nil {
		return 0, err
	}
	logger.Info("Syncing published posts", "platform", account.Platform, "found", len(posts))

	imported := 0
	for _, post := range posts {
		existing, err := s.store.GetPublishedPostByPlatformID(ctx, account.ID, post.ID)
		if err != nil {
			return imported, err
		}
		if existing != nil {
			if err := s.store.UpdateEngagement(ctx, existing.ID, post.Engagement); err != nil {
				return imported, err
			}
			continue
		}

		record := &core.PublishedPost{
			SocialAccountID: account.ID,
			BrandProfileID:  account.BrandProfileID,
			Platform:        account.Platform,
			PlatformPostID:  post.ID,
			Content:         post.Text,
			PublishedAt:     post.CreatedAt,
			Engagement:      post.Engagement,
			Fingerprint:     SinglePostFingerprint(post.Text),
			LastSyncedAt:    s.now().UTC(),
		}
		if _, err := s.store.InsertPublishedPost(ctx, record); err != nil {
			return imported, err
		}
		imported++
	}

	logger.Info("Sync complete", "platform", account.Platform, "imported", imported)
	return imported, nil
}

// SinglePostFingerprint derives the fingerprint stored with one published
// post: a 60-char hook, up to 5 coarse keyword themes, and the hashtags
// found in the text, all lowercase.
func SinglePostFingerprint(text string) core.PostFingerprint {
	hook := strings.ToLower(strings.TrimSpace(truncate(text, 60)))

	var themes []string
	seen := map[string]bool{}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len(word) > 5 && !seen[word] {
			seen[word] = true
			themes = append(themes, word)
			if len(themes) == 5 {
				break
			}
		}
	}

	var hashtags []string
	for _, match := range hashtagRegex.FindAllString(text, -1) {
		hashtags = append(hashtags, strings.ToLower(strings.TrimPrefix(match, "#")))
	}

	return core.PostFingerprint{
		Hook:      hook,
		KeyThemes: themes,
		Hashtags:  hashtags,
	}
}

// truncate keeps at most n characters, never splitting a rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
