package freshness

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"brandforge/internal/core"
)

const (
	// Context bounds. History beyond these caps is ignored, not merged.
	maxContextThemes   = 20
	maxContextHooks    = 15
	maxContextHashtags = 30

	// recentBatchLimit restricts compact context to the newest generated
	// batches for the brand+platform+category lineage.
	recentBatchLimit = 10
	// publishedLimit restricts published context to the newest externally
	// published posts for the brand+platform.
	publishedLimit = 50
)

// CampaignSlice is one generated batch narrowed to a single category:
// the posts plus the season the batch was generated in.
type CampaignSlice struct {
	Posts  []core.Post
	Season string
}

// HistoryReader is the persistence contract the builder depends on. Both
// read paths must be index-backed; they run before every generation call.
type HistoryReader interface {
	CampaignCount(ctx context.Context, brandID primitive.ObjectID) (int64, error)
	RecentCampaignSlices(ctx context.Context, brandID primitive.ObjectID, platform core.Platform, category core.CampaignType, limit int) ([]CampaignSlice, error)
	PublishedFingerprints(ctx context.Context, brandID primitive.ObjectID, platform core.Platform, limit int) ([]core.PostFingerprint, error)
}

// Builder computes bounded avoidance context from generation and
// publication history. Summaries are read-time projections, recomputed on
// demand and never persisted.
type Builder struct {
	reader    HistoryReader
	extractor ThemeExtractor
}

// NewBuilder creates a context builder over the given history reader.
// A nil extractor falls back to NaiveExtractor.
func NewBuilder(reader HistoryReader, extractor ThemeExtractor) *Builder {
	if extractor == nil {
		extractor = NaiveExtractor{}
	}
	return &Builder{reader: reader, extractor: extractor}
}

// CampaignCount returns the all-time number of generated campaign batches
// for a brand. The next sequence number is CampaignCount + 1.
func (b *Builder) CampaignCount(ctx context.Context, brandID primitive.ObjectID) (int64, error) {
	count, err := b.reader.CampaignCount(ctx, brandID)
	if err != nil {
		return 0, fmt.Errorf("failed to count campaigns: %w", err)
	}
	return count, nil
}

// CompactContext summarizes the most recent generated batches for a
// brand+platform+category into bounded theme/hook/hashtag sets plus a
// season histogram.
func (b *Builder) CompactContext(ctx context.Context, brandID primitive.ObjectID, platform core.Platform, category core.CampaignType) (core.ContextSummary, error) {
	summary := core.ContextSummary{
		RecentThemes:         []string{},
		UsedHooks:            []string{},
		UsedHashtags:         []string{},
		SeasonalDistribution: map[string]int{},
	}

	count, err := b.reader.CampaignCount(ctx, brandID)
	if err != nil {
		return summary, fmt.Errorf("failed to count campaigns: %w", err)
	}
	summary.CampaignCount = count

	slices, err := b.reader.RecentCampaignSlices(ctx, brandID, platform, category, recentBatchLimit)
	if err != nil {
		return summary, fmt.Errorf("failed to load recent campaigns: %w", err)
	}

	// Slices arrive most-recent-first; the caps keep that bias.
	for _, slice := range slices {
		if slice.Season != "" {
			summary.SeasonalDistribution[slice.Season]++
		}
		for _, post := range slice.Posts {
			hook := truncate(strings.ToLower(strings.TrimSpace(post.Text)), maxHookLength)
			summary.UsedHooks = appendUnique(summary.UsedHooks, hook, maxContextHooks)
			for _, theme := range b.extractor.Extract(post.Text) {
				summary.RecentThemes = appendUnique(summary.RecentThemes, theme, maxContextThemes)
			}
			for _, tag := range post.Hashtags {
				summary.UsedHashtags = appendUnique(summary.UsedHashtags, strings.ToLower(tag), maxContextHashtags)
			}
		}
	}

	return summary, nil
}

// PublishedContext summarizes the stored fingerprints of the most
// recently published posts. Fingerprints are trusted as computed at
// publish time; nothing is re-derived from raw text here.
func (b *Builder) PublishedContext(ctx context.Context, brandID primitive.ObjectID, platform core.Platform) (core.PublishedContext, error) {
	published := core.PublishedContext{
		PublishedHooks:    []string{},
		PublishedThemes:   []string{},
		PublishedHashtags: []string{},
	}

	fingerprints, err := b.reader.PublishedFingerprints(ctx, brandID, platform, publishedLimit)
	if err != nil {
		return published, fmt.Errorf("failed to load published fingerprints: %w", err)
	}

	published.TotalPublished = int64(len(fingerprints))
	for _, fp := range fingerprints {
		published.PublishedHooks = appendUnique(published.PublishedHooks, strings.ToLower(fp.Hook), maxContextHooks)
		for _, theme := range fp.KeyThemes {
			published.PublishedThemes = appendUnique(published.PublishedThemes, strings.ToLower(theme), maxContextThemes)
		}
		for _, tag := range fp.Hashtags {
			published.PublishedHashtags = appendUnique(published.PublishedHashtags, strings.ToLower(tag), maxContextHashtags)
		}
	}

	return published, nil
}

// FullContext combines the generated-content summary and the published
// summary. The fields stay separate so prompts can weight them
// differently.
func (b *Builder) FullContext(ctx context.Context, brandID primitive.ObjectID, platform core.Platform, category core.CampaignType) (core.FullContext, error) {
	summary, err := b.CompactContext(ctx, brandID, platform, category)
	if err != nil {
		return core.FullContext{}, err
	}
	published, err := b.PublishedContext(ctx, brandID, platform)
	if err != nil {
		return core.FullContext{}, err
	}
	return core.FullContext{
		ContextSummary:   summary,
		PublishedContext: published,
	}, nil
}

// RecentPostTexts returns the raw text of the newest generated posts for
// a brand+platform+category lineage, newest first. Used for duplicate
// checks against freshly generated copy.
func (b *Builder) RecentPostTexts(ctx context.Context, brandID primitive.ObjectID, platform core.Platform, category core.CampaignType) ([]string, error) {
	slices, err := b.reader.RecentCampaignSlices(ctx, brandID, platform, category, recentBatchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent campaigns: %w", err)
	}

	var texts []string
	for _, slice := range slices {
		for _, post := range slice.Posts {
			texts = append(texts, post.Text)
		}
	}
	return texts, nil
}

// Fingerprint derives a batch fingerprint using this builder's extractor.
func (b *Builder) Fingerprint(categories []core.CategoryPosts) core.ContentFingerprint {
	return Fingerprint(categories, b.extractor)
}
