// Package campaign sequences generation calls across platform and
// category combinations, applies fixed inter-call delays, and persists
// each platform batch with its derived fingerprint.
package campaign

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"brandforge/internal/config"
	"brandforge/internal/core"
	"brandforge/internal/freshness"
	"brandforge/internal/generation"
	"brandforge/internal/llm"
	"brandforge/internal/logger"
	"brandforge/internal/similarity"
)

// Engine is the generation contract campaign assembly depends on,
// satisfied by generation.Orchestrator.
type Engine interface {
	Generate(ctx context.Context, prompt string, validate generation.Validator) (map[string]any, error)
}

// Store persists finished platform batches.
type Store interface {
	InsertCampaign(ctx context.Context, c *core.Campaign) (primitive.ObjectID, error)
}

// Generator runs campaign assembly: strictly sequential platform and
// category loops with fixed configured waits between calls. Sequential on
// purpose; parallelizing would defeat the delay-based throttling.
type Generator struct {
	engine  Engine
	builder *freshness.Builder
	store   Store
	cfg     config.Generation

	sleep func(time.Duration)
	now   func() time.Time
}

// NewGenerator wires campaign assembly.
func NewGenerator(engine Engine, builder *freshness.Builder, store Store, cfg config.Generation) *Generator {
	return &Generator{
		engine:  engine,
		builder: builder,
		store:   store,
		cfg:     cfg,
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// campaignResult is the typed shape of one generation response.
type campaignResult struct {
	Posts []core.Post `json:"posts"`
}

// GenerateCampaigns generates posts for every platform+category pair and
// persists one batch per platform that had at least one successful
// category. Platforms where every category failed are omitted from the
// result; the run only fails as a whole when nothing succeeded anywhere.
//
// The sequence number is computed once before iterating and shared by all
// batches in the run. Concurrent runs for the same brand can race and
// assign duplicate numbers; they are display hints, not identifiers.
func (g *Generator) GenerateCampaigns(ctx context.Context, profile *core.BrandProfile, platforms []core.Platform, types []core.CampaignType) ([]*core.Campaign, error) {
	if len(platforms) == 0 || len(types) == 0 {
		return nil, fmt.Errorf("at least one platform and one campaign type are required")
	}

	count, err := g.builder.CampaignCount(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	sequence := count + 1

	// Correlates all log lines of one run; batches themselves are keyed
	// by ObjectID.
	runID := uuid.NewString()

	logger.Info("Starting campaign generation",
		"run_id", runID,
		"brand_profile_id", profile.ID.Hex(),
		"campaign_number", sequence,
		"platforms", len(platforms),
		"types", len(types))

	var results []*core.Campaign
	var lastErr error

	for pi, platform := range platforms {
		if pi > 0 {
			g.sleep(g.cfg.PlatformDelay)
		}

		var batch []core.CategoryPosts
		for ci, campaignType := range types {
			if ci > 0 {
				g.sleep(g.cfg.CampaignDelay)
			}

			posts, err := g.generatePair(ctx, profile, platform, campaignType, sequence)
			if err != nil {
				lastErr = err
				logger.Warn("Skipping failed platform/category pair",
					"platform", platform,
					"type", campaignType,
					"kind", string(llm.KindPartialCampaignFailure),
					"error", err.Error())
				continue
			}
			batch = append(batch, core.CategoryPosts{Type: campaignType, Posts: posts})
		}

		if len(batch) == 0 {
			logger.Warn("No categories succeeded for platform, omitting batch", "platform", platform)
			continue
		}

		saved, err := g.persistBatch(ctx, profile.ID, platform, batch, sequence)
		if err != nil {
			return nil, err
		}
		results = append(results, saved)
	}

	if len(results) == 0 {
		return nil, llm.NewError(llm.KindPartialCampaignFailure, 0,
			"failed to generate any campaigns", lastErr)
	}

	logger.Info("Campaign generation complete",
		"run_id", runID,
		"brand_profile_id", profile.ID.Hex(),
		"campaign_number", sequence,
		"batches", len(results))
	return results, nil
}

// generatePair runs one generation call for a platform+category pair.
func (g *Generator) generatePair(ctx context.Context, profile *core.BrandProfile, platform core.Platform, campaignType core.CampaignType, sequence int64) ([]core.Post, error) {
	fctx, err := g.builder.FullContext(ctx, profile.ID, platform, campaignType)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(profile.BrandDNA, platform, campaignType, fctx, sequence, g.now(), g.cfg.PostsPerCampaign)

	result, err := g.engine.Generate(ctx, prompt, validatePostsShape)
	if err != nil {
		return nil, err
	}

	decoded, err := decodeCampaignResult(result)
	if err != nil {
		return nil, err
	}

	posts := decoded.Posts
	if len(posts) > g.cfg.PostsPerCampaign {
		posts = posts[:g.cfg.PostsPerCampaign]
	}

	g.warnOnDuplicates(ctx, profile.ID, platform, campaignType, posts)
	return posts, nil
}

// warnOnDuplicates flags generated copy that closely repeats recent
// posts. The batch is still kept; the avoidance context should make this
// rare, and a warning beats throwing away a paid generation call.
func (g *Generator) warnOnDuplicates(ctx context.Context, brandID primitive.ObjectID, platform core.Platform, campaignType core.CampaignType, posts []core.Post) {
	previous, err := g.builder.RecentPostTexts(ctx, brandID, platform, campaignType)
	if err != nil || len(previous) == 0 {
		return
	}

	texts := make([]string, 0, len(posts))
	for _, post := range posts {
		texts = append(texts, post.Text)
	}
	if similarity.CheckForDuplicates(texts, previous, similarity.DefaultThreshold) {
		logger.Warn("Generated posts overlap recent content",
			"platform", platform,
			"type", campaignType)
	}
}

// persistBatch computes derived fields and inserts one platform batch.
func (g *Generator) persistBatch(ctx context.Context, brandID primitive.ObjectID, platform core.Platform, batch []core.CategoryPosts, sequence int64) (*core.Campaign, error) {
	now := g.now()
	c := &core.Campaign{
		BrandProfileID:  brandID,
		CreatedAt:       now,
		Platform:        platform,
		Campaigns:       batch,
		CampaignNumber:  sequence,
		SeasonGenerated: freshness.SeasonOf(now.Month()),
		MonthGenerated:  int(now.Month()),
		YearGenerated:   now.Year(),
		Fingerprint:     g.builder.Fingerprint(batch),
	}

	id, err := g.store.InsertCampaign(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to persist %s campaign: %w", platform, err)
	}
	c.ID = id
	return c, nil
}

// RegeneratePost generates one replacement post outside any stored
// campaign. History is never mutated; the caller decides what to do with
// the new post.
func (g *Generator) RegeneratePost(ctx context.Context, profile *core.BrandProfile, platform core.Platform, campaignType core.CampaignType, instructions string) (*core.Post, error) {
	prompt := buildRegeneratePrompt(profile.BrandDNA, platform, campaignType, instructions)

	result, err := g.engine.Generate(ctx, prompt, validateSinglePostShape)
	if err != nil {
		return nil, err
	}

	var post core.Post
	if err := decodeInto(result, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// validatePostsShape requires a non-empty posts array.
func validatePostsShape(result map[string]any) error {
	raw, ok := result["posts"]
	if !ok {
		return fmt.Errorf("missing posts array")
	}
	posts, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("posts is not an array")
	}
	if len(posts) == 0 {
		return fmt.Errorf("posts array is empty")
	}
	return nil
}

// validateSinglePostShape requires a post object with text.
func validateSinglePostShape(result map[string]any) error {
	text, ok := result["text"].(string)
	if !ok || text == "" {
		return fmt.Errorf("missing post text")
	}
	return nil
}

func decodeCampaignResult(result map[string]any) (*campaignResult, error) {
	var decoded campaignResult
	if err := decodeInto(result, &decoded); err != nil {
		return nil, err
	}
	return &decoded, nil
}

// decodeInto converts a validated generic JSON object into a typed value.
func decodeInto(result map[string]any, target any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return llm.NewError(llm.KindInvalidResponseShape, 0, "failed to re-encode generation result", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return llm.NewError(llm.KindInvalidResponseShape, 0, "generation result does not match expected shape", err)
	}
	return nil
}
