package campaign

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"brandforge/internal/config"
	"brandforge/internal/core"
	"brandforge/internal/freshness"
	"brandforge/internal/generation"
	"brandforge/internal/llm"
)

// fakeEngine scripts generation results keyed by substrings of the prompt.
type fakeEngine struct {
	respond func(prompt string) (map[string]any, error)
	calls   int
	prompts []string
}

func (f *fakeEngine) Generate(ctx context.Context, prompt string, validate generation.Validator) (map[string]any, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	result, err := f.respond(prompt)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(result); err != nil {
			return nil, llm.NewError(llm.KindInvalidResponseShape, 0, "bad shape", err)
		}
	}
	return result, nil
}

type fakeStore struct {
	inserted []*core.Campaign
}

func (f *fakeStore) InsertCampaign(ctx context.Context, c *core.Campaign) (primitive.ObjectID, error) {
	f.inserted = append(f.inserted, c)
	return primitive.NewObjectID(), nil
}

// emptyHistory satisfies freshness.HistoryReader with a fixed count.
type emptyHistory struct {
	count int64
}

func (h *emptyHistory) CampaignCount(ctx context.Context, brandID primitive.ObjectID) (int64, error) {
	return h.count, nil
}

func (h *emptyHistory) RecentCampaignSlices(ctx context.Context, brandID primitive.ObjectID, platform core.Platform, category core.CampaignType, limit int) ([]freshness.CampaignSlice, error) {
	return nil, nil
}

func (h *emptyHistory) PublishedFingerprints(ctx context.Context, brandID primitive.ObjectID, platform core.Platform, limit int) ([]core.PostFingerprint, error) {
	return nil, nil
}

func postsResult(texts ...string) map[string]any {
	posts := make([]any, 0, len(texts))
	for _, text := range texts {
		posts = append(posts, map[string]any{
			"text":           text,
			"hashtags":       []any{"#fresh"},
			"imagePrompt":    "an image",
			"callToAction":   "click",
			"bestTimeToPost": "9am",
		})
	}
	return map[string]any{"posts": posts}
}

func testProfile() *core.BrandProfile {
	return &core.BrandProfile{
		ID: primitive.NewObjectID(),
		BrandDNA: core.BrandDNA{
			Voice: core.BrandVoice{Tone: "bold", Personality: []string{"direct"}, LanguageStyle: "plain"},
			Values: []string{"clarity"},
			TargetAudience: core.TargetAudience{Demographics: "founders", PainPoints: []string{"time"}},
			Positioning: core.Positioning{UniqueValue: "speed"},
		},
	}
}

func newTestGenerator(engine Engine, store Store, history freshness.HistoryReader) (*Generator, *[]time.Duration) {
	cfg := config.Generation{
		PostsPerCampaign: 3,
		CampaignDelay:    2 * time.Second,
		PlatformDelay:    3 * time.Second,
	}
	g := NewGenerator(engine, freshness.NewBuilder(history, nil), store, cfg)
	var sleeps []time.Duration
	g.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	g.now = func() time.Time { return time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC) }
	return g, &sleeps
}

func TestGenerateCampaignsHappyPath(t *testing.T) {
	engine := &fakeEngine{respond: func(string) (map[string]any, error) {
		return postsResult("one", "two", "three"), nil
	}}
	store := &fakeStore{}
	g, sleeps := newTestGenerator(engine, store, &emptyHistory{count: 0})

	platforms := []core.Platform{core.PlatformLinkedIn, core.PlatformTwitter}
	types := []core.CampaignType{core.TypeProductLaunch, core.TypeEngagement}

	results, err := g.GenerateCampaigns(context.Background(), testProfile(), platforms, types)
	if err != nil {
		t.Fatalf("GenerateCampaigns() error = %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("results = %d batches, want one per platform", len(results))
	}
	for _, c := range results {
		if c.CampaignNumber != 1 {
			t.Errorf("CampaignNumber = %d, want 1 for a brand with no history", c.CampaignNumber)
		}
		if len(c.Campaigns) != 2 {
			t.Errorf("categories = %d, want 2", len(c.Campaigns))
		}
		for _, cat := range c.Campaigns {
			if len(cat.Posts) != 3 {
				t.Errorf("posts = %d for %s, want 3", len(cat.Posts), cat.Type)
			}
		}
		if c.SeasonGenerated != "Summer" || c.MonthGenerated != 6 || c.YearGenerated != 2026 {
			t.Errorf("derived date fields = %s/%d/%d", c.SeasonGenerated, c.MonthGenerated, c.YearGenerated)
		}
		if len(c.Fingerprint.Hooks) == 0 {
			t.Errorf("fingerprint not computed for %s batch", c.Platform)
		}
	}

	// One campaign delay inside each platform, one platform delay between
	// the two platforms.
	want := []time.Duration{2 * time.Second, 3 * time.Second, 2 * time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *sleeps, want)
	}
	for i, d := range want {
		if (*sleeps)[i] != d {
			t.Errorf("sleep[%d] = %v, want %v", i, (*sleeps)[i], d)
		}
	}

	if len(store.inserted) != 2 {
		t.Errorf("inserted = %d batches, want 2", len(store.inserted))
	}
}

func TestGenerateCampaignsPartialFailureSkipsPair(t *testing.T) {
	engine := &fakeEngine{respond: func(prompt string) (map[string]any, error) {
		if strings.Contains(prompt, "CAMPAIGN TYPE: engagement") {
			return nil, llm.NewError(llm.KindBothProvidersFailed, 0, "both failed", nil)
		}
		return postsResult("one", "two", "three"), nil
	}}
	store := &fakeStore{}
	g, _ := newTestGenerator(engine, store, &emptyHistory{})

	results, err := g.GenerateCampaigns(context.Background(), testProfile(),
		[]core.Platform{core.PlatformLinkedIn},
		[]core.CampaignType{core.TypeProductLaunch, core.TypeEngagement})
	if err != nil {
		t.Fatalf("GenerateCampaigns() error = %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if len(results[0].Campaigns) != 1 || results[0].Campaigns[0].Type != core.TypeProductLaunch {
		t.Errorf("batch categories = %+v, want only product_launch", results[0].Campaigns)
	}
}

func TestGenerateCampaignsOmitsZeroSuccessPlatform(t *testing.T) {
	engine := &fakeEngine{respond: func(prompt string) (map[string]any, error) {
		if strings.Contains(prompt, "PLATFORM: TWITTER") {
			return nil, llm.NewError(llm.KindBothProvidersFailed, 0, "both failed", nil)
		}
		return postsResult("one", "two", "three"), nil
	}}
	store := &fakeStore{}
	g, _ := newTestGenerator(engine, store, &emptyHistory{})

	results, err := g.GenerateCampaigns(context.Background(), testProfile(),
		[]core.Platform{core.PlatformTwitter, core.PlatformLinkedIn},
		[]core.CampaignType{core.TypeBrandAwareness})
	if err != nil {
		t.Fatalf("GenerateCampaigns() error = %v", err)
	}

	if len(results) != 1 || results[0].Platform != core.PlatformLinkedIn {
		t.Errorf("results = %+v, want only the linkedin batch", results)
	}
	if len(store.inserted) != 1 {
		t.Errorf("inserted = %d, want zero-success platform never persisted", len(store.inserted))
	}
}

func TestGenerateCampaignsAllPairsFailed(t *testing.T) {
	engine := &fakeEngine{respond: func(string) (map[string]any, error) {
		return nil, llm.NewError(llm.KindRateLimited, 429, "slow down", nil)
	}}
	g, _ := newTestGenerator(engine, &fakeStore{}, &emptyHistory{})

	_, err := g.GenerateCampaigns(context.Background(), testProfile(),
		[]core.Platform{core.PlatformLinkedIn},
		[]core.CampaignType{core.TypeEngagement})
	if llm.KindOf(err) != llm.KindPartialCampaignFailure {
		t.Errorf("KindOf() = %s, want %s", llm.KindOf(err), llm.KindPartialCampaignFailure)
	}
}

func TestGenerateCampaignsSequenceStableForRun(t *testing.T) {
	engine := &fakeEngine{respond: func(string) (map[string]any, error) {
		return postsResult("one"), nil
	}}
	store := &fakeStore{}
	g, _ := newTestGenerator(engine, store, &emptyHistory{count: 7})

	results, err := g.GenerateCampaigns(context.Background(), testProfile(),
		[]core.Platform{core.PlatformLinkedIn, core.PlatformFacebook},
		[]core.CampaignType{core.TypeEngagement})
	if err != nil {
		t.Fatalf("GenerateCampaigns() error = %v", err)
	}

	for _, c := range results {
		if c.CampaignNumber != 8 {
			t.Errorf("CampaignNumber = %d, want 8 for every batch in the run", c.CampaignNumber)
		}
	}
}

func TestGenerateCampaignsTruncatesExtraPosts(t *testing.T) {
	engine := &fakeEngine{respond: func(string) (map[string]any, error) {
		return postsResult("one", "two", "three", "four", "five"), nil
	}}
	store := &fakeStore{}
	g, _ := newTestGenerator(engine, store, &emptyHistory{})

	results, err := g.GenerateCampaigns(context.Background(), testProfile(),
		[]core.Platform{core.PlatformInstagram},
		[]core.CampaignType{core.TypeProductLaunch})
	if err != nil {
		t.Fatalf("GenerateCampaigns() error = %v", err)
	}
	if got := len(results[0].Campaigns[0].Posts); got != 3 {
		t.Errorf("posts = %d, want truncated to 3", got)
	}
}

func TestRegeneratePost(t *testing.T) {
	engine := &fakeEngine{respond: func(prompt string) (map[string]any, error) {
		if !strings.Contains(prompt, "SPECIAL INSTRUCTIONS FROM USER:\nmake it shorter") {
			t.Errorf("prompt missing user instructions")
		}
		return map[string]any{
			"text":           "A brand new angle",
			"hashtags":       []any{"#new"},
			"imagePrompt":    "fresh visual",
			"callToAction":   "try it",
			"bestTimeToPost": "noon",
		}, nil
	}}
	g, _ := newTestGenerator(engine, &fakeStore{}, &emptyHistory{})

	post, err := g.RegeneratePost(context.Background(), testProfile(), core.PlatformTwitter, core.TypeEngagement, "make it shorter")
	if err != nil {
		t.Fatalf("RegeneratePost() error = %v", err)
	}
	if post.Text != "A brand new angle" || len(post.Hashtags) != 1 {
		t.Errorf("unexpected post %+v", post)
	}
}

func TestBuildPromptIncludesAvoidanceContext(t *testing.T) {
	fctx := core.FullContext{
		ContextSummary: core.ContextSummary{
			RecentThemes:         []string{"growth"},
			UsedHooks:            []string{"discover how we"},
			UsedHashtags:         []string{"#growth"},
			CampaignCount:        4,
			SeasonalDistribution: map[string]int{"Winter": 2},
		},
		PublishedContext: core.PublishedContext{
			PublishedHooks: []string{"already live hook"},
			TotalPublished: 5,
		},
	}

	prompt := buildPrompt(testProfile().BrandDNA, core.PlatformLinkedIn, core.TypeThoughtLeadership, fctx, 5, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC), 3)

	for _, want := range []string{
		"Campaign #5",
		"FRESHNESS CONSTRAINTS",
		"discover how we",
		"#growth",
		"already live hook",
		"- Winter: 2 campaigns",
		"Season: Winter",
		"PLATFORM: LINKEDIN",
		"Max Length: 3000",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptNoHistoryOmitsConstraints(t *testing.T) {
	prompt := buildPrompt(testProfile().BrandDNA, core.PlatformTwitter, core.TypeEngagement, core.FullContext{}, 1, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), 3)
	if strings.Contains(prompt, "FRESHNESS CONSTRAINTS") {
		t.Error("prompt should omit avoidance section for a brand with no history")
	}
}
