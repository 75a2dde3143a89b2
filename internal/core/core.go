package core

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Platform identifies a social network a campaign targets.
type Platform string

const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
)

// Platforms lists every supported platform in canonical order.
var Platforms = []Platform{PlatformLinkedIn, PlatformTwitter, PlatformInstagram, PlatformFacebook}

// ValidPlatform reports whether p is one of the supported platforms.
func ValidPlatform(p Platform) bool {
	for _, v := range Platforms {
		if v == p {
			return true
		}
	}
	return false
}

// CampaignType is a content intent that shapes prompt construction.
type CampaignType string

const (
	TypeProductLaunch     CampaignType = "product_launch"
	TypeThoughtLeadership CampaignType = "thought_leadership"
	TypeEngagement        CampaignType = "engagement"
	TypeBrandAwareness    CampaignType = "brand_awareness"
)

// CampaignTypes lists every supported campaign type in canonical order.
var CampaignTypes = []CampaignType{TypeProductLaunch, TypeThoughtLeadership, TypeEngagement, TypeBrandAwareness}

// ValidCampaignType reports whether t is one of the supported campaign types.
func ValidCampaignType(t CampaignType) bool {
	for _, v := range CampaignTypes {
		if v == t {
			return true
		}
	}
	return false
}

// WebsiteAnalysis captures everything scraped from a brand's website.
// It is the immutable input to brand DNA synthesis.
type WebsiteAnalysis struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	URL        string             `bson:"url" json:"url"`
	AnalyzedAt time.Time          `bson:"analyzedAt" json:"analyzed_at"`
	Content    AnalysisContent    `bson:"content" json:"content"`
	Visual     AnalysisVisual     `bson:"visual" json:"visual"`
	Technical  AnalysisTechnical  `bson:"technical" json:"technical"`
}

// AnalysisContent holds the textual signals extracted from a page.
type AnalysisContent struct {
	Title           string   `bson:"title" json:"title"`
	MetaDescription string   `bson:"metaDescription" json:"meta_description"`
	Headings        []string `bson:"headings" json:"headings"`
	BodyText        string   `bson:"bodyText" json:"body_text"`
	KeyPhrases      []string `bson:"keyPhrases" json:"key_phrases"`
}

// AnalysisVisual holds the visual-identity signals extracted from a page.
type AnalysisVisual struct {
	PrimaryColors   []string `bson:"primaryColors" json:"primary_colors"`
	SecondaryColors []string `bson:"secondaryColors" json:"secondary_colors"`
	Fonts           []string `bson:"fonts" json:"fonts"`
	LogoURL         string   `bson:"logoUrl,omitempty" json:"logo_url,omitempty"`
	HeroImages      []string `bson:"heroImages" json:"hero_images"`
}

// AnalysisTechnical holds basic technical facts about the scraped site.
type AnalysisTechnical struct {
	Domain          string `bson:"domain" json:"domain"`
	HasSSL          bool   `bson:"hasSSL" json:"has_ssl"`
	LoadTimeMS      int64  `bson:"loadTime" json:"load_time_ms"`
	MobileOptimized bool   `bson:"mobileOptimized" json:"mobile_optimized"`
}

// BrandDNA is the structured description of a brand's voice, values,
// audience, and positioning, synthesized once from scraped website data.
type BrandDNA struct {
	Voice          BrandVoice     `bson:"voice" json:"voice"`
	Values         []string       `bson:"values" json:"values"`
	TargetAudience TargetAudience `bson:"target_audience" json:"target_audience"`
	Positioning    Positioning    `bson:"positioning" json:"positioning"`
	VisualIdentity VisualIdentity `bson:"visual_identity" json:"visual_identity"`
}

// BrandVoice describes how the brand speaks.
type BrandVoice struct {
	Tone          string   `bson:"tone" json:"tone"`
	Personality   []string `bson:"personality" json:"personality"`
	LanguageStyle string   `bson:"language_style" json:"language_style"`
}

// TargetAudience describes who the brand speaks to.
type TargetAudience struct {
	Demographics   string   `bson:"demographics" json:"demographics"`
	Psychographics string   `bson:"psychographics" json:"psychographics"`
	PainPoints     []string `bson:"pain_points" json:"pain_points"`
}

// Positioning describes where the brand sits in its market.
type Positioning struct {
	Category                   string `bson:"category" json:"category"`
	UniqueValue                string `bson:"unique_value" json:"unique_value"`
	CompetitorsDifferentiation string `bson:"competitors_differentiation" json:"competitors_differentiation"`
}

// VisualIdentity describes the brand's visual language.
type VisualIdentity struct {
	ColorPsychology string   `bson:"color_psychology" json:"color_psychology"`
	DesignStyle     string   `bson:"design_style" json:"design_style"`
	ImageryThemes   []string `bson:"imagery_themes" json:"imagery_themes"`
}

// BrandProfile is a persisted brand DNA with its provenance. It is
// created once per analyzed site and immutable thereafter.
type BrandProfile struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AnalysisID      primitive.ObjectID `bson:"analysisId" json:"analysis_id"`
	URL             string             `bson:"url" json:"url"`
	GeneratedAt     time.Time          `bson:"generatedAt" json:"generated_at"`
	BrandDNA        BrandDNA           `bson:"brandDNA" json:"brand_dna"`
	ConfidenceScore float64            `bson:"confidence_score" json:"confidence_score"`
}

// Post is the wire contract for a single generated social post.
type Post struct {
	Text           string   `bson:"text" json:"text"`
	Hashtags       []string `bson:"hashtags" json:"hashtags"`
	ImagePrompt    string   `bson:"imagePrompt" json:"imagePrompt"`
	CallToAction   string   `bson:"callToAction" json:"callToAction"`
	BestTimeToPost string   `bson:"bestTimeToPost" json:"bestTimeToPost"`
}

// CategoryPosts groups the posts generated for one campaign type.
type CategoryPosts struct {
	Type  CampaignType `bson:"type" json:"type"`
	Posts []Post       `bson:"posts" json:"posts"`
}

// ContentFingerprint is the compact derived summary of a batch of
// generated content. Themes, hooks, and hashtags are always lowercase
// and truncated to their bounds; it is recomputed, never mutated.
type ContentFingerprint struct {
	KeyThemes []string `bson:"keyThemes" json:"key_themes"` // at most 10
	Hooks     []string `bson:"hooks" json:"hooks"`          // at most 5, each at most 60 chars
	Hashtags  []string `bson:"hashtags" json:"hashtags"`
}

// Campaign is one persisted generation batch for a single platform.
// Immutable after creation; regenerating a post creates a new
// standalone post, never a mutation of history.
type Campaign struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BrandProfileID  primitive.ObjectID `bson:"brandProfileId" json:"brand_profile_id"`
	CreatedAt       time.Time          `bson:"createdAt" json:"created_at"`
	Platform        Platform           `bson:"platform" json:"platform"`
	Campaigns       []CategoryPosts    `bson:"campaigns" json:"campaigns"`
	CampaignNumber  int64              `bson:"campaignNumber,omitempty" json:"campaign_number,omitempty"`
	SeasonGenerated string             `bson:"seasonGenerated,omitempty" json:"season_generated,omitempty"`
	MonthGenerated  int                `bson:"monthGenerated,omitempty" json:"month_generated,omitempty"`
	YearGenerated   int                `bson:"yearGenerated,omitempty" json:"year_generated,omitempty"`
	Fingerprint     ContentFingerprint `bson:"fingerprint" json:"fingerprint"`
}

// PostEngagement holds engagement counters synced from a platform.
type PostEngagement struct {
	Likes       int `bson:"likes" json:"likes"`
	Comments    int `bson:"comments" json:"comments"`
	Shares      int `bson:"shares" json:"shares"`
	Impressions int `bson:"impressions" json:"impressions"`
}

// PostFingerprint is the per-post fingerprint stored with published
// content. Read paths trust it as already correct.
type PostFingerprint struct {
	Hook      string   `bson:"hook" json:"hook"`
	KeyThemes []string `bson:"keyThemes" json:"key_themes"`
	Hashtags  []string `bson:"hashtags" json:"hashtags"`
}

// PublishedPost is content that is actually live on an external
// platform, synced back for freshness context.
type PublishedPost struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SocialAccountID primitive.ObjectID `bson:"socialAccountId" json:"social_account_id"`
	BrandProfileID  primitive.ObjectID `bson:"brandProfileId" json:"brand_profile_id"`
	Platform        Platform           `bson:"platform" json:"platform"`
	PlatformPostID  string             `bson:"platformPostId" json:"platform_post_id"`
	Content         string             `bson:"content" json:"content"`
	PublishedAt     time.Time          `bson:"publishedAt" json:"published_at"`
	Engagement      PostEngagement     `bson:"engagement" json:"engagement"`
	Fingerprint     PostFingerprint    `bson:"fingerprint" json:"fingerprint"`
	LastSyncedAt    time.Time          `bson:"lastSyncedAt" json:"last_synced_at"`
}

// SocialAccount is a connected external account used for publishing
// and syncing. Token acquisition happens outside this system; only
// storage and expiry checks live here.
type SocialAccount struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BrandProfileID primitive.ObjectID `bson:"brandProfileId" json:"brand_profile_id"`
	Platform       Platform           `bson:"platform" json:"platform"`
	ProfileID      string             `bson:"profileId" json:"profile_id"`
	AccessToken    string             `bson:"accessToken" json:"-"`
	ExpiresAt      time.Time          `bson:"expiresAt" json:"expires_at"`
	ConnectedAt    time.Time          `bson:"connectedAt" json:"connected_at"`
}

// CampaignMetrics records per-post performance for a published campaign post.
type CampaignMetrics struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CampaignID     primitive.ObjectID `bson:"campaignId" json:"campaign_id"`
	BrandProfileID primitive.ObjectID `bson:"brandProfileId" json:"brand_profile_id"`
	Platform       Platform           `bson:"platform" json:"platform"`
	PostID         string             `bson:"postId,omitempty" json:"post_id,omitempty"`
	Impressions    int                `bson:"impressions" json:"impressions"`
	Engagements    int                `bson:"engagements" json:"engagements"`
	Clicks         int                `bson:"clicks" json:"clicks"`
	Shares         int                `bson:"shares" json:"shares"`
	Comments       int                `bson:"comments" json:"comments"`
	Likes          int                `bson:"likes" json:"likes"`
	EngagementRate float64            `bson:"engagementRate" json:"engagement_rate"`
	CTR            float64            `bson:"ctr" json:"ctr"`
	RecordedAt     time.Time          `bson:"recordedAt" json:"recorded_at"`
	PostText       string             `bson:"postText,omitempty" json:"post_text,omitempty"`
	Hashtags       []string           `bson:"hashtags,omitempty" json:"hashtags,omitempty"`
}

// ContextSummary is the bounded, aggregated view of recent fingerprints
// fed into a new generation prompt. It is a read-time projection and is
// never persisted.
type ContextSummary struct {
	RecentThemes         []string       `json:"recent_themes"` // at most 20
	UsedHooks            []string       `json:"used_hooks"`    // at most 15
	UsedHashtags         []string       `json:"used_hashtags"` // at most 30
	CampaignCount        int64          `json:"campaign_count"`
	SeasonalDistribution map[string]int `json:"seasonal_distribution"`
}

// PublishedContext summarizes what is already live on a platform.
type PublishedContext struct {
	PublishedHooks    []string `json:"published_hooks"`
	PublishedThemes   []string `json:"published_themes"`
	PublishedHashtags []string `json:"published_hashtags"`
	TotalPublished    int64    `json:"total_published"`
}

// FullContext unions generated-campaign context with published-post
// context, kept as separate named fields so prompts can weight them
// differently.
type FullContext struct {
	ContextSummary
	PublishedContext
}
