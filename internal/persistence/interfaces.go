// Package persistence stores brand analyses, profiles, campaigns, and
// publishing records in MongoDB.
package persistence

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"brandforge/internal/core"
	"brandforge/internal/freshness"
)

// Database is the storage contract the rest of the system depends on.
// The mongo implementation is the only production one; tests substitute
// fakes per consumer interface (freshness.HistoryReader, campaign.Store).
type Database interface {
	// Website analyses
	InsertAnalysis(ctx context.Context, analysis *core.WebsiteAnalysis) (primitive.ObjectID, error)
	GetAnalysis(ctx context.Context, id primitive.ObjectID) (*core.WebsiteAnalysis, error)

	// Brand profiles
	InsertBrandProfile(ctx context.Context, profile *core.BrandProfile) (primitive.ObjectID, error)
	GetBrandProfile(ctx context.Context, id primitive.ObjectID) (*core.BrandProfile, error)
	GetBrandProfileByURL(ctx context.Context, url string) (*core.BrandProfile, error)
	ListBrandProfiles(ctx context.Context) ([]core.BrandProfile, error)

	// Campaigns
	InsertCampaign(ctx context.Context, c *core.Campaign) (primitive.ObjectID, error)
	ListCampaigns(ctx context.Context, brandID primitive.ObjectID, platform core.Platform) ([]core.Campaign, error)
	CampaignCount(ctx context.Context, brandID primitive.ObjectID) (int64, error)
	RecentCampaignSlices(ctx context.Context, brandID primitive.ObjectID, platform core.Platform, category core.CampaignType, limit int) ([]freshness.CampaignSlice, error)

	// Published posts
	InsertPublishedPost(ctx context.Context, post *core.PublishedPost) (primitive.ObjectID, error)
	GetPublishedPostByPlatformID(ctx context.Context, accountID primitive.ObjectID, platformPostID string) (*core.PublishedPost, error)
	ListPublishedPosts(ctx context.Context, brandID primitive.ObjectID) ([]core.PublishedPost, error)
	PublishedFingerprints(ctx context.Context, brandID primitive.ObjectID, platform core.Platform, limit int) ([]core.PostFingerprint, error)
	UpdateEngagement(ctx context.Context, id primitive.ObjectID, engagement core.PostEngagement) error

	// Social accounts
	UpsertSocialAccount(ctx context.Context, account *core.SocialAccount) error
	GetSocialAccount(ctx context.Context, brandID primitive.ObjectID, platform core.Platform) (*core.SocialAccount, error)
	ListSocialAccounts(ctx context.Context, brandID primitive.ObjectID) ([]core.SocialAccount, error)

	// Metrics
	InsertCampaignMetrics(ctx context.Context, metrics *core.CampaignMetrics) error

	EnsureIndexes(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
