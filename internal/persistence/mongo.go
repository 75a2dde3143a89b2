package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"brandforge/internal/config"
	"brandforge/internal/core"
	"brandforge/internal/freshness"
	"brandforge/internal/logger"
)

// Collection names.
const (
	colAnalyses       = "website_analyses"
	colBrandProfiles  = "brand_profiles"
	colCampaigns      = "campaigns"
	colPublishedPosts = "published_posts"
	colSocialAccounts = "social_accounts"
	colMetrics        = "campaign_metrics"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// Mongo implements Database over a long-lived client. The client is a
// singleton shared across requests; the driver handles pooling.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, cfg config.Database) (*Mongo, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required. Set MONGODB_URI or database.uri in config")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(dialCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("Connected to MongoDB", "database", cfg.Name)
	return &Mongo{
		client: client,
		db:     client.Database(cfg.Name),
	}, nil
}

// Ping verifies the connection is alive.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) InsertAnalysis(ctx context.Context, analysis *core.WebsiteAnalysis) (primitive.ObjectID, error) {
	return m.insertOne(ctx, colAnalyses, analysis)
}

func (m *Mongo) GetAnalysis(ctx context.Context, id primitive.ObjectID) (*core.WebsiteAnalysis, error) {
	var analysis core.WebsiteAnalysis
	if err := m.findOne(ctx, colAnalyses, bson.M{"_id": id}, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (m *Mongo) InsertBrandProfile(ctx context.Context, profile *core.BrandProfile) (primitive.ObjectID, error) {
	return m.insertOne(ctx, colBrandProfiles, profile)
}

func (m *Mongo) GetBrandProfile(ctx context.Context, id primitive.ObjectID) (*core.BrandProfile, error) {
	var profile core.BrandProfile
	if err := m.findOne(ctx, colBrandProfiles, bson.M{"_id": id}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (m *Mongo) GetBrandProfileByURL(ctx context.Context, url string) (*core.BrandProfile, error) {
	var profile core.BrandProfile
	opts := options.FindOne().SetSort(bson.D{{Key: "generatedAt", Value: -1}})
	err := m.db.Collection(colBrandProfiles).FindOne(ctx, bson.M{"url": url}, opts).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", colBrandProfiles, err)
	}
	return &profile, nil
}

func (m *Mongo) ListBrandProfiles(ctx context.Context) ([]core.BrandProfile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "generatedAt", Value: -1}})
	cursor, err := m.db.Collection(colBrandProfiles).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list brand profiles: %w", err)
	}
	var profiles []core.BrandProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode brand profiles: %w", err)
	}
	return profiles, nil
}

func (m *Mongo) InsertCampaign(ctx context.Context, c *core.Campaign) (primitive.ObjectID, error) {
	return m.insertOne(ctx, colCampaigns, c)
}

func (m *Mongo) ListCampaigns(ctx context.Context, brandID primitive.ObjectID, platform core.Platform) ([]core.Campaign, error) {
	filter := bson.M{"brandProfileId": brandID}
	if platform != "" {
		filter["platform"] = platform
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.db.Collection(colCampaigns).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	var campaigns []core.Campaign
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, fmt.Errorf("failed to decode campaigns: %w", err)
	}
	return campaigns, nil
}

// CampaignCount counts all generated batches for a brand. Backed by
// idx_brand_profile; it runs before every generation run.
func (m *Mongo) CampaignCount(ctx context.Context, brandID primitive.ObjectID) (int64, error) {
	count, err := m.db.Collection(colCampaigns).CountDocuments(ctx, bson.M{"brandProfileId": brandID})
	if err != nil {
		return 0, fmt.Errorf("failed to count campaigns: %w", err)
	}
	return count, nil
}

// RecentCampaignSlices returns the newest batches for a
// brand+platform+category, narrowed to that category's posts. The
// pipeline is covered by idx_brand_platform_type.
func (m *Mongo) RecentCampaignSlices(ctx context.Context, brandID primitive.ObjectID, platform core.Platform, category core.CampaignType, limit int) ([]freshness.CampaignSlice, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"brandProfileId": brandID,
			"platform":       platform,
		}}},
		{{Key: "$unwind", Value: "$campaigns"}},
		{{Key: "$match", Value: bson.M{"campaigns.type": category}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{
			"campaigns.posts": 1,
			"seasonGenerated": 1,
			"createdAt":       1,
		}}},
	}

	cursor, err := m.db.Collection(colCampaigns).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate campaign history: %w", err)
	}

	var docs []struct {
		Campaigns struct {
			Posts []core.Post `bson:"posts"`
		} `bson:"campaigns"`
		SeasonGenerated string `bson:"seasonGenerated"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode campaign history: %w", err)
	}

	slices := make([]freshness.CampaignSlice, 0, len(docs))
	for _, doc := range docs {
		slices = append(slices, freshness.CampaignSlice{
			Posts:  doc.Campaigns.Posts,
			Season: doc.SeasonGenerated,
		})
	}
	return slices, nil
}

func (m *Mongo) InsertPublishedPost(ctx context.Context, post *core.PublishedPost) (primitive.ObjectID, error) {
	return m.insertOne(ctx, colPublishedPosts, post)
}

// GetPublishedPostByPlatformID looks up a synced post by its external
// identifier. Returns (nil, nil) when no post matches.
func (m *Mongo) GetPublishedPostByPlatformID(ctx context.Context, accountID primitive.ObjectID, platformPostID string) (*core.PublishedPost, error) {
	var post core.PublishedPost
	err := m.findOne(ctx, colPublishedPosts, bson.M{
		"socialAccountId": accountID,
		"platformPostId":  platformPostID,
	}, &post)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (m *Mongo) ListPublishedPosts(ctx context.Context, brandID primitive.ObjectID) ([]core.PublishedPost, error) {
	opts := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	cursor, err := m.db.Collection(colPublishedPosts).Find(ctx, bson.M{"brandProfileId": brandID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list published posts: %w", err)
	}
	var posts []core.PublishedPost
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode published posts: %w", err)
	}
	return posts, nil
}

// PublishedFingerprints returns stored fingerprints of the newest
// published posts for a brand+platform. Fingerprints are read as stored,
// never recomputed here.
func (m *Mongo) PublishedFingerprints(ctx context.Context, brandID primitive.ObjectID, platform core.Platform, limit int) ([]core.PostFingerprint, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "publishedAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"fingerprint": 1})

	cursor, err := m.db.Collection(colPublishedPosts).Find(ctx, bson.M{
		"brandProfileId": brandID,
		"platform":       platform,
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query published fingerprints: %w", err)
	}

	var docs []struct {
		Fingerprint core.PostFingerprint `bson:"fingerprint"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode published fingerprints: %w", err)
	}

	fingerprints := make([]core.PostFingerprint, 0, len(docs))
	for _, doc := range docs {
		fingerprints = append(fingerprints, doc.Fingerprint)
	}
	return fingerprints, nil
}

// UpdateEngagement stores refreshed engagement counters and advances the
// sync timestamp.
func (m *Mongo) UpdateEngagement(ctx context.Context, id primitive.ObjectID, engagement core.PostEngagement) error {
	_, err := m.db.Collection(colPublishedPosts).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"engagement":   engagement,
			"lastSyncedAt": time.Now().UTC(),
		}})
	if err != nil {
		return fmt.Errorf("failed to update engagement: %w", err)
	}
	return nil
}

// UpsertSocialAccount stores one account per brand+platform, replacing
// any previous connection.
func (m *Mongo) UpsertSocialAccount(ctx context.Context, account *core.SocialAccount) error {
	filter := bson.M{
		"brandProfileId": account.BrandProfileID,
		"platform":       account.Platform,
	}
	update := bson.M{"$set": bson.M{
		"profileId":   account.ProfileID,
		"accessToken": account.AccessToken,
		"expiresAt":   account.ExpiresAt,
		"connectedAt": account.ConnectedAt,
	}}
	_, err := m.db.Collection(colSocialAccounts).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert social account: %w", err)
	}
	return nil
}

func (m *Mongo) GetSocialAccount(ctx context.Context, brandID primitive.ObjectID, platform core.Platform) (*core.SocialAccount, error) {
	var account core.SocialAccount
	err := m.findOne(ctx, colSocialAccounts, bson.M{
		"brandProfileId": brandID,
		"platform":       platform,
	}, &account)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (m *Mongo) ListSocialAccounts(ctx context.Context, brandID primitive.ObjectID) ([]core.SocialAccount, error) {
	cursor, err := m.db.Collection(colSocialAccounts).Find(ctx, bson.M{"brandProfileId": brandID})
	if err != nil {
		return nil, fmt.Errorf("failed to list social accounts: %w", err)
	}
	var accounts []core.SocialAccount
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode social accounts: %w", err)
	}
	return accounts, nil
}

func (m *Mongo) InsertCampaignMetrics(ctx context.Context, metrics *core.CampaignMetrics) error {
	_, err := m.db.Collection(colMetrics).InsertOne(ctx, metrics)
	if err != nil {
		return fmt.Errorf("failed to insert campaign metrics: %w", err)
	}
	return nil
}

// EnsureIndexes creates the named indexes the read paths depend on.
// Sub-100ms context queries at scale are a requirement, not a tuning nice-to-have.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	type indexSpec struct {
		collection string
		keys       bson.D
		name       string
	}

	specs := []indexSpec{
		{colCampaigns, bson.D{{Key: "brandProfileId", Value: 1}, {Key: "createdAt", Value: -1}}, "idx_brand_created"},
		{colCampaigns, bson.D{{Key: "brandProfileId", Value: 1}, {Key: "platform", Value: 1}, {Key: "createdAt", Value: -1}}, "idx_brand_platform_created"},
		{colCampaigns, bson.D{{Key: "brandProfileId", Value: 1}, {Key: "platform", Value: 1}, {Key: "campaigns.type", Value: 1}}, "idx_brand_platform_type"},
		{colCampaigns, bson.D{{Key: "brandProfileId", Value: 1}}, "idx_brand_profile"},
		{colBrandProfiles, bson.D{{Key: "analysisId", Value: 1}}, "idx_analysis_id"},
		{colBrandProfiles, bson.D{{Key: "url", Value: 1}}, "idx_url"},
		{colAnalyses, bson.D{{Key: "url", Value: 1}, {Key: "analyzedAt", Value: -1}}, "idx_url_analyzed"},
		{colPublishedPosts, bson.D{{Key: "brandProfileId", Value: 1}, {Key: "platform", Value: 1}, {Key: "publishedAt", Value: -1}}, "idx_published_brand_platform"},
		{colSocialAccounts, bson.D{{Key: "brandProfileId", Value: 1}, {Key: "platform", Value: 1}}, "idx_account_brand_platform"},
	}

	for _, spec := range specs {
		_, err := m.db.Collection(spec.collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    spec.keys,
			Options: options.Index().SetName(spec.name),
		})
		if err != nil {
			return fmt.Errorf("failed to create index %s on %s: %w", spec.name, spec.collection, err)
		}
		logger.Info("Index ready", "collection", spec.collection, "index", spec.name)
	}
	return nil
}

func (m *Mongo) insertOne(ctx context.Context, collection string, doc any) (primitive.ObjectID, error) {
	result, err := m.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted ID type %T", result.InsertedID)
	}
	return id, nil
}

func (m *Mongo) findOne(ctx context.Context, collection string, filter bson.M, target any) error {
	err := m.db.Collection(collection).FindOne(ctx, filter).Decode(target)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	return nil
}
