package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"brandforge/internal/core"
	"brandforge/internal/llm"
	"brandforge/internal/persistence"
	"brandforge/internal/publish"
)

// Health check response
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Status response
type StatusResponse struct {
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

var serverStartTime = time.Now()

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := s.deps.DB.Ping(r.Context()); err != nil {
		checks["database"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Checks: checks,
		})
		return
	}
	checks["database"] = "ok"

	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Checks: checks,
	})
}

// handleStatus handles the /api/status endpoint
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, StatusResponse{
		Version: "v1.0.0",
		Uptime:  time.Since(serverStartTime).String(),
	})
}

type analyzeWebsiteRequest struct {
	URL string `json:"url"`
}

// handleAnalyzeWebsite handles POST /api/analyze-website
func (s *Server) handleAnalyzeWebsite(w http.ResponseWriter, r *http.Request) {
	var req analyzeWebsiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		s.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	analysis, err := s.deps.Scraper.Analyze(r.Context(), req.URL)
	if err != nil {
		s.log.Error("Website analysis failed", "url", req.URL, "error", err)
		s.respondError(w, http.StatusBadGateway, "failed to analyze website: "+err.Error())
		return
	}

	id, err := s.deps.DB.InsertAnalysis(r.Context(), analysis)
	if err != nil {
		s.handleError(w, err)
		return
	}
	analysis.ID = id

	s.respondJSON(w, http.StatusOK, analysis)
}

type generateBrandDNARequest struct {
	AnalysisID string `json:"analysis_id"`
}

// handleGenerateBrandDNA handles POST /api/generate-brand-dna
func (s *Server) handleGenerateBrandDNA(w http.ResponseWriter, r *http.Request) {
	var req generateBrandDNARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AnalysisID == "" {
		s.respondError(w, http.StatusBadRequest, "analysis_id is required")
		return
	}
	analysisID, err := primitive.ObjectIDFromHex(req.AnalysisID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid analysis_id")
		return
	}

	analysis, err := s.deps.DB.GetAnalysis(r.Context(), analysisID)
	if err != nil {
		s.handleError(w, err)
		return
	}

	result, err := s.deps.Analyzer.GenerateBrandDNA(r.Context(), analysis)
	if err != nil {
		s.handleError(w, err)
		return
	}

	profile := &core.BrandProfile{
		AnalysisID:      analysis.ID,
		URL:             analysis.URL,
		GeneratedAt:     time.Now().UTC(),
		BrandDNA:        result.BrandDNA,
		ConfidenceScore: result.ConfidenceScore,
	}
	id, err := s.deps.DB.InsertBrandProfile(r.Context(), profile)
	if err != nil {
		s.handleError(w, err)
		return
	}
	profile.ID = id

	s.respondJSON(w, http.StatusOK, profile)
}

// handleListBrandProfiles handles GET /api/brand-profiles
func (s *Server) handleListBrandProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.deps.DB.ListBrandProfiles(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}
	if profiles == nil {
		profiles = []core.BrandProfile{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

type generateCampaignsRequest struct {
	BrandProfileID string   `json:"brand_profile_id"`
	Platforms      []string `json:"platforms"`
	CampaignTypes  []string `json:"campaign_types"`
}

// handleGenerateCampaigns handles POST /api/generate-campaigns
func (s *Server) handleGenerateCampaigns(w http.ResponseWriter, r *http.Request) {
	var req generateCampaignsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BrandProfileID == "" {
		s.respondError(w, http.StatusBadRequest, "brand_profile_id is required")
		return
	}
	brandID, err := primitive.ObjectIDFromHex(req.BrandProfileID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid brand_profile_id")
		return
	}

	platforms, err := parsePlatforms(req.Platforms)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	types, err := parseCampaignTypes(req.CampaignTypes)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := s.deps.DB.GetBrandProfile(r.Context(), brandID)
	if err != nil {
		s.handleError(w, err)
		return
	}

	campaigns, err := s.deps.Generator.GenerateCampaigns(r.Context(), profile, platforms, types)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"campaigns": campaigns})
}

// handleListCampaigns handles GET /api/generate-campaigns
func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	rawID := r.URL.Query().Get("brand_profile_id")
	if rawID == "" {
		s.respondError(w, http.StatusBadRequest, "brand_profile_id is required")
		return
	}
	brandID, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid brand_profile_id")
		return
	}

	platform := core.Platform(r.URL.Query().Get("platform"))
	if platform != "" && !core.ValidPlatform(platform) {
		s.respondError(w, http.StatusBadRequest, "unknown platform: "+string(platform))
		return
	}

	campaigns, err := s.deps.DB.ListCampaigns(r.Context(), brandID, platform)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if campaigns == nil {
		campaigns = []core.Campaign{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"campaigns": campaigns})
}

type regenerateCampaignRequest struct {
	BrandProfileID string `json:"brand_profile_id"`
	Platform       string `json:"platform"`
	CampaignType   string `json:"campaign_type"`
	Instructions   string `json:"instructions"`
}

// handleRegenerateCampaign handles POST /api/regenerate-campaign
func (s *Server) handleRegenerateCampaign(w http.ResponseWriter, r *http.Request) {
	var req regenerateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BrandProfileID == "" {
		s.respondError(w, http.StatusBadRequest, "brand_profile_id is required")
		return
	}
	brandID, err := primitive.ObjectIDFromHex(req.BrandProfileID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid brand_profile_id")
		return
	}

	platform := core.Platform(req.Platform)
	if !core.ValidPlatform(platform) {
		s.respondError(w, http.StatusBadRequest, "unknown platform: "+req.Platform)
		return
	}
	campaignType := core.CampaignType(req.CampaignType)
	if !core.ValidCampaignType(campaignType) {
		s.respondError(w, http.StatusBadRequest, "unknown campaign type: "+req.CampaignType)
		return
	}

	profile, err := s.deps.DB.GetBrandProfile(r.Context(), brandID)
	if err != nil {
		s.handleError(w, err)
		return
	}

	post, err := s.deps.Generator.RegeneratePost(r.Context(), profile, platform, campaignType, req.Instructions)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"post": post})
}

type postToSocialRequest struct {
	BrandProfileID string   `json:"brand_profile_id"`
	Platform       string   `json:"platform"`
	Content        string   `json:"content"`
	Hashtags       []string `json:"hashtags"`
}

// handlePostToSocial handles POST /api/post-to-social
func (s *Server) handlePostToSocial(w http.ResponseWriter, r *http.Request) {
	var req postToSocialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BrandProfileID == "" || req.Content == "" {
		s.respondError(w, http.StatusBadRequest, "brand_profile_id and content are required")
		return
	}
	brandID, err := primitive.ObjectIDFromHex(req.BrandProfileID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid brand_profile_id")
		return
	}
	platform := core.Platform(req.Platform)
	if !core.ValidPlatform(platform) {
		s.respondError(w, http.StatusBadRequest, "unknown platform: "+req.Platform)
		return
	}

	account, err := s.deps.DB.GetSocialAccount(r.Context(), brandID, platform)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "no connected "+req.Platform+" account")
			return
		}
		s.handleError(w, err)
		return
	}

	result, err := s.deps.Publisher.Publish(r.Context(), account, req.Content, req.Hashtags)
	if err != nil {
		s.log.Error("Publish failed", "platform", platform, "error", err)
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	record := &core.PublishedPost{
		SocialAccountID: account.ID,
		BrandProfileID:  brandID,
		Platform:        platform,
		PlatformPostID:  result.PostID,
		Content:         req.Content,
		PublishedAt:     time.Now().UTC(),
		Fingerprint:     publish.SinglePostFingerprint(req.Content),
		LastSyncedAt:    time.Now().UTC(),
	}
	id, err := s.deps.DB.InsertPublishedPost(r.Context(), record)
	if err != nil {
		s.handleError(w, err)
		return
	}
	record.ID = id

	s.respondJSON(w, http.StatusOK, map[string]any{
		"result": result,
		"post":   record,
	})
}

// handleListSocialAccounts handles GET /api/social/accounts
func (s *Server) handleListSocialAccounts(w http.ResponseWriter, r *http.Request) {
	rawID := r.URL.Query().Get("brand_profile_id")
	if rawID == "" {
		s.respondError(w, http.StatusBadRequest, "brand_profile_id is required")
		return
	}
	brandID, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid brand_profile_id")
		return
	}

	accounts, err := s.deps.DB.ListSocialAccounts(r.Context(), brandID)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if accounts == nil {
		accounts = []core.SocialAccount{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

type socialSyncRequest struct {
	BrandProfileID string `json:"brand_profile_id"`
	Platform       string `json:"platform"`
}

// handleSocialSync handles POST /api/social/sync
func (s *Server) handleSocialSync(w http.ResponseWriter, r *http.Request) {
	var req socialSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BrandProfileID == "" {
		s.respondError(w, http.StatusBadRequest, "brand_profile_id is required")
		return
	}
	brandID, err := primitive.ObjectIDFromHex(req.BrandProfileID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid brand_profile_id")
		return
	}
	platform := core.Platform(req.Platform)
	if platform == "" {
		platform = core.PlatformLinkedIn
	}
	if !core.ValidPlatform(platform) {
		s.respondError(w, http.StatusBadRequest, "unknown platform: "+req.Platform)
		return
	}

	account, err := s.deps.DB.GetSocialAccount(r.Context(), brandID, platform)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "no connected "+string(platform)+" account")
			return
		}
		s.handleError(w, err)
		return
	}

	imported, err := s.deps.Syncer.Sync(r.Context(), account)
	if err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"imported": imported,
		"platform": platform,
	})
}

// handleAnalytics handles GET /api/analytics. Summarizes engagement
// across the brand's published posts.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	rawID := r.URL.Query().Get("brand_profile_id")
	if rawID == "" {
		s.respondError(w, http.StatusBadRequest, "brand_profile_id is required")
		return
	}
	brandID, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid brand_profile_id")
		return
	}

	posts, err := s.deps.DB.ListPublishedPosts(r.Context(), brandID)
	if err != nil {
		s.handleError(w, err)
		return
	}

	var totals core.PostEngagement
	byPlatform := map[core.Platform]int{}
	for _, post := range posts {
		totals.Likes += post.Engagement.Likes
		totals.Comments += post.Engagement.Comments
		totals.Shares += post.Engagement.Shares
		totals.Impressions += post.Engagement.Impressions
		byPlatform[post.Platform]++
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"total_posts":       len(posts),
		"total_engagement":  totals,
		"posts_by_platform": byPlatform,
	})
}

// parsePlatforms validates the requested platforms, defaulting to all of
// them when none are given.
func parsePlatforms(raw []string) ([]core.Platform, error) {
	if len(raw) == 0 {
		return core.Platforms, nil
	}
	platforms := make([]core.Platform, 0, len(raw))
	for _, v := range raw {
		p := core.Platform(v)
		if !core.ValidPlatform(p) {
			return nil, errors.New("unknown platform: " + v)
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}

// parseCampaignTypes validates the requested campaign types, defaulting
// to all of them when none are given.
func parseCampaignTypes(raw []string) ([]core.CampaignType, error) {
	if len(raw) == 0 {
		return core.CampaignTypes, nil
	}
	types := make([]core.CampaignType, 0, len(raw))
	for _, v := range raw {
		t := core.CampaignType(v)
		if !core.ValidCampaignType(t) {
			return nil, errors.New("unknown campaign type: " + v)
		}
		types = append(types, t)
	}
	return types, nil
}

// handleError maps internal errors to HTTP status codes.
func (s *Server) handleError(w http.ResponseWriter, err error) {
	if errors.Is(err, persistence.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "not found")
		return
	}

	switch llm.KindOf(err) {
	case llm.KindRateLimited:
		s.respondError(w, http.StatusTooManyRequests, err.Error())
	case llm.KindModelUnavailable,
		llm.KindPrimaryFailedNoFallback,
		llm.KindBothProvidersFailed,
		llm.KindPartialCampaignFailure:
		s.respondError(w, http.StatusBadGateway, err.Error())
	case llm.KindMalformedJSON, llm.KindInvalidResponseShape:
		s.respondError(w, http.StatusBadGateway, err.Error())
	default:
		s.log.Error("Request failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode response", "error", err)
	}
}

// respondError writes a JSON error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
