// Package publish pushes generated content to the social platform APIs
// and syncs published posts back for freshness context.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"brandforge/internal/core"
	"brandforge/internal/logger"
)

// Result identifies a successfully published post.
type Result struct {
	PostID string `json:"post_id"`
	URL    string `json:"url,omitempty"`
}

// Publisher calls the platform REST APIs. Endpoints are fields so tests
// can point them at local servers.
type Publisher struct {
	httpClient *http.Client

	linkedinEndpoint string
	twitterEndpoint  string
	facebookEndpoint string
}

// NewPublisher creates a Publisher with the production endpoints.
func NewPublisher() *Publisher {
	return &Publisher{
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		linkedinEndpoint: "https://api.linkedin.com/v2/ugcPosts",
		twitterEndpoint:  "https://api.twitter.com/2/tweets",
		facebookEndpoint: "https://graph.facebook.com/v18.0",
	}
}

// Publish dispatches to the platform the account is connected to.
func (p *Publisher) Publish(ctx context.Context, account *core.SocialAccount, content string, hashtags []string) (*Result, error) {
	switch account.Platform {
	case core.PlatformLinkedIn:
		return p.PostToLinkedIn(ctx, account.AccessToken, account.ProfileID, content, hashtags)
	case core.PlatformTwitter:
		return p.PostToTwitter(ctx, account.AccessToken, content, hashtags)
	case core.PlatformFacebook:
		return p.PostToFacebook(ctx, account.AccessToken, account.ProfileID, content, hashtags)
	default:
		return nil, fmt.Errorf("publishing to %s is not supported", account.Platform)
	}
}

// PostToLinkedIn publishes a UGC post on behalf of the given member.
func (p *Publisher) PostToLinkedIn(ctx context.Context, accessToken, userID, content string, hashtags []string) (*Result, error) {
	body := map[string]any{
		"author":         fmt.Sprintf("urn:li:person:%s", userID),
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary":    map[string]any{"text": withHashtags(content, hashtags)},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	headers := map[string]string{
		"Authorization":             "Bearer " + accessToken,
		"X-Restli-Protocol-Version": "2.0.0",
	}

	var decoded struct {
		ID string `json:"id"`
	}
	if err := p.postJSON(ctx, p.linkedinEndpoint, headers, body, &decoded); err != nil {
		return nil, fmt.Errorf("LinkedIn API error: %w", err)
	}

	logger.Info("Published to LinkedIn", "post_id", decoded.ID)
	return &Result{PostID: decoded.ID}, nil
}

// PostToTwitter publishes a tweet, trimming to the platform limit.
func (p *Publisher) PostToTwitter(ctx context.Context, accessToken, content string, hashtags []string) (*Result, error) {
	text := content
	if len(hashtags) > 0 {
		tagged := withHashtags(content, hashtags)
		if len(tagged) <= 280 {
			text = tagged
		}
	}
	if len(text) > 280 {
		text = text[:280]
	}

	headers := map[string]string{"Authorization": "Bearer " + accessToken}

	var decoded struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := p.postJSON(ctx, p.twitterEndpoint, headers, map[string]any{"text": text}, &decoded); err != nil {
		return nil, fmt.Errorf("Twitter API error: %w", err)
	}

	logger.Info("Published to Twitter", "post_id", decoded.Data.ID)
	return &Result{
		PostID: decoded.Data.ID,
		URL:    "https://twitter.com/i/web/status/" + decoded.Data.ID,
	}, nil
}

// PostToFacebook publishes to a page feed via the Graph API.
func (p *Publisher) PostToFacebook(ctx context.Context, accessToken, pageID, content string, hashtags []string) (*Result, error) {
	body := map[string]any{
		"message":      withHashtags(content, hashtags),
		"access_token": accessToken,
	}

	var decoded struct {
		ID string `json:"id"`
	}
	endpoint := fmt.Sprintf("%s/%s/feed", p.facebookEndpoint, pageID)
	if err := p.postJSON(ctx, endpoint, nil, body, &decoded); err != nil {
		return nil, fmt.Errorf("Facebook API error: %w", err)
	}

	logger.Info("Published to Facebook", "post_id", decoded.ID)
	return &Result{
		PostID: decoded.ID,
		URL:    "https://facebook.com/" + decoded.ID,
	}, nil
}

// withHashtags appends the hashtag line to the post body.
func withHashtags(content string, hashtags []string) string {
	if len(hashtags) == 0 {
		return content
	}
	tags := make([]string, 0, len(hashtags))
	for _, tag := range hashtags {
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		tags = append(tags, tag)
	}
	return content + "\n\n" + strings.Join(tags, " ")
}

func (p *Publisher) postJSON(ctx context.Context, endpoint string, headers map[string]string, body any, target any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("unexpected response body: %w", err)
	}
	return nil
}
