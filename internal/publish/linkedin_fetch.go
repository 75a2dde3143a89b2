package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"brandforge/internal/core"
	"brandforge/internal/logger"
)

// RemotePost is one post fetched back from a platform.
type RemotePost struct {
	ID         string
	Text       string
	CreatedAt  time.Time
	Engagement core.PostEngagement
}

// Fetcher pulls published posts from LinkedIn. The endpoint is a field so
// tests can point it at a local server.
type Fetcher struct {
	httpClient *http.Client
	endpoint   string
}

// NewFetcher creates a Fetcher with the production endpoint.
func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   "https://api.linkedin.com/v2/ugcPosts",
	}
}

// FetchLinkedInPosts lists the member's published UGC posts with their
// engagement counts. Requires the r_ugcPosts scope.
func (f *Fetcher) FetchLinkedInPosts(ctx context.Context, accessToken, profileID string, limit int) ([]RemotePost, error) {
	query := url.Values{}
	query.Set("q", "authors")
	query.Set("authors", fmt.Sprintf("List(urn:li:person:%s)", profileID))
	query.Set("count", fmt.Sprintf("%d", limit))
	query.Set("sortBy", "LAST_MODIFIED")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("LinkedIn API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read LinkedIn response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("LinkedIn API error: status %d", resp.StatusCode)
	}

	var decoded struct {
		Elements []struct {
			ID              string `json:"id"`
			SpecificContent map[string]struct {
				ShareCommentary struct {
					Text string `json:"text"`
				} `json:"shareCommentary"`
			} `json:"specificContent"`
			Created struct {
				Time int64 `json:"time"`
			} `json:"created"`
			SocialDetail struct {
				TotalSocialActivityCounts struct {
					NumLikes    int `json:"numLikes"`
					NumComments int `json:"numComments"`
					NumShares   int `json:"numShares"`
				} `json:"totalSocialActivityCounts"`
			} `json:"socialDetail"`
		} `json:"elements"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("unexpected LinkedIn response body: %w", err)
	}

	posts := make([]RemotePost, 0, len(decoded.Elements))
	for _, element := range decoded.Elements {
		var text string
		if content, ok := element.SpecificContent["com.linkedin.ugc.ShareContent"]; ok {
			text = content.ShareCommentary.Text
		}

		createdAt := time.Now().UTC()
		if element.Created.Time > 0 {
			createdAt = time.UnixMilli(element.Created.Time).UTC()
		}

		counts := element.SocialDetail.TotalSocialActivityCounts
		posts = append(posts, RemotePost{
			ID:        element.ID,
			Text:      text,
			CreatedAt: createdAt,
			Engagement: core.PostEngagement{
				Likes:    counts.NumLikes,
				Comments: counts.NumComments,
				Shares:   counts.NumShares,
			},
		})
	}

	logger.Info("Fetched LinkedIn posts", "count", len(posts))
	return posts, nil
}
