package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"brandforge/internal/core"
)

func newTestPublisher(srv *httptest.Server) *Publisher {
	return &Publisher{
		httpClient:       srv.Client(),
		linkedinEndpoint: srv.URL + "/linkedin",
		twitterEndpoint:  srv.URL + "/twitter",
		facebookEndpoint: srv.URL + "/facebook",
	}
}

func TestPostToLinkedIn(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Restli-Protocol-Version") != "2.0.0" {
			t.Errorf("missing Restli header")
		}
		if r.Header.Get("Authorization") != "Bearer token-1" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"id": "urn:li:share:123"})
	}))
	defer srv.Close()

	p := newTestPublisher(srv)
	result, err := p.PostToLinkedIn(context.Background(), "token-1", "user-9", "Hello world", []string{"launch", "#news"})
	if err != nil {
		t.Fatalf("PostToLinkedIn() error = %v", err)
	}
	if result.PostID != "urn:li:share:123" {
		t.Errorf("PostID = %q", result.PostID)
	}
	if gotBody["author"] != "urn:li:person:user-9" {
		t.Errorf("author = %v", gotBody["author"])
	}

	content := gotBody["specificContent"].(map[string]any)["com.linkedin.ugc.ShareContent"].(map[string]any)
	text := content["shareCommentary"].(map[string]any)["text"].(string)
	if !strings.Contains(text, "#launch #news") {
		t.Errorf("post text = %q, want hashtag line with # normalized", text)
	}
}

func TestPostToTwitterTrimsToLimit(t *testing.T) {
	var gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotText = body.Text
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "555"}})
	}))
	defer srv.Close()

	p := newTestPublisher(srv)
	long := strings.Repeat("word ", 80)
	result, err := p.PostToTwitter(context.Background(), "token", long, []string{"toolong"})
	if err != nil {
		t.Fatalf("PostToTwitter() error = %v", err)
	}
	if len(gotText) > 280 {
		t.Errorf("tweet length = %d, want at most 280", len(gotText))
	}
	if strings.Contains(gotText, "#toolong") {
		t.Error("hashtags should be dropped when they would exceed the limit")
	}
	if result.URL != "https://twitter.com/i/web/status/555" {
		t.Errorf("URL = %q", result.URL)
	}
}

func TestPostToFacebook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/page-7/feed") {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["access_token"] != "fb-token" {
			t.Errorf("access_token = %v", body["access_token"])
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "page-7_88"})
	}))
	defer srv.Close()

	p := newTestPublisher(srv)
	result, err := p.PostToFacebook(context.Background(), "fb-token", "page-7", "Community update", nil)
	if err != nil {
		t.Fatalf("PostToFacebook() error = %v", err)
	}
	if result.PostID != "page-7_88" {
		t.Errorf("PostID = %q", result.PostID)
	}
}

func TestPublishAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	p := newTestPublisher(srv)
	_, err := p.PostToLinkedIn(context.Background(), "bad", "user", "text", nil)
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %v, want status surfaced", err)
	}
}

func TestSinglePostFingerprint(t *testing.T) {
	text := "Excited to Announce our BIGGEST product update yet! Faster builds, cleaner dashboards. #DevTools #Shipping"
	fp := SinglePostFingerprint(text)

	if fp.Hook != strings.ToLower(fp.Hook) {
		t.Errorf("hook %q not lowercase", fp.Hook)
	}
	if len(fp.Hook) > 60 {
		t.Errorf("hook length = %d", len(fp.Hook))
	}
	if len(fp.KeyThemes) > 5 {
		t.Errorf("themes = %v, want at most 5", fp.KeyThemes)
	}
	wantTags := []string{"devtools", "shipping"}
	if len(fp.Hashtags) != 2 || fp.Hashtags[0] != wantTags[0] || fp.Hashtags[1] != wantTags[1] {
		t.Errorf("hashtags = %v, want %v", fp.Hashtags, wantTags)
	}
}

func TestSinglePostFingerprintMultibyteText(t *testing.T) {
	text := "Lancement café: " + strings.Repeat("日本語テキスト", 15) + " #été"
	fp := SinglePostFingerprint(text)

	if !utf8.ValidString(fp.Hook) {
		t.Errorf("hook %q is not valid UTF-8", fp.Hook)
	}
	if n := utf8.RuneCountInString(fp.Hook); n > 60 {
		t.Errorf("hook %q is %d chars, want at most 60", fp.Hook, n)
	}
}

// fakeSyncStore tracks inserted and updated posts in memory.
type fakeSyncStore struct {
	existing map[string]*core.PublishedPost
	inserted []*core.PublishedPost
	updated  []primitive.ObjectID
}

func (f *fakeSyncStore) GetPublishedPostByPlatformID(ctx context.Context, accountID primitive.ObjectID, platformPostID string) (*core.PublishedPost, error) {
	return f.existing[platformPostID], nil
}

func (f *fakeSyncStore) InsertPublishedPost(ctx context.Context, post *core.PublishedPost) (primitive.ObjectID, error) {
	f.inserted = append(f.inserted, post)
	return primitive.NewObjectID(), nil
}

func (f *fakeSyncStore) UpdateEngagement(ctx context.Context, id primitive.ObjectID, engagement core.PostEngagement) error {
	f.updated = append(f.updated, id)
	return nil
}

type fakeFetcher struct {
	posts []RemotePost
	err   error
}

func (f *fakeFetcher) FetchLinkedInPosts(ctx context.Context, accessToken, profileID string, limit int) ([]RemotePost, error) {
	return f.posts, f.err
}

func TestSyncImportsNewAndRefreshesKnown(t *testing.T) {
	knownID := primitive.NewObjectID()
	store := &fakeSyncStore{
		existing: map[string]*core.PublishedPost{
			"known-post": {ID: knownID, PlatformPostID: "known-post"},
		},
	}
	fetcher := &fakeFetcher{posts: []RemotePost{
		{ID: "known-post", Text: "Already synced", Engagement: core.PostEngagement{Likes: 4}},
		{ID: "new-post", Text: "Fresh announcement #news", CreatedAt: time.Now()},
	}}

	account := &core.SocialAccount{
		ID:             primitive.NewObjectID(),
		BrandProfileID: primitive.NewObjectID(),
		Platform:       core.PlatformLinkedIn,
		ProfileID:      "user-1",
		ExpiresAt:      time.Now().Add(time.Hour),
	}

	s := NewSyncer(fetcher, store)
	imported, err := s.Sync(context.Background(), account)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if imported != 1 {
		t.Errorf("imported = %d, want 1", imported)
	}
	if len(store.updated) != 1 || store.updated[0] != knownID {
		t.Errorf("updated = %v, want engagement refresh for known post", store.updated)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserted = %d, want 1", len(store.inserted))
	}
	record := store.inserted[0]
	if record.PlatformPostID != "new-post" || record.BrandProfileID != account.BrandProfileID {
		t.Errorf("record = %+v", record)
	}
	if record.Fingerprint.Hook == "" || len(record.Fingerprint.Hashtags) != 1 {
		t.Errorf("fingerprint = %+v, want computed at import", record.Fingerprint)
	}
}

func TestSyncRejectsExpiredToken(t *testing.T) {
	account := &core.SocialAccount{
		Platform:  core.PlatformLinkedIn,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	s := NewSyncer(&fakeFetcher{}, &fakeSyncStore{})
	if _, err := s.Sync(context.Background(), account); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestSyncUnsupportedPlatform(t *testing.T) {
	account := &core.SocialAccount{
		Platform:  core.PlatformInstagram,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	s := NewSyncer(&fakeFetcher{}, &fakeSyncStore{})
	if _, err := s.Sync(context.Background(), account); err == nil {
		t.Error("expected error for unsupported platform")
	}
}

func TestFetchLinkedInPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "authors" {
			t.Errorf("q = %q", r.URL.Query().Get("q"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"elements": []map[string]any{
				{
					"id": "urn:li:ugcPost:1",
					"specificContent": map[string]any{
						"com.linkedin.ugc.ShareContent": map[string]any{
							"shareCommentary": map[string]string{"text": "Post body"},
						},
					},
					"created": map[string]int64{"time": 1700000000000},
					"socialDetail": map[string]any{
						"totalSocialActivityCounts": map[string]int{
							"numLikes": 7, "numComments": 2, "numShares": 1,
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	f := &Fetcher{httpClient: srv.Client(), endpoint: srv.URL}
	posts, err := f.FetchLinkedInPosts(context.Background(), "token", "user-1", 50)
	if err != nil {
		t.Fatalf("FetchLinkedInPosts() error = %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(posts))
	}
	if posts[0].Text != "Post body" || posts[0].Engagement.Likes != 7 {
		t.Errorf("post = %+v", posts[0])
	}
	if posts[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not decoded")
	}
}
