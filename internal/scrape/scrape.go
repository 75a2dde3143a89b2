// Package scrape fetches a website and extracts the content, visual, and
// technical signals the brand analyzer feeds to the generation backends.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"brandforge/internal/config"
	"brandforge/internal/core"
	"brandforge/internal/logger"
)

const (
	maxHeadings   = 10
	maxBodyText   = 10000
	maxKeyPhrases = 20
	maxFonts      = 5
	maxHeroImages = 5
	minPhraseLen  = 5
)

var (
	colorRegex = regexp.MustCompile(`#[0-9A-Fa-f]{6}|rgb\([^)]+\)|rgba\([^)]+\)`)
	fontRegex  = regexp.MustCompile(`(?i)font-family:\s*([^;}"']+)`)
	wordRegex  = regexp.MustCompile(`[^\w\s]`)
)

// Scraper fetches and analyzes websites.
type Scraper struct {
	httpClient *http.Client
	userAgent  string
}

// New creates a Scraper from configuration.
func New(cfg config.Scrape) *Scraper {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Scraper{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  cfg.UserAgent,
	}
}

// Analyze fetches the page at rawURL and extracts a WebsiteAnalysis.
func (s *Scraper) Analyze(ctx context.Context, rawURL string) (*core.WebsiteAnalysis, error) {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid URL %q", rawURL)
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status code %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", rawURL, err)
	}
	html := string(body)
	loadTime := time.Since(start).Milliseconds()

	analysis, err := analyzeHTML(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", rawURL, err)
	}

	analysis.URL = rawURL
	analysis.AnalyzedAt = time.Now().UTC()
	analysis.Technical = core.AnalysisTechnical{
		Domain:          parsed.Hostname(),
		HasSSL:          parsed.Scheme == "https",
		LoadTimeMS:      loadTime,
		MobileOptimized: strings.Contains(html, "viewport") || strings.Contains(html, "mobile"),
	}

	logger.Info("Website analyzed",
		"url", rawURL,
		"headings", len(analysis.Content.Headings),
		"load_time_ms", loadTime)
	return analysis, nil
}

// analyzeHTML extracts content and visual signals from raw HTML.
func analyzeHTML(html string) (*core.WebsiteAnalysis, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	return &core.WebsiteAnalysis{
		Content: extractContent(doc),
		Visual:  extractVisual(doc, html),
	}, nil
}

func extractContent(doc *goquery.Document) core.AnalysisContent {
	title := strings.TrimSpace(doc.Find("head title").First().Text())
	metaDescription, _ := doc.Find("meta[name='description']").Attr("content")

	var headings []string
	doc.Find("h1, h2").Each(func(_ int, s *goquery.Selection) {
		if len(headings) >= maxHeadings {
			return
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			headings = append(headings, text)
		}
	})

	bodyText := extractBodyText(doc)

	return core.AnalysisContent{
		Title:           title,
		MetaDescription: strings.TrimSpace(metaDescription),
		Headings:        headings,
		BodyText:        bodyText,
		KeyPhrases:      extractKeyPhrases(bodyText),
	}
}

func extractBodyText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, iframe").Remove()

	text := strings.Join(strings.Fields(body.Text()), " ")
	if len(text) > maxBodyText {
		text = text[:maxBodyText]
	}
	return text
}

// extractKeyPhrases ranks words longer than four characters by frequency.
func extractKeyPhrases(bodyText string) []string {
	cleaned := wordRegex.ReplaceAllString(strings.ToLower(bodyText), " ")

	frequency := map[string]int{}
	for _, word := range strings.Fields(cleaned) {
		if len(word) >= minPhraseLen {
			frequency[word]++
		}
	}

	words := make([]string, 0, len(frequency))
	for word := range frequency {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if frequency[words[i]] != frequency[words[j]] {
			return frequency[words[i]] > frequency[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > maxKeyPhrases {
		words = words[:maxKeyPhrases]
	}
	return words
}

func extractVisual(doc *goquery.Document, html string) core.AnalysisVisual {
	colors := dedupe(colorRegex.FindAllString(html, -1))
	primary := colors
	var secondary []string
	if len(primary) > 3 {
		secondary = primary[3:]
		primary = primary[:3]
	}
	if len(secondary) > 5 {
		secondary = secondary[:5]
	}

	var fonts []string
	for _, match := range fontRegex.FindAllStringSubmatch(html, -1) {
		family := strings.TrimSpace(strings.Split(match[1], ",")[0])
		family = strings.Trim(family, `'"`)
		if family != "" {
			fonts = append(fonts, family)
		}
	}
	fonts = dedupe(fonts)
	if len(fonts) > maxFonts {
		fonts = fonts[:maxFonts]
	}

	var logoURL string
	doc.Find("img[class*='logo'], img[id*='logo'], img[alt*='logo']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if src, ok := s.Attr("src"); ok && src != "" {
			logoURL = src
			return false
		}
		return true
	})

	var heroImages []string
	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(heroImages) >= maxHeroImages {
			return false
		}
		if src, ok := s.Attr("src"); ok && src != "" {
			heroImages = append(heroImages, src)
		}
		return true
	})

	return core.AnalysisVisual{
		PrimaryColors:   primary,
		SecondaryColors: secondary,
		Fonts:           fonts,
		LogoURL:         logoURL,
		HeroImages:      heroImages,
	}
}

func dedupe(list []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, item := range list {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
