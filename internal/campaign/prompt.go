package campaign

import (
	"fmt"
	"strings"
	"time"

	"brandforge/internal/core"
	"brandforge/internal/freshness"
)

// buildPrompt assembles the generation prompt for one platform+category
// pair: brand voice, freshness avoidance lists, seasonal context, and the
// exact JSON shape the backends must return.
func buildPrompt(dna core.BrandDNA, platform core.Platform, campaignType core.CampaignType, fctx core.FullContext, campaignNumber int64, now time.Time, postCount int) string {
	specs := SpecFor(platform)
	season := freshness.SeasonOf(now.Month())

	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert social media strategist creating Campaign #%d.\n\n", campaignNumber)

	b.WriteString("BRAND DNA PROFILE:\n==================\n\n")
	b.WriteString("VOICE & PERSONALITY:\n")
	fmt.Fprintf(&b, "- Tone: %s\n", dna.Voice.Tone)
	fmt.Fprintf(&b, "- Personality: %s\n", strings.Join(dna.Voice.Personality, ", "))
	fmt.Fprintf(&b, "- Language Style: %s\n\n", dna.Voice.LanguageStyle)

	b.WriteString("CORE VALUES:\n")
	for _, v := range dna.Values {
		fmt.Fprintf(&b, "- %s\n", v)
	}

	b.WriteString("\nTARGET AUDIENCE:\n")
	fmt.Fprintf(&b, "- Demographics: %s\n", dna.TargetAudience.Demographics)
	fmt.Fprintf(&b, "- Pain Points: %s\n\n", strings.Join(head(dna.TargetAudience.PainPoints, 3), ", "))

	b.WriteString("POSITIONING:\n")
	fmt.Fprintf(&b, "- Unique Value: %s\n", dna.Positioning.UniqueValue)

	writeAvoidanceContext(&b, fctx, campaignNumber)

	b.WriteString("\nCURRENT CONTEXT:\n================\n")
	fmt.Fprintf(&b, "- Date: %s %d\n", now.Month().String(), now.Year())
	fmt.Fprintf(&b, "- Season: %s\n", season)
	fmt.Fprintf(&b, "- Seasonal Themes: %s\n", seasonalThemes[season])
	fmt.Fprintf(&b, "- Campaign Number: #%d\n\n", campaignNumber)

	fmt.Fprintf(&b, "PLATFORM: %s\n", strings.ToUpper(string(platform)))
	fmt.Fprintf(&b, "- Max Length: %d chars\n", specs.MaxLength)
	fmt.Fprintf(&b, "- Hashtag Limit: %d\n", specs.HashtagLimit)
	fmt.Fprintf(&b, "- Tone: %s\n\n", specs.Tone)

	fmt.Fprintf(&b, "CAMPAIGN TYPE: %s\n%s\n\n", campaignType, campaignTypeDescriptions[campaignType])

	b.WriteString("INSTRUCTIONS:\n")
	fmt.Fprintf(&b, "Create %d COMPLETELY FRESH posts. Must be different from previous %d campaigns.\n\n", postCount, campaignNumber-1)
	b.WriteString("Requirements:\n")
	b.WriteString("1. NEW angles and hooks (not in the avoid list above)\n")
	b.WriteString("2. FRESH examples and references\n")
	fmt.Fprintf(&b, "3. Incorporate %s %d context\n", season, now.Year())
	b.WriteString("4. Match brand voice perfectly\n")
	fmt.Fprintf(&b, "5. Include strategic hashtags (max %d, avoid overused ones)\n", specs.HashtagLimit)
	b.WriteString("6. Clear CTAs\n")
	b.WriteString("7. Image prompts for visuals\n\n")

	b.WriteString(`Return ONLY valid JSON:

{
  "posts": [
    {
      "text": "Post copy here",
      "hashtags": ["new", "fresh", "hashtags"],
      "imagePrompt": "Image description",
      "callToAction": "CTA text",
      "bestTimeToPost": "Timing recommendation"
    }
  ]
}`)

	return b.String()
}

// writeAvoidanceContext appends the freshness constraints. Generated and
// published history are listed separately so the model can weight
// actually-published content more heavily.
func writeAvoidanceContext(b *strings.Builder, fctx core.FullContext, campaignNumber int64) {
	hasGenerated := len(fctx.UsedHooks) > 0 || len(fctx.RecentThemes) > 0
	hasPublished := len(fctx.PublishedHooks) > 0 || len(fctx.PublishedThemes) > 0
	if !hasGenerated && !hasPublished {
		return
	}

	b.WriteString("\nFRESHNESS CONSTRAINTS (CRITICAL):\n==================================\n")
	fmt.Fprintf(b, "This is Campaign #%d for this brand.\n", campaignNumber)

	if len(fctx.UsedHooks) > 0 {
		b.WriteString("\nAVOID these previously used opening hooks:\n")
		for i, hook := range head(fctx.UsedHooks, 10) {
			fmt.Fprintf(b, "%d. %q...\n", i+1, hook)
		}
	}
	if len(fctx.RecentThemes) > 0 {
		b.WriteString("\nAVOID these overused themes (find NEW angles):\n")
		b.WriteString(strings.Join(head(fctx.RecentThemes, 15), ", "))
		b.WriteString("\n")
	}
	if len(fctx.UsedHashtags) > 0 {
		b.WriteString("\nAVOID these hashtags (already heavily used):\n")
		b.WriteString(strings.Join(head(fctx.UsedHashtags, 20), ", "))
		b.WriteString("\n")
	}

	if hasPublished {
		fmt.Fprintf(b, "\nALREADY PUBLISHED content (%d posts live, avoid repeating at all costs):\n", fctx.TotalPublished)
		for i, hook := range head(fctx.PublishedHooks, 10) {
			fmt.Fprintf(b, "%d. %q...\n", i+1, hook)
		}
		if len(fctx.PublishedThemes) > 0 {
			b.WriteString(strings.Join(head(fctx.PublishedThemes, 15), ", "))
			b.WriteString("\n")
		}
	}

	if len(fctx.SeasonalDistribution) > 0 {
		b.WriteString("\nPrevious seasonal focus:\n")
		for _, season := range []string{"Winter", "Spring", "Summer", "Fall"} {
			if count, ok := fctx.SeasonalDistribution[season]; ok {
				fmt.Fprintf(b, "- %s: %d campaigns\n", season, count)
			}
		}
	}

	b.WriteString("\nIMPORTANT: Generate COMPLETELY FRESH content. Different angles, different examples, different hooks.\n")
}

// buildRegeneratePrompt assembles the prompt for regenerating one post
// with user-supplied instructions.
func buildRegeneratePrompt(dna core.BrandDNA, platform core.Platform, campaignType core.CampaignType, instructions string) string {
	specs := SpecFor(platform)

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert social media strategist. Create ONE social media post for %s.\n\n", strings.ToUpper(string(platform)))

	b.WriteString("BRAND DNA (summarized):\n")
	fmt.Fprintf(&b, "- Tone: %s\n", dna.Voice.Tone)
	fmt.Fprintf(&b, "- Personality: %s\n", strings.Join(dna.Voice.Personality, ", "))
	fmt.Fprintf(&b, "- Target Audience: %s\n", dna.TargetAudience.Demographics)
	fmt.Fprintf(&b, "- Unique Value: %s\n\n", dna.Positioning.UniqueValue)

	fmt.Fprintf(&b, "CAMPAIGN TYPE: %s\n\n", campaignType)

	b.WriteString("PLATFORM SPECS:\n")
	fmt.Fprintf(&b, "- Max Length: %d characters\n", specs.MaxLength)
	fmt.Fprintf(&b, "- Hashtag Limit: %d\n", specs.HashtagLimit)
	fmt.Fprintf(&b, "- Tone: %s\n\n", specs.Tone)

	fmt.Fprintf(&b, "SPECIAL INSTRUCTIONS FROM USER:\n%s\n\n", instructions)

	b.WriteString("Create a single post following the brand voice and user instructions.\n\n")
	b.WriteString(`Return ONLY valid JSON (no markdown):
{
  "text": "Post copy here",
  "hashtags": ["hashtag1", "hashtag2"],
  "imagePrompt": "Image description",
  "callToAction": "CTA text",
  "bestTimeToPost": "Recommended timing"
}`)

	return b.String()
}

func head(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}
