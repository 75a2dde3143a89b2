// Package analyzer turns scraped website data into a brand DNA profile
// via the generation backends.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"brandforge/internal/core"
	"brandforge/internal/generation"
	"brandforge/internal/llm"
	"brandforge/internal/logger"
)

// Engine is the generation contract the analyzer depends on.
type Engine interface {
	Generate(ctx context.Context, prompt string, validate generation.Validator) (map[string]any, error)
}

// BrandDNAResult is the typed result of one brand analysis call.
type BrandDNAResult struct {
	BrandDNA        core.BrandDNA `json:"brandDNA"`
	ConfidenceScore float64       `json:"confidence_score"`
}

// Analyzer synthesizes brand DNA from website analyses.
type Analyzer struct {
	engine Engine
}

// New creates an Analyzer over the given generation engine.
func New(engine Engine) *Analyzer {
	return &Analyzer{engine: engine}
}

// GenerateBrandDNA asks the backends to synthesize a brand profile from
// the scraped site data. The response shape is validated once here; the
// decoded result is trusted downstream.
func (a *Analyzer) GenerateBrandDNA(ctx context.Context, analysis *core.WebsiteAnalysis) (*BrandDNAResult, error) {
	prompt := buildBrandDNAPrompt(analysis)

	logger.Info("Generating brand DNA", "url", analysis.URL)
	result, err := a.engine.Generate(ctx, prompt, ValidateBrandDNAShape)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, llm.NewError(llm.KindInvalidResponseShape, 0, "failed to re-encode brand DNA result", err)
	}
	var decoded BrandDNAResult
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, llm.NewError(llm.KindInvalidResponseShape, 0, "brand DNA result does not match expected shape", err)
	}

	logger.Info("Brand DNA generated", "url", analysis.URL, "confidence", decoded.ConfidenceScore)
	return &decoded, nil
}

// ValidateBrandDNAShape checks the generic JSON object for the required
// brand DNA fields. It runs identically regardless of which backend
// answered.
func ValidateBrandDNAShape(result map[string]any) error {
	dna, ok := result["brandDNA"].(map[string]any)
	if !ok {
		return fmt.Errorf("missing brandDNA object")
	}
	if _, ok := result["confidence_score"].(float64); !ok {
		return fmt.Errorf("missing numeric confidence_score")
	}

	voice, ok := dna["voice"].(map[string]any)
	if !ok {
		return fmt.Errorf("missing voice object")
	}
	if _, ok := voice["tone"].(string); !ok {
		return fmt.Errorf("missing voice.tone")
	}
	if _, ok := voice["personality"].([]any); !ok {
		return fmt.Errorf("missing voice.personality array")
	}

	if _, ok := dna["values"].([]any); !ok {
		return fmt.Errorf("missing values array")
	}

	audience, ok := dna["target_audience"].(map[string]any)
	if !ok {
		return fmt.Errorf("missing target_audience object")
	}
	if _, ok := audience["demographics"].(string); !ok {
		return fmt.Errorf("missing target_audience.demographics")
	}
	if _, ok := audience["pain_points"].([]any); !ok {
		return fmt.Errorf("missing target_audience.pain_points array")
	}

	positioning, ok := dna["positioning"].(map[string]any)
	if !ok {
		return fmt.Errorf("missing positioning object")
	}
	if _, ok := positioning["unique_value"].(string); !ok {
		return fmt.Errorf("missing positioning.unique_value")
	}

	if _, ok := dna["visual_identity"].(map[string]any); !ok {
		return fmt.Errorf("missing visual_identity object")
	}

	return nil
}

func buildBrandDNAPrompt(analysis *core.WebsiteAnalysis) string {
	var b strings.Builder

	b.WriteString("You are an expert brand strategist and marketing consultant. Analyze the following website data and generate a comprehensive brand DNA profile.\n\n")

	b.WriteString("WEBSITE DATA:\n============\n\n")
	fmt.Fprintf(&b, "URL: %s\n", analysis.URL)
	fmt.Fprintf(&b, "Domain: %s\n\n", analysis.Technical.Domain)

	b.WriteString("CONTENT ANALYSIS:\n")
	fmt.Fprintf(&b, "- Title: %s\n", analysis.Content.Title)
	fmt.Fprintf(&b, "- Meta Description: %s\n", analysis.Content.MetaDescription)
	fmt.Fprintf(&b, "- Main Headings: %s\n", strings.Join(headStrings(analysis.Content.Headings, 10), ", "))
	fmt.Fprintf(&b, "- Key Phrases: %s\n", strings.Join(analysis.Content.KeyPhrases, ", "))
	fmt.Fprintf(&b, "- Body Content Sample: %s\n\n", truncate(analysis.Content.BodyText, 2000))

	b.WriteString("VISUAL IDENTITY:\n")
	fmt.Fprintf(&b, "- Primary Colors: %s\n", strings.Join(analysis.Visual.PrimaryColors, ", "))
	fmt.Fprintf(&b, "- Secondary Colors: %s\n", strings.Join(analysis.Visual.SecondaryColors, ", "))
	fmt.Fprintf(&b, "- Fonts: %s\n\n", strings.Join(analysis.Visual.Fonts, ", "))

	b.WriteString("TECHNICAL:\n")
	fmt.Fprintf(&b, "- SSL Enabled: %t\n", analysis.Technical.HasSSL)
	fmt.Fprintf(&b, "- Mobile Optimized: %t\n", analysis.Technical.MobileOptimized)
	fmt.Fprintf(&b, "- Load Time: %dms\n\n", analysis.Technical.LoadTimeMS)

	b.WriteString(`INSTRUCTIONS:
============

Analyze this website data and generate a detailed brand DNA profile. Be specific, insightful, and actionable.

Consider:
1. The messaging and language used
2. The visual design choices and what they communicate
3. The target audience based on content and tone
4. The brand's positioning and unique value proposition
5. The overall personality and voice

Return your analysis in the following JSON structure (and ONLY JSON, no markdown):

{
  "brandDNA": {
    "voice": {
      "tone": "string - Primary tone (e.g., 'Professional and Approachable', 'Bold and Innovative', 'Warm and Trustworthy')",
      "personality": ["array of 3-5 personality traits that define the brand"],
      "language_style": "string - Describe the language style (e.g., 'Technical but accessible', 'Conversational and friendly', 'Authoritative and expert')"
    },
    "values": ["array of 4-6 core brand values inferred from content and messaging"],
    "target_audience": {
      "demographics": "string - Describe the primary demographic (age, profession, tech-savviness, etc.)",
      "psychographics": "string - Describe their mindset, goals, and motivations",
      "pain_points": ["array of 3-5 specific pain points this brand addresses"]
    },
    "positioning": {
      "category": "string - Market category/industry",
      "unique_value": "string - What makes this brand unique and different",
      "competitors_differentiation": "string - How this brand likely differentiates from competitors"
    },
    "visual_identity": {
      "color_psychology": "string - What the color choices communicate about the brand",
      "design_style": "string - Overall design aesthetic (e.g., 'Minimalist and modern', 'Bold and vibrant', 'Classic and elegant')",
      "imagery_themes": ["array of 3-4 visual themes that would align with this brand"]
    }
  },
  "confidence_score": number between 60-100 indicating how confident you are in this analysis based on data quality
}

Be specific and avoid generic statements. Use concrete insights from the actual data provided.`)

	return b.String()
}

func headStrings(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}

// truncate keeps at most n characters, never splitting a rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
