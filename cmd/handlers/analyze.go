package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"brandforge/internal/core"
	"brandforge/internal/logger"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command for scraping a website
func NewAnalyzeCmd() *cobra.Command {
	var skipDNA bool

	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze a website and synthesize its brand DNA",
		Long: `Fetch the given website, extract its content, visual identity, and
technical signals, store the analysis, then synthesize and store a
brand DNA profile from it.

Examples:
  # Full analysis including brand DNA
  brandforge analyze https://example.com

  # Scrape and store only, no AI call
  brandforge analyze https://example.com --skip-dna`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), args[0], skipDNA)
		},
	}

	cmd.Flags().BoolVar(&skipDNA, "skip-dna", false, "stop after storing the website analysis")

	return cmd
}

func runAnalyze(ctx context.Context, url string, skipDNA bool) error {
	app, err := newGenerationApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	analysis, err := app.scraper.Analyze(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to analyze website: %w", err)
	}

	id, err := app.db.InsertAnalysis(ctx, analysis)
	if err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}
	analysis.ID = id

	logger.Info("Website analyzed", "url", url, "analysis_id", id.Hex())

	if skipDNA {
		printJSON(analysis)
		fmt.Printf("\nAnalysis stored. Next: brandforge dna --analysis-id %s\n", id.Hex())
		return nil
	}

	result, err := app.analyzer.GenerateBrandDNA(ctx, analysis)
	if err != nil {
		return err
	}

	profile := &core.BrandProfile{
		AnalysisID:      analysis.ID,
		URL:             analysis.URL,
		GeneratedAt:     time.Now().UTC(),
		BrandDNA:        result.BrandDNA,
		ConfidenceScore: result.ConfidenceScore,
	}
	profileID, err := app.db.InsertBrandProfile(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to store brand profile: %w", err)
	}
	profile.ID = profileID

	logger.Info("Brand profile stored", "brand_profile_id", profileID.Hex(), "confidence", result.ConfidenceScore)

	printJSON(profile)
	fmt.Printf("\nBrand profile stored. Next: brandforge campaign generate --brand %s\n", profileID.Hex())
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%+v\n", v)
		return
	}
	fmt.Println(string(out))
}
