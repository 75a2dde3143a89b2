package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"brandforge/internal/core"
	"brandforge/internal/logger"
	"github.com/spf13/cobra"
)

// NewDNACmd creates the dna command for synthesizing a brand profile
func NewDNACmd() *cobra.Command {
	var analysisID string

	cmd := &cobra.Command{
		Use:   "dna",
		Short: "Synthesize brand DNA from a stored website analysis",
		Long: `Generate a brand DNA profile (voice, values, audience, positioning,
visual identity) from a previously stored website analysis and persist
it as a brand profile.

Examples:
  brandforge dna --analysis-id 665f1c2ab1e4a93d2c8e4f01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDNA(cmd.Context(), analysisID)
		},
	}

	cmd.Flags().StringVar(&analysisID, "analysis-id", "", "id of a stored website analysis (required)")
	cmd.MarkFlagRequired("analysis-id")

	return cmd
}

func runDNA(ctx context.Context, rawID string) error {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return fmt.Errorf("invalid analysis id %q: %w", rawID, err)
	}

	app, err := newGenerationApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	analysis, err := app.db.GetAnalysis(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load analysis: %w", err)
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

	out, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	fmt.Printf("\nBrand profile stored. Next: brandforge campaign generate --brand %s\n", profileID.Hex())
	return nil
}
