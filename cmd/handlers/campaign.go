package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"brandforge/internal/core"
	"brandforge/internal/logger"
	"github.com/spf13/cobra"
)

// NewCampaignCmd creates the campaign command group
func NewCampaignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Generate and regenerate social media campaigns",
	}

	cmd.AddCommand(newCampaignGenerateCmd())
	cmd.AddCommand(newCampaignRegenerateCmd())

	return cmd
}

func newCampaignGenerateCmd() *cobra.Command {
	var (
		brandID   string
		platforms []string
		types     []string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate campaign posts for a brand profile",
		Long: `Generate posts for every requested platform and campaign type,
using past campaigns and published posts to keep the content fresh.
Each platform's batch is stored as one campaign document.

Calls run strictly sequentially with fixed waits between them, so a
full run across all platforms and types takes a few minutes.

Examples:
  # All platforms and campaign types
  brandforge campaign generate --brand 665f1c2ab1e4a93d2c8e4f01

  # Just LinkedIn thought leadership
  brandforge campaign generate --brand 665f1c2ab1e4a93d2c8e4f01 \
    --platforms linkedin --types thought_leadership`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCampaignGenerate(cmd.Context(), brandID, platforms, types)
		},
	}

	cmd.Flags().StringVar(&brandID, "brand", "", "brand profile id (required)")
	cmd.Flags().StringSliceVar(&platforms, "platforms", nil, "platforms to generate for (default all)")
	cmd.Flags().StringSliceVar(&types, "types", nil, "campaign types to generate (default all)")
	cmd.MarkFlagRequired("brand")

	return cmd
}

func runCampaignGenerate(ctx context.Context, rawID string, rawPlatforms, rawTypes []string) error {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return fmt.Errorf("invalid brand profile id %q: %w", rawID, err)
	}

	platforms, err := resolvePlatforms(rawPlatforms)
	if err != nil {
		return err
	}
	types, err := resolveCampaignTypes(rawTypes)
	if err != nil {
		return err
	}

	app, err := newGenerationApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	profile, err := app.db.GetBrandProfile(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load brand profile: %w", err)
	}

	campaigns, err := app.generator.GenerateCampaigns(ctx, profile, platforms, types)
	if err != nil {
		return err
	}

	for _, c := range campaigns {
		posts := 0
		for _, category := range c.Campaigns {
			posts += len(category.Posts)
		}
		fmt.Printf("%s: campaign %s stored (%d categories, %d posts)\n",
			c.Platform, c.ID.Hex(), len(c.Campaigns), posts)
	}

	logger.Info("Campaign run finished", "brand_profile_id", id.Hex(), "batches", len(campaigns))
	return nil
}

func newCampaignRegenerateCmd() *cobra.Command {
	var (
		brandID      string
		platform     string
		campaignType string
		instructions string
	)

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Generate a single replacement post",
		Long: `Generate one standalone replacement post for a platform and campaign
type. Stored campaigns are never modified; the new post is printed for
the caller to use.

Examples:
  brandforge campaign regenerate --brand 665f1c2ab1e4a93d2c8e4f01 \
    --platform twitter --type engagement \
    --instructions "shorter, ask a question"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCampaignRegenerate(cmd.Context(), brandID, platform, campaignType, instructions)
		},
	}

	cmd.Flags().StringVar(&brandID, "brand", "", "brand profile id (required)")
	cmd.Flags().StringVar(&platform, "platform", "", "target platform (required)")
	cmd.Flags().StringVar(&campaignType, "type", "", "campaign type (required)")
	cmd.Flags().StringVar(&instructions, "instructions", "", "extra instructions for the replacement post")
	cmd.MarkFlagRequired("brand")
	cmd.MarkFlagRequired("platform")
	cmd.MarkFlagRequired("type")

	return cmd
}

func runCampaignRegenerate(ctx context.Context, rawID, rawPlatform, rawType, instructions string) error {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return fmt.Errorf("invalid brand profile id %q: %w", rawID, err)
	}

	platform := core.Platform(rawPlatform)
	if !core.ValidPlatform(platform) {
		return fmt.Errorf("unknown platform %q", rawPlatform)
	}
	campaignType := core.CampaignType(rawType)
	if !core.ValidCampaignType(campaignType) {
		return fmt.Errorf("unknown campaign type %q", rawType)
	}

	app, err := newGenerationApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	profile, err := app.db.GetBrandProfile(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load brand profile: %w", err)
	}

	post, err := app.generator.RegeneratePost(ctx, profile, platform, campaignType, instructions)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(post, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func resolvePlatforms(raw []string) ([]core.Platform, error) {
	if len(raw) == 0 {
		return core.Platforms, nil
	}
	platforms := make([]core.Platform, 0, len(raw))
	for _, v := range raw {
		p := core.Platform(v)
		if !core.ValidPlatform(p) {
			return nil, fmt.Errorf("unknown platform %q", v)
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}

func resolveCampaignTypes(raw []string) ([]core.CampaignType, error) {
	if len(raw) == 0 {
		return core.CampaignTypes, nil
	}
	types := make([]core.CampaignType, 0, len(raw))
	for _, v := range raw {
		t := core.CampaignType(v)
		if !core.ValidCampaignType(t) {
			return nil, fmt.Errorf("unknown campaign type %q", v)
		}
		types = append(types, t)
	}
	return types, nil
}
