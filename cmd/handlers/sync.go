package handlers

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"brandforge/internal/core"
	"github.com/spf13/cobra"
)

// NewSyncCmd creates the sync command for importing published posts
func NewSyncCmd() *cobra.Command {
	var (
		brandID  string
		platform string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import an account's published posts",
		Long: `Fetch the posts already live on the brand's connected account and
store the ones not yet known, refreshing engagement counters on the
rest. Imported posts feed the freshness context of future campaigns.

Only LinkedIn accounts can be synced for now.

Examples:
  brandforge sync --brand 665f1c2ab1e4a93d2c8e4f01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), brandID, platform)
		},
	}

	cmd.Flags().StringVar(&brandID, "brand", "", "brand profile id (required)")
	cmd.Flags().StringVar(&platform, "platform", "linkedin", "platform to sync")
	cmd.MarkFlagRequired("brand")

	return cmd
}

func runSync(ctx context.Context, rawID, rawPlatform string) error {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return fmt.Errorf("invalid brand profile id %q: %w", rawID, err)
	}
	platform := core.Platform(rawPlatform)
	if !core.ValidPlatform(platform) {
		return fmt.Errorf("unknown platform %q", rawPlatform)
	}

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	account, err := app.db.GetSocialAccount(ctx, id, platform)
	if err != nil {
		return fmt.Errorf("no connected %s account: %w", platform, err)
	}

	syncer := newSyncer(app.db)
	imported, err := syncer.Sync(ctx, account)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d new posts from %s\n", imported, platform)
	return nil
}
