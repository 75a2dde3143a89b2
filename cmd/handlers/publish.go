package handlers

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"brandforge/internal/core"
	"brandforge/internal/logger"
	"brandforge/internal/publish"
	"github.com/spf13/cobra"
)

// NewPublishCmd creates the publish command for posting to a platform
func NewPublishCmd() *cobra.Command {
	var (
		brandID  string
		platform string
		content  string
		hashtags []string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a post to a connected social account",
		Long: `Publish content through the brand's connected account on the given
platform and record the published post with its fingerprint so future
generation avoids repeating it.

Examples:
  brandforge publish --brand 665f1c2ab1e4a93d2c8e4f01 \
    --platform linkedin \
    --content "We just shipped our biggest release yet." \
    --hashtags launch,devtools`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd.Context(), brandID, platform, content, hashtags)
		},
	}

	cmd.Flags().StringVar(&brandID, "brand", "", "brand profile id (required)")
	cmd.Flags().StringVar(&platform, "platform", "", "target platform (required)")
	cmd.Flags().StringVar(&content, "content", "", "post text (required)")
	cmd.Flags().StringSliceVar(&hashtags, "hashtags", nil, "hashtags to append")
	cmd.MarkFlagRequired("brand")
	cmd.MarkFlagRequired("platform")
	cmd.MarkFlagRequired("content")

	return cmd
}

func runPublish(ctx context.Context, rawID, rawPlatform, content string, hashtags []string) error {
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

	publisher := publish.NewPublisher()
	result, err := publisher.Publish(ctx, account, content, hashtags)
	if err != nil {
		return err
	}

	record := &core.PublishedPost{
		SocialAccountID: account.ID,
		BrandProfileID:  id,
		Platform:        platform,
		PlatformPostID:  result.PostID,
		Content:         content,
		PublishedAt:     time.Now().UTC(),
		Fingerprint:     publish.SinglePostFingerprint(content),
		LastSyncedAt:    time.Now().UTC(),
	}
	if _, err := app.db.InsertPublishedPost(ctx, record); err != nil {
		return fmt.Errorf("published but failed to record post: %w", err)
	}

	logger.Info("Post published", "platform", platform, "post_id", result.PostID)
	fmt.Printf("Published to %s: %s\n", platform, result.PostID)
	if result.URL != "" {
		fmt.Println(result.URL)
	}
	return nil
}
