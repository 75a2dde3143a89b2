package handlers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewIndexesCmd creates the indexes command for preparing the database
func NewIndexesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes the queries depend on",
		Long: `Create every index the campaign-context and publishing queries rely
on. Safe to run repeatedly; existing indexes are left untouched.

Examples:
  brandforge indexes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndexes(cmd.Context())
		},
	}
	return cmd
}

func runIndexes(ctx context.Context) error {
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	if err := app.db.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	fmt.Println("Indexes are in place")
	return nil
}
