package episode

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/pod-digest/internal/repository"
)

// NewGetCommand creates the get episode command
func NewGetCommand(repo repository.EpisodeRepository, factory *RepositoryFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [VIDEO_ID]",
		Short: "Show one episode with its summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoID := args[0]
			format, _ := cmd.Flags().GetString("format")

			formatter, err := GetFormatter(format)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			episodes, cleanup, err := resolve(ctx, repo, factory)
			if err != nil {
				return err
			}
			defer cleanup()

			ep, err := episodes.GetByID(ctx, videoID)
			if err != nil {
				return fmt.Errorf("failed to get episode: %w", err)
			}

			output, err := formatter.Format(ep)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().String("format", "text", "Output format (text, json)")

	return cmd
}
