package episode

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/pod-digest/internal/repository"
)

// NewListCommand creates the list episodes command
func NewListCommand(repo repository.EpisodeRepository, factory *RepositoryFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent episodes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Get flags
			limit, _ := cmd.Flags().GetInt("limit")
			channelID, _ := cmd.Flags().GetString("channel")
			format, _ := cmd.Flags().GetString("format")

			if limit <= 0 {
				return fmt.Errorf("limit must be positive")
			}
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

			list, err := episodes.List(ctx, repository.EpisodeFilter{ChannelID: channelID, Limit: limit})
			if err != nil {
				return fmt.Errorf("failed to list episodes: %w", err)
			}

			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No episodes found.")
				return nil
			}

			output, err := formatter.FormatList(list)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), output)
			return nil
		},
	}

	// Add flags
	cmd.Flags().Int("limit", repository.DefaultEpisodeLimit, "Maximum number of episodes to list")
	cmd.Flags().String("channel", "", "Only list episodes of this channel ID")
	cmd.Flags().String("format", "text", "Output format (text, json)")

	return cmd
}
