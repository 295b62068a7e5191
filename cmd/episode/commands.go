// Package episode implements the episode browse subcommands.
package episode

import (
	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/pod-digest/internal/repository"
)

// NewEpisodeCommand creates the main episode command.
// A nil repo makes each subcommand connect through factory.
func NewEpisodeCommand(repo repository.EpisodeRepository, factory *RepositoryFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "episode",
		Short: "Browse summarized episodes",
		Long:  `List and show stored episodes with their summaries and viewer flags`,
	}

	// Add subcommands
	cmd.AddCommand(NewListCommand(repo, factory))
	cmd.AddCommand(NewGetCommand(repo, factory))

	return cmd
}
