package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/pod-digest/internal/config"
	"github.com/Taichi-iskw/pod-digest/internal/pipeline"
	"github.com/Taichi-iskw/pod-digest/internal/repository"
	youtubeSvc "github.com/Taichi-iskw/pod-digest/internal/service/youtube"
)

// channelCmd represents the channel command
var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "YouTube channel operations",
	Long:  `Operations for managing tracked YouTube channels.`,
}

// channelInfoCmd fetches channel information
var channelInfoCmd = &cobra.Command{
	Use:   "info [CHANNEL_ID]",
	Short: "Fetch YouTube channel information",
	Long:  `Fetch and display YouTube channel metadata using the YouTube Data API.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		channelID := args[0]

		// Create service with timeout context
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		source, err := youtubeSvc.NewSource(ctx, cfg.YouTube.APIKey, cfg.YouTube.RequestsPerSecond)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}

		metadata, err := source.GetChannelMetadata(ctx, channelID)
		if err != nil {
			return fmt.Errorf("failed to fetch channel info: %w", err)
		}
		if metadata == nil {
			fmt.Printf("Channel %s not found.\n", channelID)
			return nil
		}

		// Display result as JSON
		result, err := json.MarshalIndent(metadata, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}

		fmt.Println(string(result))
		return nil
	},
}

// channelListCmd lists all saved channels
var channelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved channels",
	Long:  `List all channels saved in the database, ordered by title.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Create service with timeout context
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Create database connection
		dbPool, err := config.NewDatabasePool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer dbPool.Close()

		channelRepo := repository.NewChannelRepository(dbPool)

		// Get pagination flags
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		channels, err := channelRepo.List(ctx, limit, offset)
		if err != nil {
			return fmt.Errorf("failed to list channels: %w", err)
		}

		// Check if no channels found
		if len(channels) == 0 {
			fmt.Println("No channels found in the database.")
			return nil
		}

		// Display result as JSON
		result, err := json.MarshalIndent(channels, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}

		fmt.Printf("Found %d channel(s):\n%s\n", len(channels), string(result))
		return nil
	},
}

// channelSyncCmd makes sure every enabled channel has a stored record
var channelSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Store metadata of every enabled channel",
	Long: `Create a database record for every enabled channel that does not have one yet.
With --summarize, also write a short channel overview from its most recent episode summaries.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summarize, _ := cmd.Flags().GetBool("summarize")
		episodes, _ := cmd.Flags().GetInt("episodes")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		orchestrator, err := a.orchestrator(ctx, true)
		if err != nil {
			return err
		}

		result := orchestrator.SyncChannels(ctx)
		cmd.Printf("Channels synced: %d\n", result.ChannelsProcessed)

		if summarize {
			summaries := orchestrator.SummarizeChannels(ctx, a.summarizer(), episodes)
			cmd.Printf("Channel summaries stored: %d\n", summaries.SummariesGenerated)
			for _, e := range summaries.Errors {
				result.AddError(e)
			}
		}

		if result.HasErrors() {
			for i, e := range result.Errors {
				cmd.Printf("  %d. %s: %s\n", i+1, e.Subject(), e.Message)
			}
			return errRunFailed
		}
		return nil
	},
}

func init() {
	// Add pagination flags to list command
	channelListCmd.Flags().Int("limit", 100, "Maximum number of channels to retrieve")
	channelListCmd.Flags().Int("offset", 0, "Number of channels to skip")

	channelSyncCmd.Flags().Bool("summarize", false, "Also generate channel overviews from recent episode summaries")
	channelSyncCmd.Flags().Int("episodes", pipeline.DefaultChannelSummaryEpisodes, "Number of recent episode summaries per channel overview")

	channelCmd.AddCommand(channelInfoCmd)
	channelCmd.AddCommand(channelListCmd)
	channelCmd.AddCommand(channelSyncCmd)
	rootCmd.AddCommand(channelCmd)
}
