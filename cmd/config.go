package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/pod-digest/internal/catalog"
	"github.com/Taichi-iskw/pod-digest/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long:  `Manage configuration settings for poddigest.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init [DATABASE_URL]",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with database connection settings and an example channel.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var databaseURL string
		if len(args) > 0 {
			databaseURL = args[0]
		}

		path, err := configPath()
		if err != nil {
			return err
		}

		if err := config.InitConfigAt(path, databaseURL); err != nil {
			return err
		}

		cmd.Printf("Created configuration file: %s\n", path)
		cmd.Println("Please fill in the API keys, the Google Docs credentials and the channels to track.")

		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration file path and effective settings. Secrets are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cmd.Printf("Configuration file: %s\n\n", path)
		showConfig(cmd.OutOrStdout(), cfg)

		return nil
	},
}

// configValidateCmd checks that a pipeline run has everything it needs
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  `Check that every key required for a run is set and that the channel catalog loads.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		cat, err := catalog.Load(cfg.Channels, cfg.ChannelsFile)
		if err != nil {
			return fmt.Errorf("failed to load channel catalog: %w", err)
		}

		cmd.Printf("Configuration is valid: %d channel(s), %d enabled\n", cat.Len(), len(cat.EnabledIDs()))
		return nil
	},
}

func showConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "DATABASE_URL: %s\n", maskDatabaseURL(cfg.DatabaseURL))
	if cfg.ChannelsFile != "" {
		fmt.Fprintf(w, "Channels file: %s\n", cfg.ChannelsFile)
	}
	fmt.Fprintf(w, "Inline channels: %d\n", len(cfg.Channels))
	fmt.Fprintf(w, "YouTube API key: %s\n", mask(cfg.YouTube.APIKey))
	fmt.Fprintf(w, "Max results per channel: %d\n", cfg.YouTube.MaxResultsPerChannel)
	fmt.Fprintf(w, "OpenAI API key: %s\n", mask(cfg.OpenAI.APIKey))
	fmt.Fprintf(w, "OpenAI model: %s\n", cfg.OpenAI.Model)
	fmt.Fprintf(w, "Max output tokens: %d\n", cfg.OpenAI.MaxOutputTokens)
	fmt.Fprintf(w, "Google Docs document: %s\n", cfg.GoogleDocs.DocumentID)
	fmt.Fprintf(w, "Google Docs client email: %s\n", cfg.GoogleDocs.ClientEmail)
	fmt.Fprintf(w, "Google Docs private key: %s\n", mask(cfg.GoogleDocs.PrivateKey))
	fmt.Fprintf(w, "Days to look back: %d\n", cfg.Processing.DaysToLookBack)
	fmt.Fprintf(w, "Transcript timeout: %s\n", cfg.Processing.TranscriptTimeout)
	fmt.Fprintf(w, "Summary timeout: %s\n", cfg.Processing.SummaryTimeout)
	fmt.Fprintf(w, "Server address: %s\n", cfg.Server.Addr)
}

func mask(secret string) string {
	switch {
	case secret == "":
		return "(not set)"
	case len(secret) <= 8:
		return "****"
	default:
		return secret[:4] + "****"
	}
}

// maskDatabaseURL hides the password component of a connection URL
func maskDatabaseURL(raw string) string {
	dbConfig, err := (&config.Config{DatabaseURL: raw}).ParseDatabaseConfig()
	if err != nil || dbConfig.Password == "" {
		return raw
	}
	return fmt.Sprintf("postgres://%s:****@%s:%d/%s?sslmode=%s",
		dbConfig.User, dbConfig.Host, dbConfig.Port, dbConfig.DBName, dbConfig.SSLMode)
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}
