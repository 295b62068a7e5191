package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Taichi-iskw/pod-digest/internal/model"
)

// errRunFailed makes the process exit non-zero after the summary block has been printed
var errRunFailed = errors.New("run finished with errors")

// runCmd runs the full ingest and publish pipeline once
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process new episodes and publish the digest",
	Long: `Fetch recent uploads of every enabled channel, summarize the ones not yet processed,
store them in the database and replace the Google Docs digest.
Exits with status 1 when any channel, episode or publish error was recorded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		skipPublish, _ := cmd.Flags().GetBool("skip-publish")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if skipPublish {
			err = cfg.ValidateWithoutPublish()
		} else {
			err = cfg.Validate()
		}
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		// Stop between channels on Ctrl-C
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		orchestrator, err := a.orchestrator(ctx, skipPublish)
		if err != nil {
			return err
		}

		logger.Info("loaded configuration",
			zap.Int("channels", a.catalog.Len()),
			zap.Int("enabled", len(a.catalog.EnabledIDs())))

		result := orchestrator.Run(ctx)

		if asJSON {
			if err := printResultJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
		} else {
			printResult(cmd.OutOrStdout(), result)
		}

		if result.HasErrors() {
			return errRunFailed
		}
		return nil
	},
}

// printResult writes the human-readable summary block of a run
func printResult(w io.Writer, result *model.ProcessingResult) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Processing Complete")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Channels processed: %d\n", result.ChannelsProcessed)
	fmt.Fprintf(w, "Videos processed: %d\n", result.VideosProcessed)
	fmt.Fprintf(w, "Summaries generated: %d\n", result.SummariesGenerated)

	if !result.HasErrors() {
		fmt.Fprintln(w, "All operations completed successfully!")
		return
	}

	fmt.Fprintf(w, "Errors encountered: %d\n", len(result.Errors))
	for i, e := range result.Errors {
		fmt.Fprintf(w, "  %d. [%s] %s: %s\n", i+1, e.Scope, e.Subject(), e.Message)
	}
}

func printResultJSON(w io.Writer, result *model.ProcessingResult) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("skip-publish", false, "Process episodes without replacing the Google Docs digest")
	runCmd.Flags().Bool("json", false, "Print the run result as JSON")
}
