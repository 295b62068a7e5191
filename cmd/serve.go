package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Taichi-iskw/pod-digest/internal/server"
)

// serveCmd starts the browse API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the episode browse API",
	Long:  `Serve a JSON API over the stored episodes, channels and viewer flags.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		debug, _ := cmd.Flags().GetBool("debug")

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(server.Deps{
			Episodes: a.repos.Episodes,
			Channels: a.repos.Channels,
			Flags:    a.repos.Flags,
		}, server.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Debug:          debug,
		}, logger.Named("server"))

		logger.Info("serving browse API", zap.String("addr", cfg.Server.Addr))
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().Bool("debug", false, "run gin in debug mode")
	rootCmd.AddCommand(serveCmd)
}
