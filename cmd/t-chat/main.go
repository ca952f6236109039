package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ymoraviadev-droid/t-chat/internal/app"
	"github.com/ymoraviadev-droid/t-chat/internal/config"
	"github.com/ymoraviadev-droid/t-chat/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		logLevel   string
	)

	root := &cobra.Command{
		Use:           "t-chat",
		Short:         "Minimal real-time chat relay",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	run := func(build func(config.Config, *zerolog.Logger) *app.App, name string) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			bootstrap := log.New("info")
			cfg, path, err := config.Load(bootstrap, configPath)
			if err != nil {
				return err
			}
			cfg.UpdateFrom(config.Config{Addr: addr, LogLevel: logLevel})

			logger := log.New(cfg.LogLevel)
			logger.Info().
				Str("mode", name).
				Str("addr", cfg.Addr).
				Str("config", path).
				Msg("starting server")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := build(cfg, logger).Run(ctx); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "relay",
			Short: "Run the persistent WebSocket relay server",
			RunE:  run(app.NewRelay, "relay"),
		},
		&cobra.Command{
			Use:   "poll",
			Short: "Run the HTTP polling fallback server",
			RunE:  run(app.NewPoll, "poll"),
		},
	)

	return root
}
