package main

import (
	"Relay/core"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "relay",
		Short:         "Telegram webhook relay to OpenAI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "config.yml", "path to config file")

	load := func() (*core.Config, *slog.Logger) {
		conf := core.MustLoad(configPath)
		return conf, setupLogger(conf.Env)
	}

	rootCmd.AddCommand(
		newServeCmd(load),
		newSetWebhookCmd(load),
	)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("relay failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
