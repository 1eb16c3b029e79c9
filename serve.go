package main

import (
	"Relay/ai"
	"Relay/bot"
	"Relay/core"
	"Relay/lib/sl"
	"Relay/relay"
	"Relay/webhook"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(load func() (*core.Config, *slog.Logger)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Receive webhook updates and answer them",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log := load()
			return serve(cmd.Context(), conf, log)
		},
	}
}

func serve(ctx context.Context, conf *core.Config, log *slog.Logger) error {
	log.With(
		slog.String("env", conf.Env),
		slog.String("model", conf.Model),
		slog.String("listen", conf.ListenAddr()),
		sl.Secret(conf.OpenAIApiKey),
	).Info("starting relay")

	tgBot, err := bot.NewTgBot(conf, log)
	if err != nil {
		return fmt.Errorf("creating telegram: %w", err)
	}

	chat := relay.New(tgBot, ai.NewChat(conf, log), ai.NewBilling(conf, log), log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// responses keep running through shutdown until drained
	hook := webhook.NewHandler(context.WithoutCancel(ctx), chat, log)
	mux := http.NewServeMux()
	hook.Register(mux)

	server := &http.Server{
		Addr:              conf.ListenAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("http server shutdown", sl.Err(err))
		}
		hook.Wait()
		chat.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}
