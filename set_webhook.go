package main

import (
	"Relay/bot"
	"Relay/core"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
)

func newSetWebhookCmd(load func() (*core.Config, *slog.Logger)) *cobra.Command {
	var link string

	cmd := &cobra.Command{
		Use:   "set-webhook",
		Short: "Register the webhook url with Telegram",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log := load()
			if link == "" {
				link = conf.WebhookURL
			}
			if link == "" {
				return errors.New("webhook url is not configured")
			}

			tgBot, err := bot.NewTgBot(conf, log)
			if err != nil {
				return err
			}
			return tgBot.SetWebhook(link)
		},
	}
	cmd.Flags().StringVar(&link, "url", "", "webhook url, overrides webhook_url from config")
	return cmd
}
