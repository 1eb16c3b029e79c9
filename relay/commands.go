package relay

import (
	"Relay/core"
	"Relay/lib/sl"
	"context"
	"fmt"
	"log/slog"
)

const (
	helpText       = "Start by sending a message - for example, 'What can this bot do?'"
	creditText     = "You have %d remaining token(s) to spend until %s"
	expirationDate = "January 2, 2006"
)

type CommandFunc func(ctx context.Context, req core.Request)

// Commands answers slash-commands straight through the chat relay.
type Commands struct {
	chat     core.ChatRelay
	billing  core.Billing
	log      *slog.Logger
	handlers map[string]CommandFunc
}

func NewCommands(chat core.ChatRelay, billing core.Billing, log *slog.Logger) *Commands {
	c := &Commands{
		chat:    chat,
		billing: billing,
		log:     log.With(sl.Module("commands")),
	}
	c.handlers = map[string]CommandFunc{
		"start":  c.help,
		"help":   c.help,
		"tokens": c.tokens,
	}
	return c
}

// Dispatch runs the handler for req.Command. Unknown commands are ignored
// and reported as not handled.
func (c *Commands) Dispatch(ctx context.Context, req core.Request) bool {
	handler, ok := c.handlers[req.Command]
	if !ok {
		c.log.With(sl.Chat(req.ChatID), slog.String("command", req.Command)).Debug("unknown command")
		return false
	}
	c.chat.SendTyping(req.ChatID)
	handler(ctx, req)
	return true
}

func (c *Commands) help(_ context.Context, req core.Request) {
	c.reply(req.ChatID, helpText)
}

func (c *Commands) tokens(ctx context.Context, req core.Request) {
	credit, err := c.billing.RemainingCredit(ctx)
	if err != nil {
		c.log.With(sl.Chat(req.ChatID)).Warn("credit lookup failed", sl.Err(err))
		c.reply(req.ChatID, core.UserMessage(err))
		return
	}
	c.reply(req.ChatID, FormatCredit(credit))
}

func FormatCredit(credit *core.Credit) string {
	return fmt.Sprintf(creditText, credit.Tokens, credit.ExpiresAt.Format(expirationDate))
}

func (c *Commands) reply(chatId int64, text string) {
	if _, err := c.chat.SendMessage(chatId, text); err != nil {
		c.log.With(sl.Chat(chatId)).Error("command reply", sl.Err(err))
	}
}
