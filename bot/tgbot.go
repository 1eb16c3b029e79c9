package bot

import (
	"Relay/core"
	"Relay/lib/sl"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// TgBot relays chat actions to the Telegram Bot API. It keeps no state
// between calls and never retries.
type TgBot struct {
	api *tgbotapi.BotAPI
	log *slog.Logger
}

func NewTgBot(conf *core.Config, log *slog.Logger) (*TgBot, error) {
	api, err := tgbotapi.NewBotAPI(conf.TelegramApiKey)
	if err != nil {
		return nil, fmt.Errorf("creating bot api: %w", err)
	}
	log.With(
		slog.String("username", api.Self.UserName),
	).Debug("telegram bot authorized")
	return newTgBot(api, log), nil
}

func newTgBot(api *tgbotapi.BotAPI, log *slog.Logger) *TgBot {
	return &TgBot{
		api: api,
		log: log.With(sl.Module("tgbot")),
	}
}

// SendTyping goes through MakeRequest because sendChatAction answers with
// a bare boolean that Send cannot decode into a message.
func (t *TgBot) SendTyping(chatId int64) {
	params := url.Values{}
	params.Add("chat_id", strconv.FormatInt(chatId, 10))
	params.Add("action", tgbotapi.ChatTyping)

	if _, err := t.api.MakeRequest("sendChatAction", params); err != nil {
		t.log.With(sl.Chat(chatId)).Debug("sending chat action", sl.Err(err))
	}
}

func (t *TgBot) SendMessage(chatId int64, text string) (*core.MessageHandle, error) {
	msg := tgbotapi.NewMessage(chatId, text)
	sent, err := t.api.Send(msg)
	if err != nil {
		t.log.With(sl.Chat(chatId)).Error("sending message", sl.Err(err))
		return nil, &core.ChatError{Description: err.Error()}
	}
	return &core.MessageHandle{
		MessageID: sent.MessageID,
		Text:      sent.Text,
	}, nil
}

func (t *TgBot) EditMessage(chatId int64, messageId int, text string) {
	edit := tgbotapi.NewEditMessageText(chatId, messageId, text)
	if _, err := t.api.Send(edit); err != nil {
		t.log.With(
			sl.Chat(chatId),
			slog.Int("message", messageId),
		).Warn("editing message", sl.Err(err))
	}
}

// SendPhoto posts an image by URL; Telegram fetches it itself.
func (t *TgBot) SendPhoto(chatId int64, imageURL string) error {
	photo := tgbotapi.NewPhotoShare(chatId, imageURL)
	if _, err := t.api.Send(photo); err != nil {
		t.log.With(sl.Chat(chatId)).Error("sending photo", sl.Err(err))
		return &core.ChatError{Description: err.Error()}
	}
	return nil
}

// SetWebhook points Telegram at link for update delivery.
func (t *TgBot) SetWebhook(link string) error {
	resp, err := t.api.SetWebhook(tgbotapi.NewWebhook(link))
	if err != nil {
		return fmt.Errorf("setting webhook: %w", err)
	}
	t.log.With(
		slog.String("url", link),
		slog.String("description", resp.Description),
	).Info("webhook set")
	return nil
}
