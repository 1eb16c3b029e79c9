package webhook

import (
	"Relay/core"
	"Relay/lib/sl"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

const (
	ack          = "ok"
	maxBodyBytes = 1 << 20
)

type Responder interface {
	Respond(ctx context.Context, msg core.InboundMessage)
}

// Handler accepts Telegram webhook deliveries. Every delivery is
// acknowledged with 200 "ok" before any work is done so the platform never
// retries; well-formed messages are then answered in the background.
type Handler struct {
	responder Responder
	ctx       context.Context
	log       *slog.Logger
	wg        sync.WaitGroup
}

// NewHandler runs responses under ctx, which should outlive single requests.
func NewHandler(ctx context.Context, responder Responder, log *slog.Logger) *Handler {
	return &Handler{
		responder: responder,
		ctx:       ctx,
		log:       log.With(sl.Module("webhook")),
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("POST /", h)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	msg, ok := h.decode(r)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, ack)

	if !ok {
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.responder.Respond(h.ctx, msg)
	}()
}

// Wait blocks until all dispatched messages have been answered.
func (h *Handler) Wait() {
	h.wg.Wait()
}

func (h *Handler) decode(r *http.Request) (core.InboundMessage, bool) {
	var update tgbotapi.Update
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&update); err != nil {
		h.log.Warn("decoding update", sl.Err(err))
		return core.InboundMessage{}, false
	}
	return FromUpdate(update)
}

// FromUpdate extracts the message the relay works with. Updates without a
// chat or without text are dropped.
func FromUpdate(update tgbotapi.Update) (core.InboundMessage, bool) {
	message := update.Message
	if message == nil || message.Chat == nil || message.Text == "" {
		return core.InboundMessage{}, false
	}
	return core.InboundMessage{
		ChatID: message.Chat.ID,
		Text:   message.Text,
	}, true
}
