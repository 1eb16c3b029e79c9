package relay

import (
	"Relay/core"
	"Relay/lib/sl"
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Relay is the entry point for inbound messages: it classifies each one
// and hands it to the command table or a fresh Assembler.
type Relay struct {
	chat     core.ChatRelay
	gen      core.Generator
	commands *Commands
	log      *slog.Logger
	tasks    sync.WaitGroup
}

func New(chat core.ChatRelay, gen core.Generator, billing core.Billing, log *slog.Logger) *Relay {
	return &Relay{
		chat:     chat,
		gen:      gen,
		commands: NewCommands(chat, billing, log),
		log:      log.With(sl.Module("relay")),
	}
}

// Respond handles one message to completion. Failures end up in the chat
// or the log; nothing is returned to the caller.
func (r *Relay) Respond(ctx context.Context, msg core.InboundMessage) {
	req := Classify(msg)
	log := r.log.With(
		sl.Chat(req.ChatID),
		slog.String("kind", req.Kind.String()),
		sl.Text(msg.Text),
	)
	log.Info("incoming message")

	switch req.Kind {
	case core.KindCommand:
		r.commands.Dispatch(ctx, req)
	case core.KindImage:
		session := NewAssembler(req.ChatID, r.chat, r.gen, r.log, r.spawn)
		session.RespondImage(ctx, r.generationRequest(req, core.ModeImage))
		log.With(slog.String("state", session.State().String())).Info("image reply finished")
	case core.KindText:
		session := NewAssembler(req.ChatID, r.chat, r.gen, r.log, r.spawn)
		session.RespondText(ctx, r.generationRequest(req, core.ModeText))
		log.With(
			slog.String("state", session.State().String()),
			slog.Int("length", len(session.Text())),
		).Info("text reply finished")
	}
}

// Wait blocks until every edit submitted so far has been delivered.
func (r *Relay) Wait() {
	r.tasks.Wait()
}

func (r *Relay) spawn(task func()) {
	r.tasks.Add(1)
	go func() {
		defer r.tasks.Done()
		task()
	}()
}

func (r *Relay) generationRequest(req core.Request, mode core.GenerationMode) core.GenerationRequest {
	return core.GenerationRequest{
		Prompt: req.Prompt,
		Mode:   mode,
		Context: map[string]string{
			"chat_id":    strconv.FormatInt(req.ChatID, 10),
			"request_id": uuid.NewString(),
		},
	}
}
