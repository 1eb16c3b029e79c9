package relay

import (
	"Relay/core"
	"Relay/lib/sl"
	"context"
	"errors"
	"io"
	"log/slog"
)

type State int

const (
	Idle State = iota
	AwaitingFirstFragment
	Streaming
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingFirstFragment:
		return "awaiting_first_fragment"
	case Streaming:
		return "streaming"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Assembler turns one generation result into chat mutations: a single
// send followed by edits of that same message. An Assembler serves one
// inbound message and is not reused.
type Assembler struct {
	chatId int64
	chat   core.ChatRelay
	gen    core.Generator
	log    *slog.Logger
	spawn  func(task func())

	state  State
	handle *core.MessageHandle
	text   string
}

// NewAssembler creates a session for chatId. spawn runs edit tasks; when
// nil every edit gets its own goroutine.
func NewAssembler(chatId int64, chat core.ChatRelay, gen core.Generator, log *slog.Logger, spawn func(task func())) *Assembler {
	if spawn == nil {
		spawn = func(task func()) { go task() }
	}
	return &Assembler{
		chatId: chatId,
		chat:   chat,
		gen:    gen,
		log:    log.With(sl.Module("assembler"), sl.Chat(chatId)),
		spawn:  spawn,
		state:  Idle,
	}
}

func (a *Assembler) State() State {
	return a.state
}

// Text is the full reply as accumulated so far.
func (a *Assembler) Text() string {
	return a.text
}

func (a *Assembler) begin() bool {
	if a.state != Idle {
		a.log.With(slog.String("state", a.state.String())).Warn("session already used")
		return false
	}
	a.chat.SendTyping(a.chatId)
	a.state = AwaitingFirstFragment
	return true
}

// RespondImage posts every generated image in order, or the error text.
func (a *Assembler) RespondImage(ctx context.Context, req core.GenerationRequest) {
	if !a.begin() {
		return
	}

	urls, err := a.gen.GenerateImage(ctx, req)
	if err != nil {
		a.replyError(err)
		return
	}

	for i, url := range urls {
		if err := a.chat.SendPhoto(a.chatId, url); err != nil {
			a.log.With(slog.Int("sent", i), slog.Int("images", len(urls))).Error("image reply aborted", sl.Err(err))
			a.state = Failed
			return
		}
	}
	a.state = Done
}

// RespondText relays a completion stream. The first fragment is sent as a
// new message; each later fragment edits that message to the whole text
// received so far.
func (a *Assembler) RespondText(ctx context.Context, req core.GenerationRequest) {
	if !a.begin() {
		return
	}

	stream, err := a.gen.GenerateText(ctx, req)
	if err != nil {
		a.replyError(err)
		return
	}
	defer func() {
		if err := stream.Close(); err != nil {
			a.log.Debug("closing stream", sl.Err(err))
		}
	}()

	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if a.state == AwaitingFirstFragment {
				a.replyError(err)
				return
			}
			// the partial answer stays as it is
			a.log.With(slog.Int("length", len(a.text))).Warn("stream failed after reply started", sl.Err(err))
			a.state = Done
			return
		}

		if a.state == AwaitingFirstFragment {
			if !a.sendFirst(fragment) {
				return
			}
			continue
		}
		a.text += fragment
		a.edit(a.text)
	}

	if a.state == AwaitingFirstFragment {
		a.log.Warn("stream finished without text")
	}
	a.state = Done
}

func (a *Assembler) sendFirst(fragment string) bool {
	handle, err := a.chat.SendMessage(a.chatId, fragment)
	if err != nil {
		a.log.Error("first send rejected", sl.Err(err))
		a.state = Failed
		return false
	}
	a.handle = handle
	a.text = fragment
	a.state = Streaming
	a.log.With(slog.Int("message", handle.MessageID)).Debug("reply started")
	return true
}

// edit is fire-and-forget: edits are submitted in order but may land out of
// order at the platform.
func (a *Assembler) edit(text string) {
	chatId, messageId := a.chatId, a.handle.MessageID
	a.spawn(func() {
		a.chat.EditMessage(chatId, messageId, text)
	})
}

func (a *Assembler) replyError(err error) {
	a.log.Info("replying with error", sl.Err(err))
	if _, sendErr := a.chat.SendMessage(a.chatId, core.UserMessage(err)); sendErr != nil {
		a.state = Failed
		return
	}
	a.state = Done
}
