package relay

import (
	"Relay/core"
	"context"
	"io"
	"log/slog"
	"sync"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func syncSpawn(task func()) {
	task()
}

type action struct {
	kind      core.ChatAction
	chatId    int64
	messageId int
	text      string
}

type fakeChat struct {
	mu       sync.Mutex
	actions  []action
	nextId   int
	sendErr  error
	photoErr error
}

func (f *fakeChat) record(a action) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, a)
}

func (f *fakeChat) SendTyping(chatId int64) {
	f.record(action{kind: core.ActionTyping, chatId: chatId})
}

func (f *fakeChat) SendMessage(chatId int64, text string) (*core.MessageHandle, error) {
	f.record(action{kind: core.ActionSendMessage, chatId: chatId, text: text})
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextId++
	return &core.MessageHandle{MessageID: 100 + f.nextId, Text: text}, nil
}

func (f *fakeChat) EditMessage(chatId int64, messageId int, text string) {
	f.record(action{kind: core.ActionEditMessage, chatId: chatId, messageId: messageId, text: text})
}

func (f *fakeChat) SendPhoto(chatId int64, imageURL string) error {
	f.record(action{kind: core.ActionSendPhoto, chatId: chatId, text: imageURL})
	return f.photoErr
}

func (f *fakeChat) Actions() []action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]action(nil), f.actions...)
}

func (f *fakeChat) Count(kind core.ChatAction) int {
	n := 0
	for _, a := range f.Actions() {
		if a.kind == kind {
			n++
		}
	}
	return n
}

func (f *fakeChat) Of(kind core.ChatAction) []action {
	var out []action
	for _, a := range f.Actions() {
		if a.kind == kind {
			out = append(out, a)
		}
	}
	return out
}

type fakeGenerator struct {
	images   []string
	imageErr error

	fragments []string
	openErr   error
	streamErr error

	imageCalls int
	textCalls  int
	requests   []core.GenerationRequest
	stream     *fakeStream
}

func (g *fakeGenerator) GenerateImage(_ context.Context, req core.GenerationRequest) ([]string, error) {
	g.imageCalls++
	g.requests = append(g.requests, req)
	if g.imageErr != nil {
		return nil, g.imageErr
	}
	return g.images, nil
}

func (g *fakeGenerator) GenerateText(_ context.Context, req core.GenerationRequest) (core.TextStream, error) {
	g.textCalls++
	g.requests = append(g.requests, req)
	if g.openErr != nil {
		return nil, g.openErr
	}
	g.stream = &fakeStream{fragments: g.fragments, err: g.streamErr}
	return g.stream, nil
}

type fakeStream struct {
	fragments []string
	err       error
	recvCalls int
	closed    bool
}

func (s *fakeStream) Recv() (string, error) {
	s.recvCalls++
	if s.recvCalls <= len(s.fragments) {
		return s.fragments[s.recvCalls-1], nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

type fakeBilling struct {
	credit *core.Credit
	err    error
	calls  int
}

func (b *fakeBilling) RemainingCredit(context.Context) (*core.Credit, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return b.credit, nil
}
