package relay

import (
	"Relay/core"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatId int64 = 42

func newSession(chat *fakeChat, gen *fakeGenerator) *Assembler {
	return NewAssembler(chatId, chat, gen, testLogger(), syncSpawn)
}

func textReq(prompt string) core.GenerationRequest {
	return core.GenerationRequest{Prompt: prompt, Mode: core.ModeText}
}

func TestRespondTextSendsThenEdits(t *testing.T) {
	chat := &fakeChat{}
	gen := &fakeGenerator{fragments: []string{"Hi", " there", "!"}}

	session := newSession(chat, gen)
	session.RespondText(context.Background(), textReq("hello"))

	assert.Equal(t, Done, session.State())
	assert.Equal(t, []action{
		{kind: core.ActionTyping, chatId: chatId},
		{kind: core.ActionSendMessage, chatId: chatId, text: "Hi"},
		{kind: core.ActionEditMessage, chatId: chatId, messageId: 101, text: "Hi there"},
		{kind: core.ActionEditMessage, chatId: chatId, messageId: 101, text: "Hi there!"},
	}, chat.Actions())
	assert.True(t, gen.stream.closed)
}

func TestRespondTextMutationCount(t *testing.T) {
	for n := 1; n <= 6; n++ {
		fragments := make([]string, n)
		for i := range fragments {
			fragments[i] = strings.Repeat("ab", i+1) + " "
		}
		chat := &fakeChat{}
		session := newSession(chat, &fakeGenerator{fragments: fragments})
		session.RespondText(context.Background(), textReq("q"))

		sends := chat.Of(core.ActionSendMessage)
		edits := chat.Of(core.ActionEditMessage)
		require.Len(t, sends, 1)
		require.Len(t, edits, n-1)

		final := sends[0].text
		if n > 1 {
			final = edits[n-2].text
		}
		assert.Equal(t, strings.Join(fragments, ""), final)
		assert.Equal(t, final, session.Text())
	}
}

func TestRespondTextNoEditBeforeSend(t *testing.T) {
	chat := &fakeChat{}
	session := newSession(chat, &fakeGenerator{fragments: []string{"a", "b", "c"}})
	session.RespondText(context.Background(), textReq("q"))

	sawSend := false
	for _, a := range chat.Actions() {
		switch a.kind {
		case core.ActionSendMessage:
			sawSend = true
		case core.ActionEditMessage:
			require.True(t, sawSend, "edit emitted before the first send")
		}
	}
}

func TestRespondTextInvalidRequestBeforeFirstFragment(t *testing.T) {
	chat := &fakeChat{}
	gen := &fakeGenerator{openErr: core.NewInvalidRequest("prompt too long", nil)}

	session := newSession(chat, gen)
	session.RespondText(context.Background(), textReq("hello"))

	assert.Equal(t, Done, session.State())
	assert.Equal(t, []action{
		{kind: core.ActionTyping, chatId: chatId},
		{kind: core.ActionSendMessage, chatId: chatId, text: "prompt too long"},
	}, chat.Actions())
}

func TestRespondTextInvalidRequestWithoutMessage(t *testing.T) {
	chat := &fakeChat{}
	gen := &fakeGenerator{openErr: core.NewInvalidRequest("", errors.New("status 400"))}

	session := newSession(chat, gen)
	session.RespondText(context.Background(), textReq("hello"))

	assert.Equal(t, Done, session.State())
	sends := chat.Of(core.ActionSendMessage)
	require.Len(t, sends, 1)
	assert.Equal(t, core.GenericFailureMessage, sends[0].text)
}

func TestRespondTextFailureOnFirstReceive(t *testing.T) {
	chat := &fakeChat{}
	gen := &fakeGenerator{streamErr: core.NewUpstreamFailure(errors.New("connection reset by peer"))}

	session := newSession(chat, gen)
	session.RespondText(context.Background(), textReq("hello"))

	assert.Equal(t, Done, session.State())
	sends := chat.Of(core.ActionSendMessage)
	require.Len(t, sends, 1)
	assert.Equal(t, core.GenericFailureMessage, sends[0].text)
	assert.NotContains(t, sends[0].text, "connection reset")
}

func TestRespondTextMidStreamFailureKeepsPartialText(t *testing.T) {
	chat := &fakeChat{}
	gen := &fakeGenerator{
		fragments: []string{"Once", " upon"},
		streamErr: core.NewUpstreamFailure(errors.New("stream broke")),
	}

	session := newSession(chat, gen)
	session.RespondText(context.Background(), textReq("tell a story"))

	assert.Equal(t, Done, session.State())
	assert.Equal(t, 1, chat.Count(core.ActionSendMessage))
	edits := chat.Of(core.ActionEditMessage)
	require.Len(t, edits, 1)
	assert.Equal(t, "Once upon", edits[0].text)
	assert.Equal(t, "Once upon", session.Text())
}

func TestRespondTextFirstSendRejectedStopsConsuming(t *testing.T) {
	chat := &fakeChat{sendErr: &core.ChatError{Description: "Bad Request: chat not found"}}
	gen := &fakeGenerator{fragments: []string{"Hi", " there", "!"}}

	session := newSession(chat, gen)
	session.RespondText(context.Background(), textReq("hello"))

	assert.Equal(t, Failed, session.State())
	assert.Equal(t, 1, gen.stream.recvCalls)
	assert.Equal(t, 1, chat.Count(core.ActionSendMessage))
	assert.Zero(t, chat.Count(core.ActionEditMessage))
	assert.True(t, gen.stream.closed)
}

func TestRespondTextEmptyStream(t *testing.T) {
	chat := &fakeChat{}
	session := newSession(chat, &fakeGenerator{})
	session.RespondText(context.Background(), textReq("hello"))

	assert.Equal(t, Done, session.State())
	assert.Equal(t, []action{{kind: core.ActionTyping, chatId: chatId}}, chat.Actions())
}

func TestRespondTextAsyncEdits(t *testing.T) {
	chat := &fakeChat{}
	gen := &fakeGenerator{fragments: []string{"1", "2", "3", "4", "5"}}

	var wg sync.WaitGroup
	spawn := func(task func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task()
		}()
	}

	session := NewAssembler(chatId, chat, gen, testLogger(), spawn)
	session.RespondText(context.Background(), textReq("count"))
	wg.Wait()

	edits := chat.Of(core.ActionEditMessage)
	require.Len(t, edits, 4)
	texts := make([]string, 0, len(edits))
	for _, e := range edits {
		assert.Equal(t, 101, e.messageId)
		texts = append(texts, e.text)
	}
	assert.ElementsMatch(t, []string{"12", "123", "1234", "12345"}, texts)
}

func TestRespondImageSendsPhotosInOrder(t *testing.T) {
	chat := &fakeChat{}
	urls := []string{"https://img.example/1.png", "https://img.example/2.png", "https://img.example/3.png"}
	gen := &fakeGenerator{images: urls}

	session := newSession(chat, gen)
	session.RespondImage(context.Background(), core.GenerationRequest{Prompt: "a fox", Mode: core.ModeImage})

	assert.Equal(t, Done, session.State())
	photos := chat.Of(core.ActionSendPhoto)
	require.Len(t, photos, len(urls))
	for i, p := range photos {
		assert.Equal(t, urls[i], p.text)
	}
	assert.Zero(t, chat.Count(core.ActionSendMessage))
	assert.Zero(t, chat.Count(core.ActionEditMessage))
}

func TestRespondImageInvalidRequest(t *testing.T) {
	chat := &fakeChat{}
	gen := &fakeGenerator{imageErr: core.NewInvalidRequest("prompt too long", nil)}

	session := newSession(chat, gen)
	session.RespondImage(context.Background(), core.GenerationRequest{Prompt: "x", Mode: core.ModeImage})

	assert.Equal(t, Done, session.State())
	sends := chat.Of(core.ActionSendMessage)
	require.Len(t, sends, 1)
	assert.Equal(t, "prompt too long", sends[0].text)
	assert.Zero(t, chat.Count(core.ActionSendPhoto))
}

func TestRespondImagePhotoRejected(t *testing.T) {
	chat := &fakeChat{photoErr: &core.ChatError{Description: "Bad Request: wrong file identifier"}}
	gen := &fakeGenerator{images: []string{"https://img.example/1.png", "https://img.example/2.png"}}

	session := newSession(chat, gen)
	session.RespondImage(context.Background(), core.GenerationRequest{Prompt: "x", Mode: core.ModeImage})

	assert.Equal(t, Failed, session.State())
	assert.Equal(t, 1, chat.Count(core.ActionSendPhoto))
}

func TestAssemblerIsSingleUse(t *testing.T) {
	chat := &fakeChat{}
	gen := &fakeGenerator{fragments: []string{"Hi"}}

	session := newSession(chat, gen)
	session.RespondText(context.Background(), textReq("hello"))
	session.RespondText(context.Background(), textReq("again"))
	session.RespondImage(context.Background(), core.GenerationRequest{Prompt: "x", Mode: core.ModeImage})

	assert.Equal(t, Done, session.State())
	assert.Equal(t, 1, gen.textCalls)
	assert.Zero(t, gen.imageCalls)
	assert.Equal(t, 1, chat.Count(core.ActionTyping))
}
