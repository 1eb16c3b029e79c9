package core

import "time"

// InboundMessage is a well-formed chat message delivered by the webhook.
type InboundMessage struct {
	ChatID int64
	Text   string
}

const CommandMarker = "/"

func (m InboundMessage) IsCommand() bool {
	return len(m.Text) > 0 && m.Text[:1] == CommandMarker
}

type RequestKind int

const (
	KindCommand RequestKind = iota
	KindImage
	KindText
)

func (k RequestKind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindImage:
		return "image"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Request is the classified form of an InboundMessage. For KindCommand,
// Command holds the lowercased command name and Prompt its argument text.
type Request struct {
	Kind    RequestKind
	ChatID  int64
	Command string
	Prompt  string
}

type GenerationMode int

const (
	ModeImage GenerationMode = iota
	ModeText
)

// GenerationRequest is what the relay hands to the generation backend.
// Context is a correlation bag that is only ever logged.
type GenerationRequest struct {
	Prompt  string
	Mode    GenerationMode
	Context map[string]string
}

// MessageHandle identifies a message stored by the chat platform. Text is
// what the platform stored, which may differ from what was sent.
type MessageHandle struct {
	MessageID int
	Text      string
}

// Credit is the remaining backend balance expressed in image tokens.
type Credit struct {
	Tokens    int
	ExpiresAt time.Time
}

type ChatAction string

const (
	ActionTyping      ChatAction = "typing"
	ActionSendMessage ChatAction = "send_message"
	ActionEditMessage ChatAction = "edit_message"
	ActionSendPhoto   ChatAction = "send_photo"
)
