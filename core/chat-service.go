package core

import "context"

// ChatRelay is the chat platform capability. None of the operations retry.
type ChatRelay interface {
	// SendTyping is a best effort hint; failures are swallowed.
	SendTyping(chatId int64)
	// SendMessage returns the stored message or a *ChatError.
	SendMessage(chatId int64, text string) (*MessageHandle, error)
	// EditMessage is fire-and-forget; failures are logged only.
	EditMessage(chatId int64, messageId int, text string)
	SendPhoto(chatId int64, imageURL string) error
}

// TextStream is a finite, non-restartable sequence of text fragments.
// Recv returns io.EOF after the last fragment, or a *GenerationError when
// the backend fails. Fragments are never empty.
type TextStream interface {
	Recv() (string, error)
	Close() error
}

type Generator interface {
	// GenerateImage returns at least one image URL or a *GenerationError.
	GenerateImage(ctx context.Context, req GenerationRequest) ([]string, error)
	// GenerateText opens a completion stream. A request rejected outright
	// returns a *GenerationError and no stream.
	GenerateText(ctx context.Context, req GenerationRequest) (TextStream, error)
}

type Billing interface {
	RemainingCredit(ctx context.Context) (*Credit, error)
}
