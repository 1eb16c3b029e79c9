package core

import (
	"errors"
	"fmt"
	"strings"
)

// GenericFailureMessage is shown to the user for any failure that is not
// an invalid request. Upstream diagnostics are logged, never relayed.
const GenericFailureMessage = "Something went wrong, please try again later"

type ErrorKind int

const (
	InvalidRequest ErrorKind = iota
	UpstreamFailure
)

func (k ErrorKind) String() string {
	if k == InvalidRequest {
		return "invalid_request"
	}
	return "upstream_failure"
}

type GenerationError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

func NewInvalidRequest(message string, cause error) *GenerationError {
	return &GenerationError{Kind: InvalidRequest, Message: message, Cause: cause}
}

func NewUpstreamFailure(cause error) *GenerationError {
	return &GenerationError{Kind: UpstreamFailure, Message: GenericFailureMessage, Cause: cause}
}

// ChatError is returned when the chat platform rejects a send.
type ChatError struct {
	Description string
}

func (e *ChatError) Error() string {
	return "chat error: " + e.Description
}

// UserMessage returns the text that may be shown in the chat for err. It is
// never empty.
func UserMessage(err error) string {
	var genErr *GenerationError
	if errors.As(err, &genErr) && genErr.Kind == InvalidRequest && strings.TrimSpace(genErr.Message) != "" {
		return genErr.Message
	}
	return GenericFailureMessage
}
