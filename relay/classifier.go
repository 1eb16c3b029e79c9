package relay

import (
	"Relay/core"
	"strings"
	"unicode"
)

// imageTriggers start a message that asks for a picture instead of text.
// Longer phrases come first so they win over their own prefixes.
var imageTriggers = []string{
	"generate an image of ",
	"generate image of ",
	"picture of ",
	"image:",
	"draw ",
	"paint ",
}

// Classify is a pure function of the message.
func Classify(msg core.InboundMessage) core.Request {
	if msg.IsCommand() {
		name, args := splitCommand(msg.Text)
		return core.Request{
			Kind:    core.KindCommand,
			ChatID:  msg.ChatID,
			Command: name,
			Prompt:  args,
		}
	}

	if prompt, ok := DetectImageIntent(msg.Text); ok {
		return core.Request{
			Kind:   core.KindImage,
			ChatID: msg.ChatID,
			Prompt: prompt,
		}
	}

	return core.Request{
		Kind:   core.KindText,
		ChatID: msg.ChatID,
		Prompt: msg.Text,
	}
}

// DetectImageIntent reports whether text opens with an image trigger and
// returns the rest as the image prompt.
func DetectImageIntent(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	for _, trigger := range imageTriggers {
		if len(trimmed) < len(trigger) || !strings.EqualFold(trimmed[:len(trigger)], trigger) {
			continue
		}
		prompt := strings.TrimSpace(trimmed[len(trigger):])
		if prompt == "" {
			return "", false
		}
		return prompt, true
	}
	return "", false
}

// splitCommand turns "/Tokens@my_bot  now" into ("tokens", "now").
func splitCommand(text string) (string, string) {
	text = strings.TrimPrefix(text, core.CommandMarker)
	name, args := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		name, args = text[:i], text[i:]
	}
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name), strings.TrimSpace(args)
}
