package sl

import (
	"fmt"
	"log/slog"
)

const maxTextLength = 50

func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Secret returns a string with the first 5 characters of the input string
// used to hide sensitive information in logs
func Secret(some string) slog.Attr {
	r := "***"
	if len(some) > 5 {
		r = fmt.Sprintf("%s***", some[0:5])
	}
	if some == "" {
		r = "?"
	}
	return slog.Attr{
		Key:   "secret",
		Value: slog.StringValue(r),
	}
}

func Module(mod string) slog.Attr {
	return slog.Attr{
		Key:   "mod",
		Value: slog.StringValue(mod),
	}
}

func Chat(chatId int64) slog.Attr {
	return slog.Int64("chat", chatId)
}

// Text logs user or model text cut to the first 50 characters.
func Text(text string) slog.Attr {
	r := []rune(text)
	if len(r) > maxTextLength {
		text = string(r[:maxTextLength]) + "..."
	}
	return slog.String("text", text)
}
