package ai

import (
	"Relay/core"
	"Relay/lib/sl"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

type ChatGPT struct {
	conf   *core.Config
	log    *slog.Logger
	client *openai.Client
}

func NewChat(conf *core.Config, log *slog.Logger) *ChatGPT {
	clientConf := openai.DefaultConfig(conf.OpenAIApiKey)
	clientConf.BaseURL = conf.OpenAIBaseURL
	// the timeout bounds the wait for response headers only; a streamed
	// body may take as long as the completion does
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = conf.RequestTimeout
	clientConf.HTTPClient = &http.Client{Transport: transport}

	return &ChatGPT{
		conf:   conf,
		log:    log.With(sl.Module("chat-gpt")),
		client: openai.NewClientWithConfig(clientConf),
	}
}

func (c *ChatGPT) GenerateImage(ctx context.Context, req core.GenerationRequest) ([]string, error) {
	log := c.requestLog(req)

	resp, err := c.client.CreateImage(ctx, NewImageRequest(req.Prompt, c.conf))
	if err != nil {
		return nil, c.classify(log, "creating image", err)
	}

	urls := make([]string, 0, len(resp.Data))
	for _, data := range resp.Data {
		if data.URL != "" {
			urls = append(urls, data.URL)
		}
	}
	if len(urls) == 0 {
		return nil, c.classify(log, "creating image", fmt.Errorf("image response: no urls in %d items", len(resp.Data)))
	}

	log.With(slog.Int("images", len(urls))).Info("image created")
	return urls, nil
}

func (c *ChatGPT) GenerateText(ctx context.Context, req core.GenerationRequest) (core.TextStream, error) {
	log := c.requestLog(req)

	stream, err := c.client.CreateChatCompletionStream(ctx, NewRequest(req.Prompt, c.conf.Model))
	if err != nil {
		return nil, c.classify(log, "opening completion stream", err)
	}

	log.With(slog.String("model", c.conf.Model)).Debug("completion stream opened")
	return &completionStream{stream: stream, log: log}, nil
}

func (c *ChatGPT) requestLog(req core.GenerationRequest) *slog.Logger {
	log := c.log.With(sl.Text(req.Prompt))
	for k, v := range req.Context {
		log = log.With(slog.String(k, v))
	}
	return log
}

// classify turns a backend error into a *core.GenerationError. Only a
// request rejected as bad (HTTP 400) keeps the backend message; everything
// else is reported with a generic message.
func (c *ChatGPT) classify(log *slog.Logger, op string, err error) *core.GenerationError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusBadRequest {
		log.With(slog.String("type", apiErr.Type)).Warn(op+": invalid request", sl.Err(err))
		return core.NewInvalidRequest(apiErr.Message, err)
	}
	log.Error(op, sl.Err(err))
	return core.NewUpstreamFailure(fmt.Errorf("%s: %w", op, err))
}

type completionStream struct {
	stream *openai.ChatCompletionStream
	log    *slog.Logger
	chunks int
}

func (s *completionStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			s.log.With(slog.Int("chunks", s.chunks)).Debug("completion stream finished")
			return "", io.EOF
		}
		if err != nil {
			s.log.With(slog.Int("chunks", s.chunks)).Error("receiving completion chunk", sl.Err(err))
			return "", core.NewUpstreamFailure(fmt.Errorf("receiving completion chunk: %w", err))
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			s.chunks++
			return delta, nil
		}
	}
}

func (s *completionStream) Close() error {
	return s.stream.Close()
}
