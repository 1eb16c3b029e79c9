package ai

import (
	"Relay/core"

	"github.com/sashabaranov/go-openai"
)

// imagesPerRequest is fixed; users cannot ask for more than one image.
const imagesPerRequest = 1

func NewRequest(prompt, model string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:  model,
		Stream: true,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
}

func NewImageRequest(prompt string, conf *core.Config) openai.ImageRequest {
	return openai.ImageRequest{
		Model:          conf.ImageModel,
		Prompt:         prompt,
		N:              imagesPerRequest,
		Size:           conf.ImageSize,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	}
}
