package caption

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ChatService is the slice of the openai-go chat API used for vision captions.
type ChatService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAIVision sends the image inline as a base64 data URL.
type OpenAIVision struct {
	chat      ChatService
	model     string
	maxTokens int64
}

func NewOpenAIVision(chat ChatService, model string) *OpenAIVision {
	return &OpenAIVision{chat: chat, model: model, maxTokens: 300}
}

func (o *OpenAIVision) Describe(ctx context.Context, data []byte, mimeType, instruction string) (string, error) {
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	res, err := o.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(instruction),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
		MaxTokens: openai.Int(o.maxTokens),
	})
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("openai: vision returned no choices")
	}
	return res.Choices[0].Message.Content, nil
}

var _ Provider = (*OpenAIVision)(nil)
