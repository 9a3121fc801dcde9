package ai

import (
	"context"
	"log/slog"

	"github.com/myrjola/ikigai/internal/errors"
	"github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIBackend uses the chat completions API in JSON mode.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend creates the backend. baseURL overrides the API endpoint for compatible providers.
func NewOpenAIBackend(apiKey, model, baseURL string) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, ErrNoCredential
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIBackend{client: openai.NewClientWithConfig(config), model: model}, nil
}

func (b *OpenAIBackend) Generate(ctx context.Context, req Request) (string, error) {
	completion, err := b.client.CreateChatCompletion(ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:       b.model,
			MaxTokens:   int(req.MaxOutputTokens),
			Temperature: req.Temperature,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: req.SystemInstruction}, //nolint:exhaustruct // text only.
				{Role: openai.ChatMessageRoleUser, Content: req.Content},             //nolint:exhaustruct // text only.
			},
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion", slog.String("model", b.model))
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	choice := completion.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", errors.Wrap(ErrSafetyBlocked, "content filtered")
	}
	return choice.Message.Content, nil
}
