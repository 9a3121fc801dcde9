package ai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/myrjola/ikigai/internal/errors"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiBackend uses the Gemini API with a JSON response MIME type.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, ErrNoCredential
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{ //nolint:exhaustruct // defaults for the rest.
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}
	return &GeminiBackend{client: client, model: model}, nil
}

func (b *GeminiBackend) Generate(ctx context.Context, req Request) (string, error) {
	temperature := req.Temperature
	resp, err := b.client.Models.GenerateContent(ctx, b.model,
		[]*genai.Content{genai.NewContentFromText(req.Content, genai.RoleUser)},
		&genai.GenerateContentConfig{ //nolint:exhaustruct // defaults for the rest.
			SystemInstruction: genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
			Temperature:       &temperature,
			MaxOutputTokens:   req.MaxOutputTokens,
			ResponseMIMEType:  "application/json",
		})
	if err != nil {
		return "", errors.Wrap(err, "generate content", slog.String("model", b.model))
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", errors.Wrap(ErrSafetyBlocked, "prompt blocked",
			slog.String("reason", string(resp.PromptFeedback.BlockReason)))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", nil
	}
	candidate := resp.Candidates[0]
	switch candidate.FinishReason { //nolint:exhaustive // only the blocking reasons matter.
	case genai.FinishReasonSafety, genai.FinishReasonBlocklist, genai.FinishReasonProhibitedContent,
		genai.FinishReasonSPII:
		return "", errors.Wrap(ErrSafetyBlocked, "candidate blocked",
			slog.String("reason", string(candidate.FinishReason)))
	}
	if candidate.Content == nil {
		return "", nil
	}
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		text.WriteString(part.Text)
	}
	return text.String(), nil
}
