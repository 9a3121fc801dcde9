package ai

import (
	"context"
	"log/slog"

	"github.com/myrjola/ikigai/internal/errors"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var ErrUnknownProvider = errors.NewSentinel("unknown AI provider")

// ProviderConfig selects and configures the completion provider.
type ProviderConfig struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL is only used by the OpenAI provider.
	BaseURL string
}

// NewBackend returns the configured provider backend. Without an API key it returns a nil Backend, which
// gives a disabled Client.
func NewBackend(ctx context.Context, cfg ProviderConfig) (Backend, error) {
	if cfg.APIKey == "" {
		return nil, nil //nolint:nilnil // a nil backend disables the AI features.
	}
	switch cfg.Provider {
	case ProviderGemini:
		b, err := NewGeminiBackend(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return b, nil
	case ProviderOpenAI:
		b, err := NewOpenAIBackend(cfg.APIKey, cfg.Model, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, errors.Wrap(ErrUnknownProvider, "new backend", slog.String("provider", cfg.Provider))
	}
}
