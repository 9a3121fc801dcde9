package ai_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/myrjola/ikigai/internal/ai"
	"github.com/myrjola/ikigai/internal/ai/aitest"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/testhelpers"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestClient_Complete(t *testing.T) {
	ctx := context.Background()
	logger := testhelpers.NewLogger(io.Discard)

	t.Run("disabled client fails without calling a backend", func(t *testing.T) {
		client := ai.NewClient(nil, ai.Options{}, logger) //nolint:exhaustruct // defaults.
		assert.False(t, client.Enabled())
		_, err := client.Complete(ctx, "system", "content")
		assert.Equal(t, ai.KindConfig, ai.KindOf(err))
	})

	t.Run("sends structured request", func(t *testing.T) {
		backend := aitest.NewBackend("```json\n{\"a\":1}\n```")
		client := ai.NewClient(backend, ai.Options{Provider: "stub", Temperature: 0.9}, logger) //nolint:exhaustruct // defaults.
		got, err := client.Complete(ctx, "system", "content")
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(got))

		requests := backend.Requests()
		require.Len(t, requests, 1)
		assert.Equal(t, ai.Request{
			SystemInstruction: "system",
			Content:           "content",
			Temperature:       0.9,
			MaxOutputTokens:   ai.DefaultMaxOutputTokens,
		}, requests[0])
	})

	t.Run("malformed response", func(t *testing.T) {
		client := ai.NewClient(aitest.NewBackend("not json"), ai.Options{}, logger) //nolint:exhaustruct // defaults.
		_, err := client.Complete(ctx, "system", "content")
		var aiErr *ai.Error
		require.ErrorAs(t, err, &aiErr)
		assert.Equal(t, ai.KindMalformedResponse, aiErr.Kind)
		assert.NotEmpty(t, aiErr.Message())
	})

	t.Run("does not retry failures", func(t *testing.T) {
		backend := aitest.NewFailingBackend(errors.New("connection reset"))
		client := ai.NewClient(backend, ai.Options{}, logger) //nolint:exhaustruct // defaults.
		_, err := client.Complete(ctx, "system", "content")
		assert.Equal(t, ai.KindNetworkFailure, ai.KindOf(err))
		assert.Len(t, backend.Requests(), 1)
	})

	t.Run("recovers panics", func(t *testing.T) {
		backend := aitest.NewBackend()
		backend.Func = func(context.Context, ai.Request) (string, error) { panic("boom") }
		client := ai.NewClient(backend, ai.Options{}, logger) //nolint:exhaustruct // defaults.
		_, err := client.Complete(ctx, "system", "content")
		assert.Equal(t, ai.KindNetworkFailure, ai.KindOf(err))
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ai.Kind
	}{
		{"missing credential", ai.ErrNoCredential, ai.KindConfig},
		{"safety", errors.Wrap(ai.ErrSafetyBlocked, "candidate blocked"), ai.KindSafetyBlocked},
		{"gemini quota", genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}, ai.KindRateLimited},     //nolint:exhaustruct // relevant fields.
		{"gemini permission", genai.APIError{Code: http.StatusForbidden, Status: "PERMISSION_DENIED"}, ai.KindConfig},            //nolint:exhaustruct // relevant fields.
		{"gemini server error", genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}, ai.KindNetworkFailure}, //nolint:exhaustruct // relevant fields.
		{"openai rate limit", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, ai.KindRateLimited},                  //nolint:exhaustruct // relevant fields.
		{"openai unauthorized", &openai.RequestError{HTTPStatusCode: http.StatusUnauthorized}, ai.KindConfig},                    //nolint:exhaustruct // relevant fields.
		{"quota message", errors.New("You exceeded your current quota"), ai.KindRateLimited},
		{"429 message", errors.New("googleapi: Error 429"), ai.KindRateLimited},
		{"cancelled", context.Canceled, ai.KindNetworkFailure},
		{"unknown", errors.New("dial tcp: no such host"), ai.KindNetworkFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ai.Classify(errors.Wrap(tt.err, "generate")).Kind)
		})
	}
}
