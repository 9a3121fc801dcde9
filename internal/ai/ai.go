// Package ai obtains structured JSON results from a generative text backend.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/metrics"
)

// Request is one structured-output completion request.
type Request struct {
	SystemInstruction string
	Content           string
	Temperature       float32
	MaxOutputTokens   int32
}

// Backend sends a request to a provider and returns the raw response text.
type Backend interface {
	Generate(ctx context.Context, req Request) (string, error)
}

const (
	DefaultTemperature     float32 = 0.7
	DefaultMaxOutputTokens int32   = 2048
)

type Options struct {
	// Provider labels metrics and logs.
	Provider        string
	Temperature     float32
	MaxOutputTokens int32
	// RepairJSON enables a jsonrepair pass after the fence and brace cleanup fails.
	RepairJSON bool
	Metrics    *metrics.Metrics
}

// Client is safe for concurrent use. A Client without a backend is disabled and fails every call with KindConfig.
type Client struct {
	backend Backend
	opts    Options
	logger  *slog.Logger
}

func NewClient(backend Backend, opts Options, logger *slog.Logger) *Client {
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = DefaultMaxOutputTokens
	}
	return &Client{
		backend: backend,
		opts:    opts,
		logger:  logger,
	}
}

// Enabled reports whether a backend is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.backend != nil
}

// Complete asks the backend for a JSON object. Every failure is returned as *Error and nothing is retried.
func (c *Client) Complete(ctx context.Context, systemInstruction, userContent string) (_ json.RawMessage, err error) {
	if !c.Enabled() {
		return nil, NewError(KindConfig, ErrNoCredential)
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = NewError(KindNetworkFailure, errors.New("backend panicked", slog.String("panic", fmt.Sprint(r))))
		}
		outcome := "ok"
		if err != nil {
			aiErr := Classify(err)
			err = aiErr
			outcome = string(aiErr.Kind)
			c.logger.LogAttrs(ctx, slog.LevelWarn, "AI completion failed",
				slog.String("provider", c.opts.Provider),
				slog.String("kind", outcome),
				errors.SlogError(aiErr.Unwrap()))
		}
		c.opts.Metrics.ObserveAICompletion(c.opts.Provider, outcome, time.Since(start))
	}()

	text, err := c.backend.Generate(ctx, Request{
		SystemInstruction: systemInstruction,
		Content:           userContent,
		Temperature:       c.opts.Temperature,
		MaxOutputTokens:   c.opts.MaxOutputTokens,
	})
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}

	obj, err := Decode(text, c.opts.RepairJSON)
	if err != nil {
		return nil, err
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "AI completion succeeded",
		slog.String("provider", c.opts.Provider),
		slog.Duration("duration", time.Since(start)),
		slog.Int("bytes", len(obj)))
	return obj, nil
}
