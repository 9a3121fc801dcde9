// Package aitest provides a deterministic ai.Backend for tests.
package aitest

import (
	"context"
	"sync"

	"github.com/myrjola/ikigai/internal/ai"
)

// Backend replays canned responses in order, repeating the last one. Func takes precedence when set.
type Backend struct {
	Func func(ctx context.Context, req ai.Request) (string, error)

	mu        sync.Mutex
	responses []string
	err       error
	requests  []ai.Request
}

// NewBackend returns a backend answering with the given responses.
func NewBackend(responses ...string) *Backend {
	return &Backend{responses: responses} //nolint:exhaustruct // zero values are fine.
}

// NewFailingBackend returns a backend that always fails with err.
func NewFailingBackend(err error) *Backend {
	return &Backend{err: err} //nolint:exhaustruct // zero values are fine.
}

func (b *Backend) Generate(ctx context.Context, req ai.Request) (string, error) {
	b.mu.Lock()
	b.requests = append(b.requests, req)
	fn := b.Func
	var response string
	if len(b.responses) > 0 {
		response = b.responses[0]
		if len(b.responses) > 1 {
			b.responses = b.responses[1:]
		}
	}
	err := b.err
	b.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return "", err
	}
	return response, nil
}

// Requests returns a copy of the requests received so far.
func (b *Backend) Requests() []ai.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ai.Request(nil), b.requests...)
}
