// Package profile merges module results into user profiles.
//
// Merges update the in-memory profile immediately and are persisted in order by a single writer goroutine. A
// failed write is logged and reported as a warning on the next Load instead of failing the merge.
package profile

import (
	"context"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/metrics"
	"github.com/myrjola/ikigai/internal/models"
)

var ErrClosed = errors.NewSentinel("aggregator closed")

// WarningNotSaved is reported to the user after a merge could not be persisted.
const WarningNotSaved = "Some of your latest results could not be saved yet. They are shown now but may be lost if the service restarts."

type Store interface {
	Get(ctx context.Context, userID string) (models.Profile, error)
	Merge(ctx context.Context, userID string, patch models.ProfilePatch) (models.Profile, error)
	Delete(ctx context.Context, userID string) error
}

type Options struct {
	CacheSize int
	QueueSize int
	Metrics   *metrics.Metrics
}

type job struct {
	userID string
	patch  models.ProfilePatch
}

type Aggregator struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	// mu serialises merges so that the cached profile is always the latest merge result.
	mu     sync.Mutex
	cache  *lru.Cache[string, models.Profile]
	closed bool

	// stateMu guards the bookkeeping shared with the writer goroutine.
	stateMu  sync.Mutex
	pending  map[string]int
	warnings map[string][]string

	queue   chan job
	wg      sync.WaitGroup
	stopped chan struct{}
}

func New(store Store, opts Options, logger *slog.Logger) (*Aggregator, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	cache, err := lru.New[string, models.Profile](opts.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create profile cache")
	}
	a := &Aggregator{
		store:    store,
		logger:   logger,
		metrics:  opts.Metrics,
		mu:       sync.Mutex{},
		cache:    cache,
		closed:   false,
		stateMu:  sync.Mutex{},
		pending:  map[string]int{},
		warnings: map[string][]string{},
		queue:    make(chan job, opts.QueueSize),
		wg:       sync.WaitGroup{},
		stopped:  make(chan struct{}),
	}
	go a.write()
	return a, nil
}

// Load returns the profile of userID and the warnings collected since the previous Load.
func (a *Aggregator) Load(ctx context.Context, userID string) (models.Profile, []string, error) {
	if profile, ok := a.cache.Get(userID); ok {
		return profile, a.popWarnings(userID), nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	profile, err := a.loadLocked(ctx, userID)
	if err != nil {
		return profile, nil, err
	}
	a.cache.Add(userID, profile)
	return profile, a.popWarnings(userID), nil
}

// loadLocked reads through to the store. Queued writes of an evicted profile are flushed first so the store is
// not older than what the user has already seen.
func (a *Aggregator) loadLocked(ctx context.Context, userID string) (models.Profile, error) {
	if profile, ok := a.cache.Get(userID); ok {
		return profile, nil
	}
	if a.hasPending(userID) {
		a.wg.Wait()
	}
	profile, err := a.store.Get(ctx, userID)
	if err != nil {
		return profile, errors.Wrap(err, "get profile", slog.String("userID", userID))
	}
	return profile, nil
}

// MergeAndSave applies patch to the in-memory profile and queues the same patch for persistence.
//
// Present fields overwrite the previous values wholesale; absent fields are preserved. The returned profile
// reflects the merge even if persisting it later fails.
func (a *Aggregator) MergeAndSave(ctx context.Context, userID string, patch models.ProfilePatch) (models.Profile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return models.Profile{}, ErrClosed //nolint:exhaustruct // zero value.
	}

	current, err := a.loadLocked(ctx, userID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		current = models.Profile{UserID: userID} //nolint:exhaustruct // created by the merge.
	case err != nil:
		return current, err
	}
	next := current.Apply(patch)
	a.cache.Add(userID, next)

	a.stateMu.Lock()
	a.pending[userID]++
	queued := len(a.queue) + 1
	a.stateMu.Unlock()
	a.metrics.SetPersistQueueLength(queued)

	a.wg.Add(1)
	a.queue <- job{userID: userID, patch: patch}
	return next, nil
}

// Delete removes the profile from memory and from the store after the queued writes have landed.
func (a *Aggregator) Delete(ctx context.Context, userID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.wg.Wait()
	a.cache.Remove(userID)
	a.stateMu.Lock()
	delete(a.warnings, userID)
	a.stateMu.Unlock()
	if err := a.store.Delete(ctx, userID); err != nil {
		return errors.Wrap(err, "delete profile", slog.String("userID", userID))
	}
	return nil
}

// Flush blocks until every queued merge has been written or has failed.
func (a *Aggregator) Flush() {
	// Holding mu keeps new merges from calling wg.Add while we wait.
	a.mu.Lock()
	defer a.mu.Unlock()
	a.wg.Wait()
}

// Close flushes the queue and stops the writer. Later merges fail with ErrClosed.
func (a *Aggregator) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()
	<-a.stopped
}

func (a *Aggregator) write() {
	defer close(a.stopped)
	for j := range a.queue {
		a.persist(j)
	}
}

func (a *Aggregator) persist(j job) {
	defer a.wg.Done()
	// Writes run to completion regardless of the request that queued them.
	ctx := context.Background()
	_, err := a.store.Merge(ctx, j.userID, j.patch)

	a.stateMu.Lock()
	a.pending[j.userID]--
	if a.pending[j.userID] <= 0 {
		delete(a.pending, j.userID)
	}
	if err != nil {
		warnings := a.warnings[j.userID]
		if len(warnings) == 0 {
			a.warnings[j.userID] = append(warnings, WarningNotSaved)
		}
	}
	queued := len(a.queue)
	a.stateMu.Unlock()
	a.metrics.SetPersistQueueLength(queued)

	if err != nil {
		a.metrics.PersistFailed()
		a.logger.LogAttrs(ctx, slog.LevelError, "failed to persist profile merge",
			slog.String("userID", j.userID), errors.SlogError(err))
	}
}

func (a *Aggregator) hasPending(userID string) bool {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.pending[userID] > 0
}

func (a *Aggregator) popWarnings(userID string) []string {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	warnings := a.warnings[userID]
	delete(a.warnings, userID)
	return warnings
}
