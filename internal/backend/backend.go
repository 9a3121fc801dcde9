// Package backend selects the storage implementation once at startup.
//
// The hosted implementation is SQLite. The local implementation keeps JSON documents in a single file and is used
// when the hosted store is disabled or, with fallback enabled, cannot be opened.
package backend

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/localstore"
	"github.com/myrjola/ikigai/internal/models"
	"github.com/myrjola/ikigai/internal/repositories"
	"github.com/myrjola/ikigai/internal/sqlite"
)

const (
	KindSQLite = "sqlite"
	KindLocal  = "local"
)

var ErrUnknownKind = errors.NewSentinel("unknown backend")

type ProfileStore interface {
	Get(ctx context.Context, userID string) (models.Profile, error)
	Merge(ctx context.Context, userID string, patch models.ProfilePatch) (models.Profile, error)
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context) ([]models.Profile, error)
}

type AccountStore interface {
	Create(ctx context.Context, account models.Account) error
	Get(ctx context.Context, id string) (models.Account, error)
	GetByEmail(ctx context.Context, email string) (models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	Delete(ctx context.Context, id string) error
}

type MentorStore interface {
	List(ctx context.Context) ([]models.Mentor, error)
	Get(ctx context.Context, id string) (models.Mentor, error)
	Create(ctx context.Context, mentor models.Mentor) (models.Mentor, error)
	Update(ctx context.Context, mentor models.Mentor) error
	Delete(ctx context.Context, id string) error
}

type MessageStore interface {
	List(ctx context.Context) ([]models.ContactMessage, error)
	Create(ctx context.Context, message models.ContactMessage) (models.ContactMessage, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type Config struct {
	// Kind is either KindSQLite or KindLocal.
	Kind string
	// Fallback degrades to the local store when the SQLite database cannot be opened.
	Fallback  bool
	SQLiteURL string
	// DataDir holds the local store file. Empty keeps the local store in memory.
	DataDir string
	// OptimizeInterval is how often PRAGMA optimize and the expired session sweep run on the SQLite database.
	OptimizeInterval time.Duration
}

// Backend bundles the stores of one implementation.
type Backend struct {
	Kind     string
	Profiles ProfileStore
	Accounts AccountStore
	Mentors  MentorStore
	Messages MessageStore
	Sessions scs.Store

	db               *sqlite.Database
	optimizeInterval time.Duration
}

// Open opens the configured backend.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.Kind {
	case KindSQLite:
		b, err := openSQLite(ctx, cfg, logger)
		if err == nil {
			return b, nil
		}
		if !cfg.Fallback {
			return nil, err
		}
		logger.LogAttrs(ctx, slog.LevelWarn, "hosted store unavailable, falling back to local store",
			errors.SlogError(err))
		return openLocal(cfg, logger)
	case KindLocal:
		return openLocal(cfg, logger)
	default:
		return nil, errors.Wrap(ErrUnknownKind, "open backend", slog.String("kind", cfg.Kind))
	}
}

func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*Backend, error) {
	db, err := sqlite.NewDatabase(ctx, cfg.SQLiteURL, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite", slog.String("url", cfg.SQLiteURL))
	}
	// Expired sessions are swept by Maintain instead of the store's cleanup goroutine.
	sessionStore := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 0)
	return &Backend{
		Kind:             KindSQLite,
		Profiles:         repositories.NewProfileRepository(db, logger),
		Accounts:         repositories.NewAccountRepository(db, logger),
		Mentors:          repositories.NewMentorRepository(db, logger),
		Messages:         repositories.NewMessageRepository(db, logger),
		Sessions:         sessionStore,
		db:               db,
		optimizeInterval: cfg.OptimizeInterval,
	}, nil
}

func openLocal(cfg Config, logger *slog.Logger) (*Backend, error) {
	path := ""
	if cfg.DataDir != "" {
		path = filepath.Join(cfg.DataDir, "ikigai.json")
	}
	store, err := localstore.Open(path, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open local store")
	}
	return &Backend{
		Kind:             KindLocal,
		Profiles:         localstore.NewProfileStore(store),
		Accounts:         localstore.NewAccountStore(store),
		Mentors:          localstore.NewMentorStore(store),
		Messages:         localstore.NewMessageStore(store),
		Sessions:         localstore.NewSessionStore(store),
		db:               nil,
		optimizeInterval: 0,
	}, nil
}

// Maintain runs periodic database maintenance until ctx is cancelled.
func (b *Backend) Maintain(ctx context.Context) {
	if b.db == nil || b.optimizeInterval <= 0 {
		<-ctx.Done()
		return
	}
	b.db.StartDatabaseOptimizer(ctx, b.optimizeInterval)
}

// Ping checks that the backend can serve reads.
func (b *Backend) Ping(ctx context.Context) error {
	if b.db == nil {
		return nil
	}
	if err := b.db.ReadOnly.PingContext(ctx); err != nil {
		return errors.Wrap(err, "ping database")
	}
	return nil
}

func (b *Backend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
