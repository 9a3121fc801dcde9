package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/myrjola/ikigai/internal/ai"
	"github.com/myrjola/ikigai/internal/backend"
	"github.com/myrjola/ikigai/internal/envstruct"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/identity"
	"github.com/myrjola/ikigai/internal/logging"
	"github.com/myrjola/ikigai/internal/metrics"
	"github.com/myrjola/ikigai/internal/modules"
	"github.com/myrjola/ikigai/internal/pprofserver"
	"github.com/myrjola/ikigai/internal/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

type application struct {
	logger         *slog.Logger
	cfg            config
	sessionManager *scs.SessionManager
	backend        *backend.Backend
	identity       *identity.Service
	profiles       *profile.Aggregator
	modules        *modules.Service
	aiClient       *ai.Client
	registry       *prometheus.Registry
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"IKIGAI_ADDR" envDefault:"localhost:4000"`
	// Backend is sqlite or local.
	Backend string `env:"IKIGAI_BACKEND" envDefault:"sqlite"`
	// BackendFallback degrades to the local store when the SQLite database cannot be opened.
	BackendFallback bool `env:"IKIGAI_BACKEND_FALLBACK" envDefault:"true"`
	// SQLiteURL is the path to the SQLite database. ":memory:" gives a fresh in-memory database.
	SQLiteURL string `env:"IKIGAI_SQLITE_URL" envDefault:"./ikigai.sqlite3"`
	// DataDir holds the local store. Empty keeps it in memory.
	DataDir string `env:"IKIGAI_DATA_DIR" envDefault:""`
	// AIProvider is gemini or openai. Without an API key the AI features report a configuration error.
	AIProvider        string   `env:"IKIGAI_AI_PROVIDER" envDefault:"gemini"`
	AIAPIKey          string   `env:"IKIGAI_AI_API_KEY" envDefault:""`
	AIModel           string   `env:"IKIGAI_AI_MODEL" envDefault:""`
	AIBaseURL         string   `env:"IKIGAI_AI_BASE_URL" envDefault:""`
	AITemperature     float32  `env:"IKIGAI_AI_TEMPERATURE" envDefault:"0.7"`
	AIMaxOutputTokens int32    `env:"IKIGAI_AI_MAX_OUTPUT_TOKENS" envDefault:"2048"`
	AIRepairJSON      bool     `env:"IKIGAI_AI_REPAIR_JSON" envDefault:"false"`
	AdminEmails       []string `env:"IKIGAI_ADMIN_EMAILS" envDefault:""`
	ProfileCacheSize  int      `env:"IKIGAI_PROFILE_CACHE_SIZE" envDefault:"1024"`
	// PprofAddr enables the pprof server when set. Keep it on loopback, e.g. localhost:6060.
	PprofAddr       string        `env:"IKIGAI_PPROF_ADDR" envDefault:""`
	RequestTimeout  time.Duration `env:"IKIGAI_REQUEST_TIMEOUT" envDefault:"90s"`
	SessionLifetime time.Duration `env:"IKIGAI_SESSION_LIFETIME" envDefault:"336h"`
	// BcryptCost is only lowered in tests.
	BcryptCost int `env:"IKIGAI_BCRYPT_COST" envDefault:"10"`
}

func newApplication(ctx context.Context, logger *slog.Logger, cfg config, aiBackend ai.Backend) (*application, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})) //nolint:exhaustruct // defaults.
	m, err := metrics.New(registry)
	if err != nil {
		return nil, errors.Wrap(err, "new metrics")
	}

	b, err := backend.Open(ctx, backend.Config{
		Kind:             cfg.Backend,
		Fallback:         cfg.BackendFallback,
		SQLiteURL:        cfg.SQLiteURL,
		DataDir:          cfg.DataDir,
		OptimizeInterval: time.Hour,
	}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open backend")
	}

	profiles, err := profile.New(b.Profiles, profile.Options{
		CacheSize: cfg.ProfileCacheSize,
		QueueSize: 0,
		Metrics:   m,
	}, logger)
	if err != nil {
		return nil, errors.Join(errors.Wrap(err, "new profile aggregator"), b.Close())
	}

	sessionManager := scs.New()
	sessionManager.Store = b.Sessions
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	aiClient := ai.NewClient(aiBackend, ai.Options{
		Provider:        cfg.AIProvider,
		Temperature:     cfg.AITemperature,
		MaxOutputTokens: cfg.AIMaxOutputTokens,
		RepairJSON:      cfg.AIRepairJSON,
		Metrics:         m,
	}, logger)
	if !aiClient.Enabled() {
		logger.LogAttrs(ctx, slog.LevelWarn, "AI completions disabled, set IKIGAI_AI_API_KEY to enable them")
	}

	return &application{
		logger:         logger,
		cfg:            cfg,
		sessionManager: sessionManager,
		backend:        b,
		identity: identity.New(b.Accounts, profiles, sessionManager, logger, identity.Options{
			BcryptCost:  cfg.BcryptCost,
			AdminEmails: cfg.AdminEmails,
		}),
		profiles: profiles,
		modules:  modules.NewService(aiClient, profiles, logger, m),
		aiClient: aiClient,
		registry: registry,
	}, nil
}

// close flushes pending profile writes before the stores are closed.
func (app *application) close() error {
	app.profiles.Close()
	return app.backend.Close()
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	aiBackend, err := ai.NewBackend(ctx, ai.ProviderConfig{
		Provider: cfg.AIProvider,
		APIKey:   cfg.AIAPIKey,
		Model:    cfg.AIModel,
		BaseURL:  cfg.AIBaseURL,
	})
	if err != nil {
		return errors.Wrap(err, "new AI backend")
	}
	app, err := newApplication(ctx, logger, cfg, aiBackend)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close application", errors.SlogError(closeErr))
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.configureAndStartServer(ctx, cfg.Addr)
	})
	g.Go(func() error {
		app.backend.Maintain(ctx)
		return nil
	})
	if cfg.PprofAddr != "" {
		g.Go(func() error {
			return pprofserver.Serve(ctx, cfg.PprofAddr, logger)
		})
	}
	if err = g.Wait(); err != nil {
		return errors.Wrap(err, "run")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is fine, the environment is used as is.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level, ok := os.LookupEnv("IKIGAI_LOG_LEVEL")
	if !ok {
		level = "info"
	}
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       logging.ParseLevel(level),
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
