package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/myrjola/ikigai/internal/e2etest"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/logging"
	"github.com/myrjola/ikigai/internal/random"
)

// TestAuth registers a throwaway account, logs out and in again and reads the profile.
func TestAuth(ctx context.Context, client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	name, err := random.Letters(12) //nolint:mnd // unique enough for a smoke test account.
	if err != nil {
		return errors.Wrap(err, "random name")
	}
	email := "smoketest+" + name + "@example.com"
	password := name

	if _, err = client.Register(ctx, email, password, "Smoke test"); err != nil {
		return errors.Wrap(err, "register user")
	}
	if err = client.Logout(ctx); err != nil {
		return errors.Wrap(err, "logout user")
	}
	if _, err = client.Login(ctx, email, password); err != nil {
		return errors.Wrap(err, "login user")
	}
	var profile struct {
		Progress int `json:"progress"`
	}
	if err = client.Do(ctx, http.MethodGet, "/api/profile", nil, &profile); err != nil {
		return errors.Wrap(err, "get profile")
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		url      = "https://" + hostname
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestAuth(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing auth", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
