package admin

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/ikigai/internal/backend"
	"github.com/myrjola/ikigai/internal/envstruct"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/logging"
	"github.com/myrjola/ikigai/internal/models"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "admin",
	Title: "Administration",
}

func init() {
	Admin.AddCommand(listUsers, deleteUser)
}

type storeConfig struct {
	Backend   string `env:"IKIGAI_BACKEND" envDefault:"sqlite"`
	SQLiteURL string `env:"IKIGAI_SQLITE_URL" envDefault:"./ikigai.sqlite3"`
	DataDir   string `env:"IKIGAI_DATA_DIR" envDefault:""`
}

var Admin = &cobra.Command{
	Use:     "admin",
	GroupID: "admin",
	Short:   "Manage accounts in the configured store",
}

// openBackend opens the store configured with the same variables as the web server. It never falls back so that
// the command does not silently act on an empty local store.
func openBackend(ctx context.Context, cmd *cobra.Command) (*backend.Backend, error) {
	var cfg storeConfig
	if err := envstruct.Populate(&cfg, os.LookupEnv); err != nil {
		return nil, errors.Wrap(err, "populate config")
	}
	return backend.Open(ctx, backend.Config{
		Kind:             cfg.Backend,
		Fallback:         false,
		SQLiteURL:        cfg.SQLiteURL,
		DataDir:          cfg.DataDir,
		OptimizeInterval: 0,
	}, logging.NewLogger(cmd.ErrOrStderr(), slog.LevelInfo))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

var listUsers = &cobra.Command{
	Use:   "list-users",
	Short: "List the registered accounts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := commandContext(cmd)
		b, err := openBackend(ctx, cmd)
		if err != nil {
			return err
		}
		defer func() {
			_ = b.Close()
		}()
		accounts, err := b.Accounts.List(ctx)
		if err != nil {
			return err
		}
		for _, a := range accounts {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", a.ID, a.Email, a.Role,
				a.Created.Format(time.DateOnly))
		}
		return nil
	},
}

var deleteUser = &cobra.Command{
	Use:   "delete-user [email]",
	Short: "Delete an account and its profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		b, err := openBackend(ctx, cmd)
		if err != nil {
			return err
		}
		defer func() {
			_ = b.Close()
		}()
		account, err := b.Accounts.GetByEmail(ctx, args[0])
		if err != nil {
			return errors.Wrap(err, "find account", slog.String("email", args[0]))
		}
		if err = b.Accounts.Delete(ctx, account.ID); err != nil {
			return err
		}
		if err = b.Profiles.Delete(ctx, account.ID); err != nil && !errors.Is(err, models.ErrNotFound) {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (%s)\n", account.Email, account.ID)
		return nil
	},
}
