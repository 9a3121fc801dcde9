package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/models"
	"github.com/myrjola/ikigai/internal/sqlite"
)

type AccountRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewAccountRepository(db *sqlite.Database, logger *slog.Logger) *AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger,
	}
}

const accountColumns = `id, email, display_name, password_hash, role, created`

// Create inserts a new account. It returns models.ErrConflict when the email is already registered.
func (r *AccountRepository) Create(ctx context.Context, account models.Account) error {
	stmt := `INSERT INTO accounts (` + accountColumns + `)
VALUES (:id, :email, :display_name, :password_hash, :role, :created)`
	if _, err := r.db.ReadWrite.NamedExecContext(ctx, stmt, account); err != nil {
		if isConstraintViolation(err) {
			return errors.Wrap(models.ErrConflict, "account exists", slog.String("email", account.Email))
		}
		return errors.Wrap(err, "insert account")
	}
	return nil
}

func (r *AccountRepository) Get(ctx context.Context, id string) (models.Account, error) {
	var account models.Account
	stmt := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	if err := r.db.ReadOnly.GetContext(ctx, &account, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account, errors.Wrap(models.ErrNotFound, "account not found", slog.String("id", id))
		}
		return account, errors.Wrap(err, "select account", slog.String("id", id))
	}
	return account, nil
}

// GetByEmail looks up the account case-insensitively.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (models.Account, error) {
	var account models.Account
	stmt := `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`
	if err := r.db.ReadOnly.GetContext(ctx, &account, stmt, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account, errors.Wrap(models.ErrNotFound, "account not found")
		}
		return account, errors.Wrap(err, "select account by email")
	}
	return account, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	accounts := []models.Account{}
	stmt := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created, email`
	if err := r.db.ReadOnly.SelectContext(ctx, &accounts, stmt); err != nil {
		return nil, errors.Wrap(err, "select accounts")
	}
	return accounts, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete account", slog.String("id", id))
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errors.Wrap(models.ErrNotFound, "no rows affected", slog.String("id", id))
	}
	return nil
}
