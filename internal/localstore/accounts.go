package localstore

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/models"
)

type AccountStore struct {
	store *Store
}

func NewAccountStore(store *Store) *AccountStore {
	return &AccountStore{store: store}
}

// Create inserts a new account. It returns models.ErrConflict when the email is already registered.
func (s *AccountStore) Create(ctx context.Context, account models.Account) error {
	return s.store.Update(ctx, func(tx *Tx) error {
		if tx.Has(collectionAccounts, account.ID) {
			return errors.Wrap(models.ErrConflict, "account exists", slog.String("id", account.ID))
		}
		if _, err := findByEmail(tx, account.Email); err == nil {
			return errors.Wrap(models.ErrConflict, "account exists", slog.String("email", account.Email))
		}
		account.Created = account.Created.UTC()
		return tx.Put(collectionAccounts, account.ID, account)
	})
}

func (s *AccountStore) Get(ctx context.Context, id string) (models.Account, error) {
	var account models.Account
	err := s.store.View(ctx, func(tx *Tx) error {
		return tx.Get(collectionAccounts, id, &account)
	})
	return account, err
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (models.Account, error) {
	var account models.Account
	err := s.store.View(ctx, func(tx *Tx) error {
		var err error
		account, err = findByEmail(tx, email)
		return err
	})
	return account, err
}

func (s *AccountStore) List(ctx context.Context) ([]models.Account, error) {
	accounts := []models.Account{}
	err := s.store.View(ctx, func(tx *Tx) error {
		for _, key := range tx.Keys(collectionAccounts) {
			var account models.Account
			if err := tx.Get(collectionAccounts, key, &account); err != nil {
				return err
			}
			accounts = append(accounts, account)
		}
		return nil
	})
	sort.SliceStable(accounts, func(i, j int) bool {
		if accounts[i].Created.Equal(accounts[j].Created) {
			return accounts[i].Email < accounts[j].Email
		}
		return accounts[i].Created.Before(accounts[j].Created)
	})
	return accounts, err
}

func (s *AccountStore) Delete(ctx context.Context, id string) error {
	return s.store.Update(ctx, func(tx *Tx) error {
		return tx.Delete(collectionAccounts, id)
	})
}

// findByEmail scans the accounts, matching the email case-insensitively like the SQLite store does.
func findByEmail(tx *Tx, email string) (models.Account, error) {
	for _, key := range tx.Keys(collectionAccounts) {
		var account models.Account
		if err := tx.Get(collectionAccounts, key, &account); err != nil {
			return account, err
		}
		if strings.EqualFold(account.Email, email) {
			return account, nil
		}
	}
	return models.Account{}, errors.Wrap(models.ErrNotFound, "account not found") //nolint:exhaustruct // zero value.
}
