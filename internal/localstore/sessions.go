package localstore

import (
	"context"
	"time"
)

type sessionRecord struct {
	Data   []byte    `json:"data"`
	Expiry time.Time `json:"expiry"`
}

// SessionStore implements the scs.Store interface on top of the local store.
type SessionStore struct {
	store *Store
	now   func() time.Time
}

func NewSessionStore(store *Store) *SessionStore {
	return &SessionStore{store: store, now: time.Now}
}

// Find returns the data for the session token. Expired sessions are reported as not found.
func (s *SessionStore) Find(token string) ([]byte, bool, error) {
	var (
		record sessionRecord
		found  bool
	)
	err := s.store.View(context.Background(), func(tx *Tx) error {
		if !tx.Has(collectionSessions, token) {
			return nil
		}
		if err := tx.Get(collectionSessions, token, &record); err != nil {
			return err
		}
		found = s.now().Before(record.Expiry)
		return nil
	})
	if err != nil || !found {
		return nil, false, err
	}
	return record.Data, true, nil
}

// Commit stores the session data and drops the sessions that have expired meanwhile.
func (s *SessionStore) Commit(token string, b []byte, expiry time.Time) error {
	now := s.now()
	return s.store.Update(context.Background(), func(tx *Tx) error {
		for _, key := range tx.Keys(collectionSessions) {
			var record sessionRecord
			if err := tx.Get(collectionSessions, key, &record); err != nil || !now.Before(record.Expiry) {
				if err = tx.Delete(collectionSessions, key); err != nil {
					return err
				}
			}
		}
		return tx.Put(collectionSessions, token, sessionRecord{Data: b, Expiry: expiry.UTC()})
	})
}

func (s *SessionStore) Delete(token string) error {
	return s.store.Update(context.Background(), func(tx *Tx) error {
		if !tx.Has(collectionSessions, token) {
			return nil
		}
		return tx.Delete(collectionSessions, token)
	})
}
