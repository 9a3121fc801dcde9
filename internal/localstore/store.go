// Package localstore is the local fallback backend: a key-value store of JSON documents grouped in collections
// and persisted to a single file.
package localstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/models"
)

const (
	collectionAccounts = "accounts"
	collectionProfiles = "profiles"
	collectionMentors  = "mentors"
	collectionMessages = "messages"
	collectionSessions = "sessions"
)

type collections map[string]map[string]json.RawMessage

// Store holds all documents in memory and rewrites the backing file after every committed update.
//
// The file is replaced atomically so a crash never leaves a half-written store behind. An empty path keeps the
// store in memory only.
type Store struct {
	mu     sync.RWMutex
	path   string
	data   collections
	logger *slog.Logger
}

// Open loads the store from path, creating the parent directory when needed.
func Open(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		mu:     sync.RWMutex{},
		path:   path,
		data:   collections{},
		logger: logger,
	}
	if path == "" {
		return s, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil { //nolint:mnd // owner only.
		return nil, errors.Wrap(err, "create data directory", slog.String("path", path))
	}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, errors.Wrap(err, "read store", slog.String("path", path))
	}
	if err = json.Unmarshal(raw, &s.data); err != nil {
		return nil, errors.Wrap(err, "decode store", slog.String("path", path))
	}
	if s.data == nil {
		s.data = collections{}
	}
	return s, nil
}

// Tx is a view of the store within View or Update. Writes are buffered until Update returns without error.
type Tx struct {
	base     collections
	changes  map[string]map[string]json.RawMessage
	writable bool
}

// Get decodes the document into v. It returns models.ErrNotFound when the key is missing.
func (tx *Tx) Get(collection, key string, v any) error {
	raw, ok := tx.lookup(collection, key)
	if !ok {
		return errors.Wrap(models.ErrNotFound, "document not found",
			slog.String("collection", collection), slog.String("key", key))
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrap(err, "decode document", slog.String("collection", collection), slog.String("key", key))
	}
	return nil
}

// Has reports whether key exists in the collection.
func (tx *Tx) Has(collection, key string) bool {
	_, ok := tx.lookup(collection, key)
	return ok
}

func (tx *Tx) Put(collection, key string, v any) error {
	if !tx.writable {
		return errors.New("read-only transaction")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode document", slog.String("collection", collection), slog.String("key", key))
	}
	tx.change(collection)[key] = raw
	return nil
}

// Delete removes the key. It returns models.ErrNotFound when the key is missing.
func (tx *Tx) Delete(collection, key string) error {
	if !tx.writable {
		return errors.New("read-only transaction")
	}
	if !tx.Has(collection, key) {
		return errors.Wrap(models.ErrNotFound, "document not found",
			slog.String("collection", collection), slog.String("key", key))
	}
	tx.change(collection)[key] = nil
	return nil
}

// Keys returns the keys of the collection in ascending order.
func (tx *Tx) Keys(collection string) []string {
	seen := map[string]bool{}
	for key := range tx.base[collection] {
		seen[key] = true
	}
	for key, raw := range tx.changes[collection] {
		seen[key] = raw != nil
	}
	keys := make([]string, 0, len(seen))
	for key, present := range seen {
		if present {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (tx *Tx) lookup(collection, key string) (json.RawMessage, bool) {
	if changed, ok := tx.changes[collection]; ok {
		if raw, ok := changed[key]; ok {
			return raw, raw != nil
		}
	}
	raw, ok := tx.base[collection][key]
	return raw, ok
}

func (tx *Tx) change(collection string) map[string]json.RawMessage {
	changed, ok := tx.changes[collection]
	if !ok {
		changed = map[string]json.RawMessage{}
		tx.changes[collection] = changed
	}
	return changed
}

// View runs fn with a read-only transaction.
func (s *Store) View(_ context.Context, fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{base: s.data, changes: nil, writable: false})
}

// Update runs fn with a writable transaction. The changes are committed and persisted only when fn succeeds.
func (s *Store) Update(_ context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{base: s.data, changes: map[string]map[string]json.RawMessage{}, writable: true}
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.changes) == 0 {
		return nil
	}

	next := make(collections, len(s.data)+len(tx.changes))
	for name, docs := range s.data {
		next[name] = docs
	}
	for name, changed := range tx.changes {
		docs := make(map[string]json.RawMessage, len(s.data[name])+len(changed))
		for key, raw := range s.data[name] {
			docs[key] = raw
		}
		for key, raw := range changed {
			if raw == nil {
				delete(docs, key)
				continue
			}
			docs[key] = raw
		}
		next[name] = docs
	}

	if err := s.persist(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

func (s *Store) persist(data collections) error {
	if s.path == "" {
		return nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "encode store")
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temporary file")
	}
	defer func() {
		// Removing fails harmlessly after a successful rename.
		_ = os.Remove(tmp.Name())
	}()
	if _, err = tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write temporary file")
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "sync temporary file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close temporary file")
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "replace store file", slog.String("path", s.path))
	}
	return nil
}
