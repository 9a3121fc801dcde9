package localstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/ikigai/internal/models"
)

type MessageStore struct {
	store *Store
}

func NewMessageStore(store *Store) *MessageStore {
	return &MessageStore{store: store}
}

// List returns the newest messages first.
func (s *MessageStore) List(ctx context.Context) ([]models.ContactMessage, error) {
	messages := []models.ContactMessage{}
	err := s.store.View(ctx, func(tx *Tx) error {
		for _, key := range tx.Keys(collectionMessages) {
			var message models.ContactMessage
			if err := tx.Get(collectionMessages, key, &message); err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Created.After(messages[j].Created)
	})
	return messages, err
}

func (s *MessageStore) Create(ctx context.Context, message models.ContactMessage) (models.ContactMessage, error) {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.Created.IsZero() {
		message.Created = time.Now()
	}
	message.Created = message.Created.UTC()
	err := s.store.Update(ctx, func(tx *Tx) error {
		return tx.Put(collectionMessages, message.ID, message)
	})
	return message, err
}

func (s *MessageStore) MarkRead(ctx context.Context, id string) error {
	return s.store.Update(ctx, func(tx *Tx) error {
		var message models.ContactMessage
		if err := tx.Get(collectionMessages, id, &message); err != nil {
			return err
		}
		message.Read = true
		return tx.Put(collectionMessages, id, message)
	})
}

func (s *MessageStore) Delete(ctx context.Context, id string) error {
	return s.store.Update(ctx, func(tx *Tx) error {
		return tx.Delete(collectionMessages, id)
	})
}
