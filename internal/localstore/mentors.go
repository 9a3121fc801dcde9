package localstore

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/models"
)

type MentorStore struct {
	store *Store
}

func NewMentorStore(store *Store) *MentorStore {
	return &MentorStore{store: store}
}

// List returns the roster sorted by ordering and name.
func (s *MentorStore) List(ctx context.Context) ([]models.Mentor, error) {
	mentors := []models.Mentor{}
	err := s.store.View(ctx, func(tx *Tx) error {
		for _, key := range tx.Keys(collectionMentors) {
			var mentor models.Mentor
			if err := tx.Get(collectionMentors, key, &mentor); err != nil {
				return err
			}
			mentors = append(mentors, mentor)
		}
		return nil
	})
	sort.SliceStable(mentors, func(i, j int) bool {
		if mentors[i].Ordering == mentors[j].Ordering {
			return mentors[i].Name < mentors[j].Name
		}
		return mentors[i].Ordering < mentors[j].Ordering
	})
	return mentors, err
}

func (s *MentorStore) Get(ctx context.Context, id string) (models.Mentor, error) {
	var mentor models.Mentor
	err := s.store.View(ctx, func(tx *Tx) error {
		return tx.Get(collectionMentors, id, &mentor)
	})
	return mentor, err
}

func (s *MentorStore) Create(ctx context.Context, mentor models.Mentor) (models.Mentor, error) {
	if mentor.ID == "" {
		mentor.ID = uuid.NewString()
	}
	err := s.store.Update(ctx, func(tx *Tx) error {
		if tx.Has(collectionMentors, mentor.ID) {
			return errors.Wrap(models.ErrConflict, "mentor exists", slog.String("id", mentor.ID))
		}
		return tx.Put(collectionMentors, mentor.ID, mentor)
	})
	return mentor, err
}

func (s *MentorStore) Update(ctx context.Context, mentor models.Mentor) error {
	return s.store.Update(ctx, func(tx *Tx) error {
		if !tx.Has(collectionMentors, mentor.ID) {
			return errors.Wrap(models.ErrNotFound, "mentor not found", slog.String("id", mentor.ID))
		}
		return tx.Put(collectionMentors, mentor.ID, mentor)
	})
}

func (s *MentorStore) Delete(ctx context.Context, id string) error {
	return s.store.Update(ctx, func(tx *Tx) error {
		return tx.Delete(collectionMentors, id)
	})
}
