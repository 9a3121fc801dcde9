package localstore

import (
	"context"

	"github.com/myrjola/ikigai/internal/models"
)

type ProfileStore struct {
	store *Store
}

func NewProfileStore(store *Store) *ProfileStore {
	return &ProfileStore{store: store}
}

func (s *ProfileStore) Get(ctx context.Context, userID string) (models.Profile, error) {
	var profile models.Profile
	err := s.store.View(ctx, func(tx *Tx) error {
		return tx.Get(collectionProfiles, userID, &profile)
	})
	profile.UserID = userID
	return profile, err
}

// Merge applies patch to the stored profile, creating it when missing.
func (s *ProfileStore) Merge(ctx context.Context, userID string, patch models.ProfilePatch) (models.Profile, error) {
	profile := models.Profile{UserID: userID} //nolint:exhaustruct // created from the patch when missing.
	err := s.store.Update(ctx, func(tx *Tx) error {
		if tx.Has(collectionProfiles, userID) {
			if err := tx.Get(collectionProfiles, userID, &profile); err != nil {
				return err
			}
		}
		profile.UserID = userID
		profile = profile.Apply(patch)
		return tx.Put(collectionProfiles, userID, profile)
	})
	return profile, err
}

func (s *ProfileStore) Delete(ctx context.Context, userID string) error {
	return s.store.Update(ctx, func(tx *Tx) error {
		return tx.Delete(collectionProfiles, userID)
	})
}

func (s *ProfileStore) List(ctx context.Context) ([]models.Profile, error) {
	profiles := []models.Profile{}
	err := s.store.View(ctx, func(tx *Tx) error {
		for _, key := range tx.Keys(collectionProfiles) {
			var profile models.Profile
			if err := tx.Get(collectionProfiles, key, &profile); err != nil {
				return err
			}
			profile.UserID = key
			profiles = append(profiles, profile)
		}
		return nil
	})
	return profiles, err
}
