package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/models"
	"github.com/myrjola/ikigai/internal/sqlite"
)

// ProfileRepository stores each profile as one JSON document keyed by user id.
type ProfileRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewProfileRepository(db *sqlite.Database, logger *slog.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (models.Profile, error) {
	var document string
	if err := r.db.ReadOnly.GetContext(ctx, &document,
		`SELECT document FROM profiles WHERE user_id = ?`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, errors.Wrap(models.ErrNotFound, "profile not found", //nolint:exhaustruct // zero value.
				slog.String("userID", userID))
		}
		return models.Profile{}, errors.Wrap(err, "select profile", slog.String("userID", userID)) //nolint:exhaustruct // zero value.
	}
	return decodeProfile(userID, document)
}

// Merge applies patch to the stored profile and upserts the result in a single immediate transaction.
// A missing profile is created from the patch.
func (r *ProfileRepository) Merge(ctx context.Context, userID string, patch models.ProfilePatch) (_ models.Profile, err error) {
	var profile models.Profile
	tx, err := r.db.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return profile, errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, errors.Wrap(rollbackErr, "rollback"))
		}
	}()

	var document string
	err = tx.GetContext(ctx, &document, `SELECT document FROM profiles WHERE user_id = ?`, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		profile = models.Profile{UserID: userID} //nolint:exhaustruct // created from the patch.
	case err != nil:
		return profile, errors.Wrap(err, "select profile", slog.String("userID", userID))
	default:
		if profile, err = decodeProfile(userID, document); err != nil {
			return profile, err
		}
	}

	profile = profile.Apply(patch)
	var encoded []byte
	if encoded, err = json.Marshal(profile); err != nil {
		return profile, errors.Wrap(err, "encode profile")
	}
	stmt := `INSERT INTO profiles (user_id, document, updated) VALUES (?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET document = excluded.document, updated = excluded.updated`
	if _, err = tx.ExecContext(ctx, stmt, userID, string(encoded), time.Now().UTC()); err != nil {
		return profile, errors.Wrap(err, "upsert profile", slog.String("userID", userID))
	}
	if err = tx.Commit(); err != nil {
		return profile, errors.Wrap(err, "commit")
	}
	return profile, nil
}

func (r *ProfileRepository) Delete(ctx context.Context, userID string) error {
	res, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = ?`, userID)
	if err != nil {
		return errors.Wrap(err, "delete profile", slog.String("userID", userID))
	}
	return requireAffected(res, userID)
}

func (r *ProfileRepository) List(ctx context.Context) ([]models.Profile, error) {
	var rows []struct {
		UserID   string `db:"user_id"`
		Document string `db:"document"`
	}
	if err := r.db.ReadOnly.SelectContext(ctx, &rows,
		`SELECT user_id, document FROM profiles ORDER BY user_id`); err != nil {
		return nil, errors.Wrap(err, "select profiles")
	}
	profiles := make([]models.Profile, 0, len(rows))
	for _, row := range rows {
		profile, err := decodeProfile(row.UserID, row.Document)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func decodeProfile(userID, document string) (models.Profile, error) {
	var profile models.Profile
	if err := json.Unmarshal([]byte(document), &profile); err != nil {
		return profile, errors.Wrap(err, "decode profile", slog.String("userID", userID))
	}
	profile.UserID = userID
	return profile, nil
}
