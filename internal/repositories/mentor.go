package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/models"
	"github.com/myrjola/ikigai/internal/sqlite"
)

type MentorRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewMentorRepository(db *sqlite.Database, logger *slog.Logger) *MentorRepository {
	return &MentorRepository{
		db:     db,
		logger: logger,
	}
}

const mentorColumns = `id, name, title, specialty, bio, image_url, ordering`

func (r *MentorRepository) List(ctx context.Context) ([]models.Mentor, error) {
	mentors := []models.Mentor{}
	if err := r.db.ReadOnly.SelectContext(ctx, &mentors,
		`SELECT `+mentorColumns+` FROM mentors ORDER BY ordering, name`); err != nil {
		return nil, errors.Wrap(err, "select mentors")
	}
	return mentors, nil
}

func (r *MentorRepository) Get(ctx context.Context, id string) (models.Mentor, error) {
	var mentor models.Mentor
	if err := r.db.ReadOnly.GetContext(ctx, &mentor,
		`SELECT `+mentorColumns+` FROM mentors WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mentor, errors.Wrap(models.ErrNotFound, "mentor not found", slog.String("id", id))
		}
		return mentor, errors.Wrap(err, "select mentor", slog.String("id", id))
	}
	return mentor, nil
}

// Create inserts the mentor, generating an id when none is given.
func (r *MentorRepository) Create(ctx context.Context, mentor models.Mentor) (models.Mentor, error) {
	if mentor.ID == "" {
		mentor.ID = uuid.NewString()
	}
	stmt := `INSERT INTO mentors (` + mentorColumns + `)
VALUES (:id, :name, :title, :specialty, :bio, :image_url, :ordering)`
	if _, err := r.db.ReadWrite.NamedExecContext(ctx, stmt, mentor); err != nil {
		if isConstraintViolation(err) {
			return mentor, errors.Wrap(models.ErrConflict, "mentor exists", slog.String("id", mentor.ID))
		}
		return mentor, errors.Wrap(err, "insert mentor")
	}
	return mentor, nil
}

func (r *MentorRepository) Update(ctx context.Context, mentor models.Mentor) error {
	stmt := `UPDATE mentors
SET name = :name, title = :title, specialty = :specialty, bio = :bio, image_url = :image_url, ordering = :ordering
WHERE id = :id`
	res, err := r.db.ReadWrite.NamedExecContext(ctx, stmt, mentor)
	if err != nil {
		return errors.Wrap(err, "update mentor", slog.String("id", mentor.ID))
	}
	return requireAffected(res, mentor.ID)
}

func (r *MentorRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM mentors WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete mentor", slog.String("id", id))
	}
	return requireAffected(res, id)
}
