package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/models"
	"github.com/myrjola/ikigai/internal/sqlite"
)

// MessageRepository is the contact message inbox.
type MessageRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewMessageRepository(db *sqlite.Database, logger *slog.Logger) *MessageRepository {
	return &MessageRepository{
		db:     db,
		logger: logger,
	}
}

const messageColumns = `id, name, email, subject, body, is_read, created`

// List returns the newest messages first.
func (r *MessageRepository) List(ctx context.Context) ([]models.ContactMessage, error) {
	messages := []models.ContactMessage{}
	if err := r.db.ReadOnly.SelectContext(ctx, &messages,
		`SELECT `+messageColumns+` FROM contact_messages ORDER BY created DESC, id`); err != nil {
		return nil, errors.Wrap(err, "select messages")
	}
	return messages, nil
}

func (r *MessageRepository) Create(ctx context.Context, message models.ContactMessage) (models.ContactMessage, error) {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.Created.IsZero() {
		message.Created = time.Now()
	}
	message.Created = message.Created.UTC()
	stmt := `INSERT INTO contact_messages (` + messageColumns + `)
VALUES (:id, :name, :email, :subject, :body, :is_read, :created)`
	if _, err := r.db.ReadWrite.NamedExecContext(ctx, stmt, message); err != nil {
		return message, errors.Wrap(err, "insert message")
	}
	return message, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ReadWrite.ExecContext(ctx, `UPDATE contact_messages SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "mark message read", slog.String("id", id))
	}
	return requireAffected(res, id)
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete message", slog.String("id", id))
	}
	return requireAffected(res, id)
}
