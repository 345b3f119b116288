package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/folio/internal/model"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepository interface {
	Create(ctx context.Context, msg *model.ContactMessage) error
	ByID(ctx context.Context, id string) (*model.ContactMessage, error)
	List(ctx context.Context, limit, offset int) ([]*model.ContactMessage, error)
	Count(ctx context.Context) (int, error)
	CountUnread(ctx context.Context) (int, error)
	SetRead(ctx context.Context, id string, read bool) error
	Delete(ctx context.Context, id string) error
}

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.ContactMessage) error {
	query := `INSERT INTO contact_messages (id, name, email, subject, message, source, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message, msg.Source, msg.Read, msg.CreatedAt)
	return err
}

func (r *messageRepository) ByID(ctx context.Context, id string) (*model.ContactMessage, error) {
	msg := &model.ContactMessage{}
	err := r.db.GetContext(ctx, msg, `SELECT * FROM contact_messages WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// List returns messages newest first.
func (r *messageRepository) List(ctx context.Context, limit, offset int) ([]*model.ContactMessage, error) {
	messages := []*model.ContactMessage{}
	err := r.db.SelectContext(ctx, &messages,
		`SELECT * FROM contact_messages ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	return messages, err
}

func (r *messageRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM contact_messages`)
	return n, err
}

func (r *messageRepository) CountUnread(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM contact_messages WHERE is_read = FALSE`)
	return n, err
}

func (r *messageRepository) SetRead(ctx context.Context, id string, read bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE contact_messages SET is_read = $1 WHERE id = $2`, read, id)
	if err != nil {
		return err
	}
	return expectRow(result, ErrMessageNotFound)
}

func (r *messageRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRow(result, ErrMessageNotFound)
}
