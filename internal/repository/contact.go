package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/folio/internal/model"
)

var ErrContactNotFound = errors.New("contact not found")

type ContactRepository interface {
	ByOwner(ctx context.Context, ownerID string) (*model.Contact, error)
	Upsert(ctx context.Context, contact *model.Contact) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}

type contactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) ByOwner(ctx context.Context, ownerID string) (*model.Contact, error) {
	contact := &model.Contact{}
	err := r.db.GetContext(ctx, contact, `SELECT * FROM contact WHERE created_by_id = $1`, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (r *contactRepository) Upsert(ctx context.Context, contact *model.Contact) error {
	query := `INSERT INTO contact (
			id, created_by_id, email, phone, location, github, linkedin, twitter, website,
			open_to_relocation, available_for_work, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (created_by_id) DO UPDATE SET
			email = excluded.email,
			phone = excluded.phone,
			location = excluded.location,
			github = excluded.github,
			linkedin = excluded.linkedin,
			twitter = excluded.twitter,
			website = excluded.website,
			open_to_relocation = excluded.open_to_relocation,
			available_for_work = excluded.available_for_work,
			updated_at = excluded.updated_at
		RETURNING id`

	return r.db.QueryRowxContext(ctx, query,
		contact.ID, contact.CreatedByID, contact.Email, contact.Phone, contact.Location,
		contact.GitHub, contact.LinkedIn, contact.Twitter, contact.Website,
		contact.OpenToRelocation, contact.AvailableForWork, contact.CreatedAt, contact.UpdatedAt,
	).Scan(&contact.ID)
}

func (r *contactRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contact WHERE created_by_id = $1`, ownerID)
	if err != nil {
		return err
	}
	return expectRow(result, ErrContactNotFound)
}
