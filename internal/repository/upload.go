package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/folio/internal/model"
)

type UploadRepository interface {
	Create(ctx context.Context, upload *model.Upload) error
	OlderThan(ctx context.Context, cutoff time.Time) ([]*model.Upload, error)
	DeleteByKeys(ctx context.Context, keys []string) error
	ReferencedKeys(ctx context.Context) (map[string]struct{}, error)
	ByUserAndKeys(ctx context.Context, userID string, keys []string) ([]*model.Upload, error)
	KeysByUser(ctx context.Context, userID string) ([]string, error)
}

type uploadRepository struct {
	db *sqlx.DB
}

func NewUploadRepository(db *sqlx.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, upload *model.Upload) error {
	query := `INSERT INTO uploads (id, user_id, storage_key, url, kind, size, mime_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		upload.ID, upload.UserID, upload.Key, upload.URL, upload.Kind, upload.Size, upload.MimeType, upload.CreatedAt)
	return err
}

func (r *uploadRepository) OlderThan(ctx context.Context, cutoff time.Time) ([]*model.Upload, error) {
	uploads := []*model.Upload{}
	err := r.db.SelectContext(ctx, &uploads,
		`SELECT * FROM uploads WHERE created_at < $1 ORDER BY created_at ASC`, cutoff)
	return uploads, err
}

func (r *uploadRepository) DeleteByKeys(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM uploads WHERE storage_key IN (?)`, keys)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}

// ReferencedKeys collects every storage key attached to a user, About row or project image.
func (r *uploadRepository) ReferencedKeys(ctx context.Context) (map[string]struct{}, error) {
	keys := make(map[string]struct{})

	assetQueries := []string{
		`SELECT avatar FROM users WHERE avatar IS NOT NULL`,
		`SELECT profile_image FROM about WHERE profile_image IS NOT NULL`,
		`SELECT hero_image FROM about WHERE hero_image IS NOT NULL`,
		`SELECT resume FROM about WHERE resume IS NOT NULL`,
	}
	for _, query := range assetQueries {
		var assets []model.Asset
		if err := r.db.SelectContext(ctx, &assets, query); err != nil {
			return nil, err
		}
		for _, a := range assets {
			if a.Key != "" {
				keys[a.Key] = struct{}{}
			}
		}
	}

	var imageKeys []string
	if err := r.db.SelectContext(ctx, &imageKeys, `SELECT storage_key FROM project_images`); err != nil {
		return nil, err
	}
	for _, k := range imageKeys {
		keys[k] = struct{}{}
	}

	return keys, nil
}

// ByUserAndKeys returns the ledger rows among keys that userID uploaded.
func (r *uploadRepository) ByUserAndKeys(ctx context.Context, userID string, keys []string) ([]*model.Upload, error) {
	uploads := []*model.Upload{}
	if len(keys) == 0 {
		return uploads, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM uploads WHERE user_id = ? AND storage_key IN (?)`, userID, keys)
	if err != nil {
		return nil, err
	}
	err = r.db.SelectContext(ctx, &uploads, r.db.Rebind(query), args...)
	return uploads, err
}

func (r *uploadRepository) KeysByUser(ctx context.Context, userID string) ([]string, error) {
	keys := []string{}
	err := r.db.SelectContext(ctx, &keys,
		`SELECT storage_key FROM uploads WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	return keys, err
}
