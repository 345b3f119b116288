package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/folio/internal/model"
)

var ErrAboutNotFound = errors.New("about not found")

// aboutAssetColumns whitelists the columns UpdateAsset may touch.
var aboutAssetColumns = map[string]string{
	model.AboutFieldProfileImage: "profile_image",
	model.AboutFieldHeroImage:    "hero_image",
	model.AboutFieldResume:       "resume",
}

type AboutRepository interface {
	ByOwner(ctx context.Context, ownerID string) (*model.About, error)
	Upsert(ctx context.Context, about *model.About) error
	UpdateAsset(ctx context.Context, ownerID, field string, asset *model.Asset) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}

type aboutRepository struct {
	db *sqlx.DB
}

func NewAboutRepository(db *sqlx.DB) AboutRepository {
	return &aboutRepository{db: db}
}

func (r *aboutRepository) ByOwner(ctx context.Context, ownerID string) (*model.About, error) {
	about := &model.About{}
	err := r.db.GetContext(ctx, about, `SELECT * FROM about WHERE created_by_id = $1`, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAboutNotFound
	}
	if err != nil {
		return nil, err
	}
	return about, nil
}

// Upsert creates the owner's About row or overwrites every mutable field of
// the existing one. The stored id is written back to about.
func (r *aboutRepository) Upsert(ctx context.Context, about *model.About) error {
	query := `INSERT INTO about (
			id, created_by_id, full_name, headline, sub_headline, short_bio, long_bio,
			experience, skills, profile_image, hero_image, resume, portfolio_start_year,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (created_by_id) DO UPDATE SET
			full_name = excluded.full_name,
			headline = excluded.headline,
			sub_headline = excluded.sub_headline,
			short_bio = excluded.short_bio,
			long_bio = excluded.long_bio,
			experience = excluded.experience,
			skills = excluded.skills,
			profile_image = excluded.profile_image,
			hero_image = excluded.hero_image,
			resume = excluded.resume,
			portfolio_start_year = excluded.portfolio_start_year,
			updated_at = excluded.updated_at
		RETURNING id`

	return r.db.QueryRowxContext(ctx, query,
		about.ID, about.CreatedByID, about.FullName, about.Headline, about.SubHeadline,
		about.ShortBio, about.LongBio, about.Experience, about.Skills,
		about.ProfileImage, about.HeroImage, about.Resume, about.PortfolioStartYear,
		about.CreatedAt, about.UpdatedAt,
	).Scan(&about.ID)
}

func (r *aboutRepository) UpdateAsset(ctx context.Context, ownerID, field string, asset *model.Asset) error {
	column, ok := aboutAssetColumns[field]
	if !ok {
		return fmt.Errorf("unknown about asset field %q", field)
	}

	query := fmt.Sprintf(`UPDATE about SET %s = $1, updated_at = $2 WHERE created_by_id = $3`, column)
	result, err := r.db.ExecContext(ctx, query, asset, time.Now().UTC(), ownerID)
	if err != nil {
		return err
	}
	return expectRow(result, ErrAboutNotFound)
}

func (r *aboutRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM about WHERE created_by_id = $1`, ownerID)
	if err != nil {
		return err
	}
	return expectRow(result, ErrAboutNotFound)
}
