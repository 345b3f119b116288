package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/model"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectImageNotFound = errors.New("project image not found")
)

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	ByID(ctx context.Context, id string) (*model.Project, error)
	ListByOwner(ctx context.Context, ownerID string, publishedOnly bool) ([]*model.Project, error)
	Delete(ctx context.Context, id string) error
	DeleteImage(ctx context.Context, projectID, imageID string) (*model.ProjectImage, error)
	CountImages(ctx context.Context, projectID string) (int, error)
	ImageKeysByOwner(ctx context.Context, ownerID string) ([]string, error)
}

type projectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `INSERT INTO projects (
				id, created_by_id, name, role, summary, description, key_features, tech_stack,
				live_url, repo_url, is_flagship, featured, published, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

		_, err := tx.ExecContext(ctx, query,
			project.ID, project.CreatedByID, project.Name, project.Role, project.Summary,
			project.Description, project.KeyFeatures, project.TechStack,
			project.LiveURL, project.RepoURL, project.IsFlagship, project.Featured, project.Published,
			project.CreatedAt, project.UpdatedAt,
		)
		if err != nil {
			return err
		}

		return insertImages(ctx, tx, project)
	})
}

// Update overwrites the project's fields and replaces its image set.
func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `UPDATE projects SET
				name = $1, role = $2, summary = $3, description = $4, key_features = $5,
				tech_stack = $6, live_url = $7, repo_url = $8, is_flagship = $9, featured = $10,
				published = $11, updated_at = $12
			WHERE id = $13`

		result, err := tx.ExecContext(ctx, query,
			project.Name, project.Role, project.Summary, project.Description, project.KeyFeatures,
			project.TechStack, project.LiveURL, project.RepoURL, project.IsFlagship, project.Featured,
			project.Published, project.UpdatedAt, project.ID,
		)
		if err != nil {
			return err
		}
		if err := expectRow(result, ErrProjectNotFound); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM project_images WHERE project_id = $1`, project.ID)
		if err != nil {
			return err
		}

		return insertImages(ctx, tx, project)
	})
}

func insertImages(ctx context.Context, tx *sqlx.Tx, project *model.Project) error {
	query := `INSERT INTO project_images (id, project_id, url, storage_key, alt, position, is_cover, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now().UTC()
	for i := range project.Images {
		img := &project.Images[i]
		if img.ID == "" {
			img.ID = uuid.NewString()
		}
		if img.CreatedAt.IsZero() {
			img.CreatedAt = now
		}
		img.ProjectID = project.ID

		_, err := tx.ExecContext(ctx, query,
			img.ID, img.ProjectID, img.URL, img.Key, img.Alt, img.Order, img.IsCover, img.CreatedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *projectRepository) ByID(ctx context.Context, id string) (*model.Project, error) {
	project := &model.Project{}
	err := r.db.GetContext(ctx, project, `SELECT * FROM projects WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachImages(ctx, []*model.Project{project}); err != nil {
		return nil, err
	}
	return project, nil
}

// ListByOwner returns the owner's projects, flagship first, then featured, newest first.
func (r *projectRepository) ListByOwner(ctx context.Context, ownerID string, publishedOnly bool) ([]*model.Project, error) {
	query := `SELECT * FROM projects WHERE created_by_id = $1`
	if publishedOnly {
		query += ` AND published = TRUE`
	}
	query += ` ORDER BY is_flagship DESC, featured DESC, created_at DESC`

	projects := []*model.Project{}
	if err := r.db.SelectContext(ctx, &projects, query, ownerID); err != nil {
		return nil, err
	}

	if err := r.attachImages(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) attachImages(ctx context.Context, projects []*model.Project) error {
	if len(projects) == 0 {
		return nil
	}

	ids := make([]string, len(projects))
	byID := make(map[string]*model.Project, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
		byID[p.ID] = p
		p.Images = []model.ProjectImage{}
	}

	query, args, err := sqlx.In(`SELECT * FROM project_images WHERE project_id IN (?) ORDER BY position ASC`, ids)
	if err != nil {
		return err
	}

	var images []model.ProjectImage
	if err := r.db.SelectContext(ctx, &images, r.db.Rebind(query), args...); err != nil {
		return err
	}

	for _, img := range images {
		if p, ok := byID[img.ProjectID]; ok {
			p.Images = append(p.Images, img)
		}
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM project_images WHERE project_id = $1`, id)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return expectRow(result, ErrProjectNotFound)
	})
}

// DeleteImage removes one image and renumbers the rest. When the removed
// image was the cover, the new first image takes over.
func (r *projectRepository) DeleteImage(ctx context.Context, projectID, imageID string) (*model.ProjectImage, error) {
	var removed *model.ProjectImage

	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var images []model.ProjectImage
		err := tx.SelectContext(ctx, &images,
			`SELECT * FROM project_images WHERE project_id = $1 ORDER BY position ASC`, projectID)
		if err != nil {
			return err
		}

		remaining := make([]model.ProjectImage, 0, len(images))
		for i := range images {
			if images[i].ID == imageID {
				img := images[i]
				removed = &img
				continue
			}
			remaining = append(remaining, images[i])
		}
		if removed == nil {
			return ErrProjectImageNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM project_images WHERE id = $1`, imageID); err != nil {
			return err
		}

		model.NormalizeImages(remaining)
		for _, img := range remaining {
			_, err := tx.ExecContext(ctx,
				`UPDATE project_images SET position = $1, is_cover = $2 WHERE id = $3`,
				img.Order, img.IsCover, img.ID)
			if err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `UPDATE projects SET updated_at = $1 WHERE id = $2`, time.Now().UTC(), projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *projectRepository) CountImages(ctx context.Context, projectID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM project_images WHERE project_id = $1`, projectID)
	return n, err
}

func (r *projectRepository) ImageKeysByOwner(ctx context.Context, ownerID string) ([]string, error) {
	keys := []string{}
	err := r.db.SelectContext(ctx, &keys,
		`SELECT pi.storage_key FROM project_images pi
		 JOIN projects p ON p.id = pi.project_id
		 WHERE p.created_by_id = $1`, ownerID)
	return keys, err
}
