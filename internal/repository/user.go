package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already taken")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByUsername(ctx context.Context, username string) (*model.User, error)
	FirstAdmin(ctx context.Context) (*model.User, error)
	UpdateProfile(ctx context.Context, id, name, username string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateAvatar(ctx context.Context, id string, avatar *model.Asset) error
	UpdateRole(ctx context.Context, id, role string) error
	DeleteWithContent(ctx context.Context, id string) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts user. When user.Role is empty the row becomes ADMIN if no
// admin exists yet and USER otherwise; the resolved role is written back.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, email, username, name, role, password_hash, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4,
			CASE WHEN $5 <> '' THEN $5
			     WHEN EXISTS (SELECT 1 FROM users WHERE role = 'ADMIN') THEN 'USER'
			     ELSE 'ADMIN' END,
			$6, $7, $8, $9)
		RETURNING role`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Email, user.Username, user.Name, user.Role,
		user.PasswordHash, user.Avatar, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.Role)
	if err != nil {
		switch {
		case violatedColumn(err, "username"):
			return ErrDuplicateUsername
		case isUniqueViolation(err):
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE email = $1`, email)
}

func (r *userRepository) ByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE username = $1`, username)
}

// FirstAdmin returns the earliest admin account, the owner of the public site.
func (r *userRepository) FirstAdmin(ctx context.Context) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE role = 'ADMIN' ORDER BY created_at ASC, id ASC LIMIT 1`)
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...any) (*model.User, error) {
	user := &model.User{}
	err := r.db.GetContext(ctx, user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id, name, username string) error {
	query := `UPDATE users SET name = $1, username = $2, updated_at = $3 WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, name, username, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return err
	}
	return expectRow(result, ErrUserNotFound)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, hash, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectRow(result, ErrUserNotFound)
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id string, avatar *model.Asset) error {
	query := `UPDATE users SET avatar = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, avatar, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectRow(result, ErrUserNotFound)
}

func (r *userRepository) UpdateRole(ctx context.Context, id, role string) error {
	query := `UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, role, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectRow(result, ErrUserNotFound)
}

// DeleteWithContent removes the user and every row they own in one transaction.
func (r *userRepository) DeleteWithContent(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		statements := []string{
			`DELETE FROM project_images WHERE project_id IN (SELECT id FROM projects WHERE created_by_id = $1)`,
			`DELETE FROM projects WHERE created_by_id = $1`,
			`DELETE FROM about WHERE created_by_id = $1`,
			`DELETE FROM contact WHERE created_by_id = $1`,
			`DELETE FROM uploads WHERE user_id = $1`,
		}
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return expectRow(result, ErrUserNotFound)
	})
}

// expectRow maps "no rows affected" to notFound.
func expectRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
