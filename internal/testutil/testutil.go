// Package testutil provides shared test helpers.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/model"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestDB creates a temporary SQLite database with all migrations applied.
// The database is closed when the test finishes.
func TestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "folio-test.db")
	conn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)"

	database, err := db.Init("sqlite", conn)
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := db.RunMigrations(database.DB, "sqlite"); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	return database
}

// CreateUser inserts a user row directly. role defaults to USER.
func CreateUser(t *testing.T, database *sqlx.DB, email, role string) *model.User {
	t.Helper()

	if role == "" {
		role = model.RoleUser
	}
	now := time.Now().UTC()
	u := &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  uuid.NewString()[:8],
		Name:      "Test User",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := database.Exec(
		`INSERT INTO users (id, email, username, name, role, password_hash, avatar, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Email, u.Username, u.Name, u.Role, u.PasswordHash, u.Avatar, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// CreateAdmin inserts a user with the ADMIN role.
func CreateAdmin(t *testing.T, database *sqlx.DB, email string) *model.User {
	t.Helper()
	return CreateUser(t, database, email, model.RoleAdmin)
}

// CountRows returns the number of rows in table matching an optional where clause.
func CountRows(t *testing.T, database *sqlx.DB, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}

	var n int
	if err := database.Get(&n, query, args...); err != nil {
		t.Fatalf("CountRows(%s): %v", table, err)
	}
	return n
}
