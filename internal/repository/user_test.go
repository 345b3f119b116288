package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/testutil"
)

func newUser(email, username string) *model.User {
	now := time.Now().UTC()
	return &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  username,
		Name:      "Ada",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestUserRepository_FirstAccountBecomesAdmin(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testutil.TestDB(t))

	first := newUser("first@example.com", "first")
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, model.RoleAdmin, first.Role)

	second := newUser("second@example.com", "second")
	require.NoError(t, repo.Create(ctx, second))
	assert.Equal(t, model.RoleUser, second.Role)

	admin, err := repo.FirstAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, admin.ID)
}

func TestUserRepository_Duplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testutil.TestDB(t))

	require.NoError(t, repo.Create(ctx, newUser("a@example.com", "alpha")))

	err := repo.Create(ctx, newUser("a@example.com", "other"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	err = repo.Create(ctx, newUser("b@example.com", "alpha"))
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testutil.TestDB(t))

	a := newUser("a@example.com", "alpha")
	b := newUser("b@example.com", "beta")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	require.NoError(t, repo.UpdateProfile(ctx, a.ID, "Alpha Person", "alpha2"))
	got, err := repo.ByUsername(ctx, "alpha2")
	require.NoError(t, err)
	assert.Equal(t, "Alpha Person", got.Name)

	err = repo.UpdateProfile(ctx, a.ID, "Alpha", "beta")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	err = repo.UpdateProfile(ctx, "missing", "x", "y")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_Avatar(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testutil.TestDB(t))

	u := newUser("a@example.com", "alpha")
	require.NoError(t, repo.Create(ctx, u))

	avatar := &model.Asset{URL: "https://cdn.example/a.png", Key: "avatars/a.png"}
	require.NoError(t, repo.UpdateAvatar(ctx, u.ID, avatar))

	got, err := repo.ByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Avatar)
	assert.Equal(t, "avatars/a.png", got.Avatar.Key)

	require.NoError(t, repo.UpdateAvatar(ctx, u.ID, nil))
	got, err = repo.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Avatar)
}

func TestUserRepository_DeleteWithContent(t *testing.T) {
	ctx := context.Background()
	database := testutil.TestDB(t)
	users := NewUserRepository(database)
	abouts := NewAboutRepository(database)
	projects := NewProjectRepository(database)

	owner := testutil.CreateAdmin(t, database, "owner@example.com")
	other := testutil.CreateUser(t, database, "other@example.com", "")

	require.NoError(t, abouts.Upsert(ctx, newAbout(owner.ID)))
	require.NoError(t, projects.Create(ctx, newProject(owner.ID, 2)))
	require.NoError(t, projects.Create(ctx, newProject(other.ID, 1)))

	require.NoError(t, users.DeleteWithContent(ctx, owner.ID))

	assert.Equal(t, 0, testutil.CountRows(t, database, "users", "id = $1", owner.ID))
	assert.Equal(t, 0, testutil.CountRows(t, database, "about", ""))
	assert.Equal(t, 1, testutil.CountRows(t, database, "projects", ""))
	assert.Equal(t, 1, testutil.CountRows(t, database, "project_images", ""))

	assert.ErrorIs(t, users.DeleteWithContent(ctx, owner.ID), ErrUserNotFound)
}
