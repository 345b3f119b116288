package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/testutil"
)

func newAbout(ownerID string) *model.About {
	now := time.Now().UTC()
	return &model.About{
		ID:          uuid.NewString(),
		CreatedByID: ownerID,
		FullName:    "Ada Lovelace",
		Headline:    "Engineer",
		SubHeadline: "Analytical engines",
		ShortBio:    "Writes programs.",
		Experience:  model.Experiences{{Year: "1843", Title: "Notes", Description: "Published the first program."}},
		Skills:      model.Skills{{Name: "Go"}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestAboutRepository_UpsertKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	database := testutil.TestDB(t)
	repo := NewAboutRepository(database)
	owner := testutil.CreateAdmin(t, database, "owner@example.com")

	first := newAbout(owner.ID)
	require.NoError(t, repo.Upsert(ctx, first))

	for i := 0; i < 3; i++ {
		again := newAbout(owner.ID)
		again.Headline = fmt.Sprintf("Headline v%d", i+2)
		require.NoError(t, repo.Upsert(ctx, again))
		assert.Equal(t, first.ID, again.ID, "upsert keeps the original row id")
	}

	assert.Equal(t, 1, testutil.CountRows(t, database, "about", "created_by_id = $1", owner.ID))

	got, err := repo.ByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Headline v4", got.Headline)
	require.Len(t, got.Experience, 1)
	assert.Equal(t, "Notes", got.Experience[0].Title)
	assert.Equal(t, model.Skills{{Name: "Go"}}, got.Skills)
}

func TestAboutRepository_Assets(t *testing.T) {
	ctx := context.Background()
	database := testutil.TestDB(t)
	repo := NewAboutRepository(database)
	owner := testutil.CreateAdmin(t, database, "owner@example.com")

	assert.ErrorIs(t, repo.UpdateAsset(ctx, owner.ID, model.AboutFieldResume, nil), ErrAboutNotFound)

	require.NoError(t, repo.Upsert(ctx, newAbout(owner.ID)))

	resume := &model.Asset{URL: "https://cdn.example/cv.pdf", Key: "resume/cv.pdf", Name: "cv.pdf"}
	require.NoError(t, repo.UpdateAsset(ctx, owner.ID, model.AboutFieldResume, resume))

	got, err := repo.ByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, resume, got.Resume)
	assert.Nil(t, got.HeroImage)

	assert.Error(t, repo.UpdateAsset(ctx, owner.ID, "full_name", nil))
}

func TestAboutRepository_Delete(t *testing.T) {
	ctx := context.Background()
	database := testutil.TestDB(t)
	repo := NewAboutRepository(database)
	owner := testutil.CreateAdmin(t, database, "owner@example.com")

	assert.ErrorIs(t, repo.DeleteByOwner(ctx, owner.ID), ErrAboutNotFound)

	require.NoError(t, repo.Upsert(ctx, newAbout(owner.ID)))
	require.NoError(t, repo.DeleteByOwner(ctx, owner.ID))

	_, err := repo.ByOwner(ctx, owner.ID)
	assert.ErrorIs(t, err, ErrAboutNotFound)
}

func TestContactRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	database := testutil.TestDB(t)
	repo := NewContactRepository(database)
	owner := testutil.CreateAdmin(t, database, "owner@example.com")

	empty := ""
	gh := "https://github.com/ada"
	now := time.Now().UTC()
	c := &model.Contact{
		ID: uuid.NewString(), CreatedByID: owner.ID,
		Email: "ada@example.com", Phone: "+44 1234", Location: "London",
		GitHub: &gh, Website: &empty,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Upsert(ctx, c))

	c2 := *c
	c2.ID = uuid.NewString()
	c2.Location = "Paris"
	c2.AvailableForWork = true
	require.NoError(t, repo.Upsert(ctx, &c2))

	assert.Equal(t, 1, testutil.CountRows(t, database, "contact", ""))

	got, err := repo.ByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "Paris", got.Location)
	assert.True(t, got.AvailableForWork)
	require.NotNil(t, got.Website)
	assert.Equal(t, "", *got.Website)
	assert.Nil(t, got.Twitter)

	require.NoError(t, repo.DeleteByOwner(ctx, owner.ID))
	assert.ErrorIs(t, repo.DeleteByOwner(ctx, owner.ID), ErrContactNotFound)
}
