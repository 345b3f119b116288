package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/folio/internal/testutil"
	"github.com/templui/folio/internal/validation"
)

func TestPortfolio_EmptyWithoutOwner(t *testing.T) {
	e := newTestEnv(t)

	view, err := e.views.Portfolio(context.Background())
	require.NoError(t, err)
	assert.Nil(t, view.Owner)
	assert.Nil(t, view.About)
	assert.Empty(t, view.Projects)
}

func TestPortfolio_PublicProjection(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := register(t, e, "ada@example.com", "ada")

	in := validAbout()
	in.ProfileImage = e.storedAsset(admin, "profile-image/me.png")
	_, err := e.about.Save(ctx, admin, in)
	require.NoError(t, err)
	_, err = e.contact.Save(ctx, admin, validContact())
	require.NoError(t, err)

	draft := validProject("Draft")
	draft.Published = false
	_, err = e.projects.Create(ctx, admin, draft)
	require.NoError(t, err)

	flagship := validProject("Flagship", image(e, admin, "project-image/f.png", true))
	flagship.IsFlagship = true
	_, err = e.projects.Create(ctx, admin, flagship)
	require.NoError(t, err)
	_, err = e.projects.Create(ctx, admin, validProject("Plain"))
	require.NoError(t, err)

	view, err := e.views.Portfolio(ctx)
	require.NoError(t, err)

	require.NotNil(t, view.Owner)
	assert.Equal(t, "ada", view.Owner.Username)

	require.NotNil(t, view.About)
	assert.Contains(t, view.About.LongBioHTML, "<strong>boring</strong>")
	assert.Equal(t, []string{"Go", "SQL"}, view.About.Skills)
	assert.Equal(t, e.storage.URL("profile-image/me.png"), view.About.ProfileImageURL)

	require.NotNil(t, view.Contact)
	assert.Equal(t, "https://github.com/ada", view.Contact.GitHub)

	require.Len(t, view.Projects, 2, "unpublished projects never reach the public view")
	assert.Equal(t, "Flagship", view.Projects[0].Name)
	assert.Equal(t, e.storage.URL("project-image/f.png"), view.Projects[0].CoverURL)
}

func TestPortfolio_IgnoresOtherAdminsContent(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := register(t, e, "ada@example.com", "ada")
	second := testutil.CreateAdmin(t, e.db, "second@example.com")

	_, err := e.projects.Create(ctx, second, validProject("Not mine"))
	require.NoError(t, err)
	_, err = e.projects.Create(ctx, owner, validProject("Mine"))
	require.NoError(t, err)

	projects, err := e.views.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Mine", projects[0].Name)
}

func TestViews_RevalidatedAfterWrites(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := register(t, e, "ada@example.com", "ada")

	_, err := e.about.Save(ctx, admin, validAbout())
	require.NoError(t, err)

	about, err := e.views.About(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Backend engineer", about.Headline)

	adminAbout, err := e.views.AdminAbout(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "Backend engineer", adminAbout.Headline)

	// Served from cache until a mutation goes through the service.
	_, err = e.db.Exec(`UPDATE about SET headline = 'Sneaky' WHERE created_by_id = $1`, admin.ID)
	require.NoError(t, err)
	about, err = e.views.About(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Backend engineer", about.Headline)

	in := validAbout()
	in.Headline = "Staff engineer"
	_, err = e.about.Save(ctx, admin, in)
	require.NoError(t, err)

	about, err = e.views.About(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Staff engineer", about.Headline)

	adminAbout, err = e.views.AdminAbout(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "Staff engineer", adminAbout.Headline)

	portfolio, err := e.views.Portfolio(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Staff engineer", portfolio.About.Headline)
}

func TestAdminViews_RequireAdmin(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, e.db, "user@example.com", "")

	_, err := e.views.AdminAbout(ctx, user)
	assertKind(t, err, ErrUnauthorized)
	_, err = e.views.AdminProjects(ctx, nil)
	assertKind(t, err, ErrUnauthorized)
	_, err = e.views.AdminMessages(ctx, user, 1, 20)
	assertKind(t, err, ErrUnauthorized)
	_, err = e.views.AdminAnalytics(ctx, user, 30)
	assertKind(t, err, ErrUnauthorized)
}

func TestAdminMessages_RefreshAfterSend(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := testutil.CreateAdmin(t, e.db, "admin@example.com")

	page, err := e.views.AdminMessages(ctx, admin, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)

	_, err = e.messages.Send(ctx, validMessage())
	require.NoError(t, err)

	page, err = e.views.AdminMessages(ctx, admin, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestYearsActive(t *testing.T) {
	start := 2019
	future := 2030
	assert.Equal(t, "2019–2026", yearsActive(&start, 2026))
	assert.Equal(t, "2026", yearsActive(nil, 2026))
	assert.Equal(t, "2026", yearsActive(&future, 2026))
}

func TestResumeURL(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := register(t, e, "ada@example.com", "ada")

	url, err := e.views.ResumeURL(ctx)
	require.NoError(t, err)
	assert.Empty(t, url)

	in := validAbout()
	in.Resume = e.storedAsset(admin, "resume/cv.pdf")
	_, err = e.about.Save(ctx, admin, in)
	require.NoError(t, err)

	url, err = e.views.ResumeURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, e.storage.URL("resume/cv.pdf"), url)
}

func TestPortfolio_RevalidatedAfterOwnerProfileChange(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := register(t, e, "ada@example.com", "ada")

	_, err := e.users.AttachAvatar(ctx, admin, e.storedAsset(admin, "avatar/a1.png"))
	require.NoError(t, err)

	view, err := e.views.Portfolio(ctx)
	require.NoError(t, err)
	require.NotNil(t, view.Owner)
	assert.Equal(t, e.storage.URL("avatar/a1.png"), view.Owner.AvatarURL)

	_, err = e.users.AttachAvatar(ctx, admin, e.storedAsset(admin, "avatar/a2.png"))
	require.NoError(t, err)
	_, err = e.users.UpdateProfile(ctx, admin, validation.ProfileInput{Name: "New Name", Username: "ada"})
	require.NoError(t, err)

	view, err = e.views.Portfolio(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New Name", view.Owner.Name)
	assert.Equal(t, e.storage.URL("avatar/a2.png"), view.Owner.AvatarURL)

	_, err = e.users.DetachAvatar(ctx, admin)
	require.NoError(t, err)
	view, err = e.views.Portfolio(ctx)
	require.NoError(t, err)
	assert.Empty(t, view.Owner.AvatarURL)
}
