package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/testutil"
	"github.com/templui/folio/internal/validation"
)

func register(t *testing.T, e *testEnv, email, username string) *model.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), validation.RegisterInput{
		Name:            "Ada Lovelace",
		Username:        username,
		Email:           email,
		Password:        "Secret1",
		ConfirmPassword: "Secret1",
	})
	require.NoError(t, err)
	return user
}

func TestRegister_FirstAccountIsAdmin(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	first := register(t, e, "Ada@Example.com", "ada")
	second := register(t, e, "bob@example.com", "bob")

	assert.Equal(t, model.RoleAdmin, first.Role)
	assert.Equal(t, model.RoleUser, second.Role)
	assert.Equal(t, "ada@example.com", first.Email)

	_, err := e.auth.Register(ctx, validation.RegisterInput{
		Name: "Ada Again", Username: "ada2", Email: "ada@example.com",
		Password: "Secret1", ConfirmPassword: "Secret1",
	})
	assertKind(t, err, ErrConflict)
	msg, _ := Message(err)
	assert.Equal(t, "email already exists", msg)

	_, err = e.auth.Register(ctx, validation.RegisterInput{
		Name: "Other", Username: "ADA", Email: "other@example.com",
		Password: "Secret1", ConfirmPassword: "Secret1",
	})
	assertKind(t, err, ErrConflict)
	msg, _ = Message(err)
	assert.Equal(t, "username already taken", msg)
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	register(t, e, "ada@example.com", "ada")

	user, err := e.auth.Login(ctx, validation.LoginInput{Email: " ADA@example.com", Password: "Secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)

	_, err = e.auth.Login(ctx, validation.LoginInput{Email: "ada@example.com", Password: "wrong"})
	assertKind(t, err, ErrInvalidCredentials)

	_, err = e.auth.Login(ctx, validation.LoginInput{Email: "nobody@example.com", Password: "Secret1"})
	assertKind(t, err, ErrInvalidCredentials)
}

func TestAuthenticateOAuth(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	existing := register(t, e, "ada@example.com", "ada")

	user, err := e.auth.AuthenticateOAuth(ctx, ProviderUser{Provider: "github", Email: "ADA@example.com", Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)

	created, err := e.auth.AuthenticateOAuth(ctx, ProviderUser{
		Provider: "google", Email: "ada@other.com", Name: "Ada Other", Image: "https://img.test/a.png",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "ada", created.Username, "username collision resolved with a suffix")
	assert.Contains(t, created.Username, "ada-")
	assert.Equal(t, model.RoleUser, created.Role)
	assert.False(t, created.HasPassword())
	require.NotNil(t, created.Avatar)
	assert.Equal(t, "https://img.test/a.png", created.Avatar.URL)

	_, err = e.auth.AuthenticateOAuth(ctx, ProviderUser{Provider: "github"})
	assertInvalid(t, err, "email")
}

func TestJWTRoundTripAndIdentity(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := register(t, e, "ada@example.com", "ada")

	session, err := e.auth.GenerateJWT(user)
	require.NoError(t, err)

	claims, err := e.auth.VerifyJWT(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, session.ID, claims.SessionID)

	resolved, sid, err := e.identity.Resolve(ctx, session.Token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, session.ID, sid)

	// Role changes apply on the next request.
	require.NoError(t, e.userRepository.UpdateRole(ctx, user.ID, model.RoleUser))
	resolved, _, err = e.identity.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, resolved.Role)

	other := NewAuthService(e.userRepository, e.revalidator, "other-secret", 0, false)
	resolved, _, err = NewIdentityResolver(other, e.userRepository).Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, resolved, "tokens signed with another secret are ignored")

	resolved, _, err = e.identity.Resolve(ctx, "garbage")
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestUpdateProfile(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	ada := register(t, e, "ada@example.com", "ada")
	register(t, e, "bob@example.com", "bob")

	updated, err := e.users.UpdateProfile(ctx, ada, validation.ProfileInput{Name: "Ada L", Username: "Ada_L"})
	require.NoError(t, err)
	assert.Equal(t, "ada_l", updated.Username)
	assert.Equal(t, "Ada L", updated.Name)

	_, err = e.users.UpdateProfile(ctx, ada, validation.ProfileInput{Name: "Ada", Username: "bob"})
	assertKind(t, err, ErrConflict)

	_, err = e.users.UpdateProfile(ctx, ada, validation.ProfileInput{Name: "A", Username: "a"})
	assertInvalid(t, err, "name")
	assertInvalid(t, err, "username")
}

func TestMe_SessionCacheInvalidatedOnProfileChange(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	ada := register(t, e, "ada@example.com", "ada")

	identity, err := e.users.Me(ctx, ada, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", identity.Name)

	// A direct write is not seen until the cache is dropped.
	_, err = e.db.Exec(`UPDATE users SET name = 'Sneaky' WHERE id = $1`, ada.ID)
	require.NoError(t, err)
	identity, err = e.users.Me(ctx, ada, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", identity.Name)

	_, err = e.users.UpdateProfile(ctx, ada, validation.ProfileInput{Name: "Ada Byron", Username: "ada"})
	require.NoError(t, err)
	identity, err = e.users.Me(ctx, ada, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Byron", identity.Name)
}

func TestChangePassword(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	ada := register(t, e, "ada@example.com", "ada")

	before, err := e.userRepository.ByID(ctx, ada.ID)
	require.NoError(t, err)

	err = e.users.ChangePassword(ctx, ada, validation.ChangePasswordInput{
		CurrentPassword: "wrong", NewPassword: "another", ConfirmPassword: "another",
	})
	assertInvalid(t, err, "currentPassword")

	after, err := e.userRepository.ByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, *before.PasswordHash, *after.PasswordHash, "hash unchanged after a wrong current password")

	err = e.users.ChangePassword(ctx, ada, validation.ChangePasswordInput{
		CurrentPassword: "Secret1", NewPassword: "another", ConfirmPassword: "another",
	})
	require.NoError(t, err)

	_, err = e.auth.Login(ctx, validation.LoginInput{Email: "ada@example.com", Password: "another"})
	require.NoError(t, err)

	oauth := testutil.CreateUser(t, e.db, "oauth@example.com", "")
	err = e.users.ChangePassword(ctx, oauth, validation.ChangePasswordInput{
		CurrentPassword: "x", NewPassword: "another", ConfirmPassword: "another",
	})
	assertInvalid(t, err, "currentPassword")
}

func TestAvatarLifecycle(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, e.db, "user@example.com", "")

	_, err := e.users.AttachAvatar(ctx, user, e.storedAsset(user, "avatar/a.png"))
	require.NoError(t, err)

	updated, err := e.users.AttachAvatar(ctx, user, e.storedAsset(user, "avatar/b.png"))
	require.NoError(t, err)
	assert.Equal(t, "avatar/b.png", model.AssetKey(updated.Avatar))
	assert.False(t, e.storage.Has("avatar/a.png"))

	e.storage.FailDelete()
	_, err = e.users.DetachAvatar(ctx, user)
	assertKind(t, err, ErrUpstream)
	stored, err := e.userRepository.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.Avatar)

	e.storage.Heal()
	updated, err = e.users.DetachAvatar(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, updated.Avatar)
}

func TestDeleteAccount(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := register(t, e, "ada@example.com", "ada")
	other := register(t, e, "bob@example.com", "bob")

	_, err := e.users.AttachAvatar(ctx, admin, e.storedAsset(admin, "avatar/ada.png"))
	require.NoError(t, err)
	in := validAbout()
	in.Resume = e.storedAsset(admin, "resume/cv.pdf")
	_, err = e.about.Save(ctx, admin, in)
	require.NoError(t, err)
	_, err = e.contact.Save(ctx, admin, validContact())
	require.NoError(t, err)
	_, err = e.projects.Create(ctx, admin, validProject("Folio", image(e, admin, "project-image/a.png", true)))
	require.NoError(t, err)

	err = e.users.DeleteAccount(ctx, other, admin.ID, ConfirmDeleteAccount)
	assertKind(t, err, ErrUnauthorized)

	err = e.users.DeleteAccount(ctx, admin, admin.ID, "delete my account")
	assertInvalid(t, err, "confirm")

	e.storage.FailDelete()
	err = e.users.DeleteAccount(ctx, admin, admin.ID, ConfirmDeleteAccount)
	assertKind(t, err, ErrUpstream)
	assert.Equal(t, 1, testutil.CountRows(t, e.db, "users", "id = $1", admin.ID), "rows untouched when files could not be deleted")

	e.storage.Heal()
	require.NoError(t, e.users.DeleteAccount(ctx, admin, admin.ID, ConfirmDeleteAccount))

	assert.Equal(t, 0, testutil.CountRows(t, e.db, "users", "id = $1", admin.ID))
	assert.Equal(t, 0, testutil.CountRows(t, e.db, "about", ""))
	assert.Equal(t, 0, testutil.CountRows(t, e.db, "contact", ""))
	assert.Equal(t, 0, testutil.CountRows(t, e.db, "projects", ""))
	for _, key := range []string{"avatar/ada.png", "resume/cv.pdf", "project-image/a.png"} {
		assert.False(t, e.storage.Has(key), key)
	}
	assert.Equal(t, 1, testutil.CountRows(t, e.db, "users", "id = $1", other.ID))
}

func TestPromote(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, e.db, "user@example.com", "")

	promoted, err := e.users.Promote(ctx, "USER@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, promoted.Role)

	testutil.CreateUser(t, e.db, "second@example.com", "")
	_, err = e.users.Promote(ctx, "second@example.com")
	assertKind(t, err, ErrConflict)

	_, err = e.users.Promote(ctx, "missing@example.com")
	assertKind(t, err, ErrNotFound)
	assert.Equal(t, user.ID, promoted.ID)
}

func TestAttachAvatar_RejectsForeignKey(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := register(t, e, "ada@example.com", "ada")
	user := register(t, e, "bob@example.com", "bob")

	in := validAbout()
	in.ProfileImage = e.storedAsset(admin, "profile-image/"+admin.ID+"/pic.png")
	_, err := e.about.Save(ctx, admin, in)
	require.NoError(t, err)

	about, err := e.views.About(ctx)
	require.NoError(t, err)
	stolen := &model.Asset{URL: about.ProfileImageURL, Key: "profile-image/" + admin.ID + "/pic.png"}

	_, err = e.users.AttachAvatar(ctx, user, stolen)
	assertKind(t, err, ErrUnauthorized)

	_, err = e.users.DetachAvatar(ctx, user)
	require.NoError(t, err)
	assert.True(t, e.storage.Has(stolen.Key), "the admin's file survives")

	stored, err := e.userRepository.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Avatar)

	require.NoError(t, e.users.DeleteAccount(ctx, user, user.ID, ConfirmDeleteAccount))
	assert.True(t, e.storage.Has(stolen.Key))
}

func TestAttachAvatar_UsesRecordedURL(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, e.db, "user@example.com", "")

	asset := e.storedAsset(user, "avatar/me.png")
	asset.URL = "https://evil.example/me.png"

	updated, err := e.users.AttachAvatar(ctx, user, asset)
	require.NoError(t, err)
	require.NotNil(t, updated.Avatar)
	assert.Equal(t, e.storage.URL("avatar/me.png"), updated.Avatar.URL)
}

func TestDeleteAccount_RemovesUnattachedUploads(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := register(t, e, "ada@example.com", "ada")

	asset, err := e.assets.Upload(ctx, user, UploadRequest{Kind: model.UploadKindAvatar, Header: pngHeader(t, "me.png")})
	require.NoError(t, err)
	require.True(t, e.storage.Has(asset.Key))

	require.NoError(t, e.users.DeleteAccount(ctx, user, user.ID, ConfirmDeleteAccount))

	assert.False(t, e.storage.Has(asset.Key), "phase-one upload is deleted with the account")
	assert.Equal(t, 0, testutil.CountRows(t, e.db, "uploads", ""))
}
