package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/validation"
)

type UserService struct {
	userRepository    repository.UserRepository
	aboutRepository   repository.AboutRepository
	projectRepository repository.ProjectRepository
	authService       *AuthService
	assetService      *AssetService
	emailService      *EmailService
	sessionCache      *SessionCache
	revalidator       *Revalidator
}

func NewUserService(
	userRepository repository.UserRepository,
	aboutRepository repository.AboutRepository,
	projectRepository repository.ProjectRepository,
	authService *AuthService,
	assetService *AssetService,
	emailService *EmailService,
	sessionCache *SessionCache,
	revalidator *Revalidator,
) *UserService {
	return &UserService{
		userRepository:    userRepository,
		aboutRepository:   aboutRepository,
		projectRepository: projectRepository,
		authService:       authService,
		assetService:      assetService,
		emailService:      emailService,
		sessionCache:      sessionCache,
		revalidator:       revalidator,
	}
}

// Me returns the caller's identity through the session cache.
func (s *UserService) Me(ctx context.Context, caller *model.User, sid string) (*model.Identity, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if sid == "" {
		return caller.Identity(), nil
	}
	return s.sessionCache.Identity(ctx, caller.ID, sid)
}

func (s *UserService) reload(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepository.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("user not found", err)
		}
		return nil, upstream("get user", err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, caller *model.User, in validation.ProfileInput) (*model.User, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}

	name, username, err := validation.ValidateProfile(in)
	if err != nil {
		return nil, err
	}

	err = s.userRepository.UpdateProfile(ctx, caller.ID, name, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("user not found", err)
		}
		return nil, classifyUserWrite(err, "update profile")
	}

	if err := s.profileChanged(ctx, caller); err != nil {
		return nil, err
	}
	return s.reload(ctx, caller.ID)
}

// profileChanged drops the session cache of user, and the public views too
// when user is the site owner whose name and avatar they show.
func (s *UserService) profileChanged(ctx context.Context, user *model.User) error {
	if err := s.sessionCache.Invalidate(ctx, user.ID); err != nil {
		return err
	}
	if !model.IsAdmin(user) {
		return nil
	}
	return s.revalidator.Revalidate(ctx, PathHome)
}

// ChangePassword replaces the caller's password after verifying the current
// one. On any failure the stored hash is left as it was.
func (s *UserService) ChangePassword(ctx context.Context, caller *model.User, in validation.ChangePasswordInput) error {
	if err := requireUser(caller); err != nil {
		return err
	}

	if err := validation.ValidateChangePassword(in); err != nil {
		return err
	}

	user, err := s.reload(ctx, caller.ID)
	if err != nil {
		return err
	}

	if !user.HasPassword() {
		return validation.Single("currentPassword", "password change not available for this account")
	}

	if err := s.authService.ComparePassword(in.CurrentPassword, *user.PasswordHash); err != nil {
		return validation.Single("currentPassword", "current password is incorrect")
	}

	hash, err := s.authService.HashPassword(in.NewPassword)
	if err != nil {
		return upstream("hash password", err)
	}

	if err := s.userRepository.UpdatePassword(ctx, user.ID, hash); err != nil {
		return upstream("update password", err)
	}

	slog.Info("password changed", "user_id", user.ID)
	return s.sessionCache.Invalidate(ctx, user.ID)
}

// AttachAvatar points the caller's avatar at an uploaded file and deletes
// the file it replaces.
func (s *UserService) AttachAvatar(ctx context.Context, caller *model.User, asset *model.Asset) (*model.User, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}

	asset, err := validation.ValidateAsset("avatar", asset)
	if err != nil {
		return nil, err
	}

	user, err := s.reload(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	if err := s.assetService.Claim(ctx, user, []string{model.AssetKey(user.Avatar)}, asset); err != nil {
		return nil, err
	}

	if old := model.AssetKey(user.Avatar); old != "" && old != asset.Key {
		if err := s.assetService.Delete(ctx, old); err != nil {
			return nil, err
		}
	}

	if err := s.userRepository.UpdateAvatar(ctx, user.ID, asset); err != nil {
		return nil, upstream("update avatar", err)
	}

	if err := s.profileChanged(ctx, user); err != nil {
		return nil, err
	}
	return s.reload(ctx, user.ID)
}

// DetachAvatar deletes the avatar file and clears the reference. A remote
// failure keeps the reference.
func (s *UserService) DetachAvatar(ctx context.Context, caller *model.User) (*model.User, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}

	user, err := s.reload(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if user.Avatar == nil {
		return user, nil
	}

	if err := s.assetService.Delete(ctx, user.Avatar.Key); err != nil {
		return nil, err
	}

	if err := s.userRepository.UpdateAvatar(ctx, user.ID, nil); err != nil {
		return nil, upstream("clear avatar", err)
	}

	if err := s.profileChanged(ctx, user); err != nil {
		return nil, err
	}
	return s.reload(ctx, user.ID)
}

// DeleteAccount removes the caller's account with every file and row it
// owns. Steps run in order and stop at the first failure; earlier steps are
// not rolled back.
func (s *UserService) DeleteAccount(ctx context.Context, caller *model.User, targetID, confirm string) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	if caller.ID != targetID {
		return unauthorized("you can only delete your own account")
	}
	if confirm != ConfirmDeleteAccount {
		return validation.Single("confirm", "type "+ConfirmDeleteAccount+" to confirm")
	}

	user, err := s.reload(ctx, caller.ID)
	if err != nil {
		return err
	}

	keys, err := s.ownedKeys(ctx, user)
	if err != nil {
		return err
	}

	if err := s.assetService.Delete(ctx, keys...); err != nil {
		return err
	}

	err = s.userRepository.DeleteWithContent(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound("user not found", err)
		}
		return upstream("delete user", err)
	}

	slog.Info("account deleted", "user_id", user.ID, "files", len(keys))

	if err := s.sessionCache.Invalidate(ctx, user.ID); err != nil {
		return err
	}
	if err := s.revalidator.Revalidate(ctx, PathHome, PathDashboard); err != nil {
		return err
	}

	if err := s.emailService.SendAccountDeletedEmail(ctx, user.Email, user.Name); err != nil {
		slog.Warn("failed to send account deleted email", "user_id", user.ID, "error", err)
	}
	return nil
}

// ownedKeys gathers every storage key referenced by the user's rows, plus
// uploads that were never attached. Their ledger rows go with the account,
// so the sweep could not collect them afterwards.
func (s *UserService) ownedKeys(ctx context.Context, user *model.User) ([]string, error) {
	keys, err := s.assetService.UploadedKeys(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if k := model.AssetKey(user.Avatar); k != "" {
		keys = append(keys, k)
	}

	about, err := s.aboutRepository.ByOwner(ctx, user.ID)
	switch {
	case err == nil:
		keys = append(keys, about.AssetKeys()...)
	case !errors.Is(err, repository.ErrAboutNotFound):
		return nil, upstream("get about", err)
	}

	imageKeys, err := s.projectRepository.ImageKeysByOwner(ctx, user.ID)
	if err != nil {
		return nil, upstream("list project image keys", err)
	}
	return append(keys, imageKeys...), nil
}

// Promote makes the account with email the admin. It refuses when another
// admin already exists.
func (s *UserService) Promote(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepository.ByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound(fmt.Sprintf("no account for %s", email), err)
		}
		return nil, upstream("get user by email", err)
	}

	admin, err := s.userRepository.FirstAdmin(ctx)
	switch {
	case err == nil && admin.ID == user.ID:
		return user, nil
	case err == nil:
		return nil, conflict("an admin already exists: "+admin.Email, nil)
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, upstream("get admin", err)
	}

	if err := s.userRepository.UpdateRole(ctx, user.ID, model.RoleAdmin); err != nil {
		return nil, upstream("update role", err)
	}

	slog.Info("user promoted to admin", "user_id", user.ID)
	if err := s.sessionCache.Invalidate(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := s.revalidator.Revalidate(ctx, PathHome); err != nil {
		return nil, err
	}
	return s.reload(ctx, user.ID)
}
