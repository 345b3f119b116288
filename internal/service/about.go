package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/validation"
)

var aboutPaths = []string{PathHome, PathAbout, PathDashboardAbout}

type AboutService struct {
	aboutRepository repository.AboutRepository
	assetService    *AssetService
	revalidator     *Revalidator
}

func NewAboutService(
	aboutRepository repository.AboutRepository,
	assetService *AssetService,
	revalidator *Revalidator,
) *AboutService {
	return &AboutService{
		aboutRepository: aboutRepository,
		assetService:    assetService,
		revalidator:     revalidator,
	}
}

// Get returns the caller's About section, or nil when none exists yet.
func (s *AboutService) Get(ctx context.Context, caller *model.User) (*model.About, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.byOwner(ctx, caller.ID)
}

func (s *AboutService) byOwner(ctx context.Context, ownerID string) (*model.About, error) {
	about, err := s.aboutRepository.ByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrAboutNotFound) {
			return nil, nil
		}
		return nil, upstream("get about", err)
	}
	return about, nil
}

// Save creates or replaces the caller's About section. Files referenced by
// the previous version and not by the new one are deleted remotely first; if
// that fails nothing is written.
func (s *AboutService) Save(ctx context.Context, caller *model.User, in validation.AboutInput) (*model.About, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	about, err := validation.ValidateAbout(in)
	if err != nil {
		return nil, err
	}

	existing, err := s.byOwner(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	var held []string
	if existing != nil {
		held = existing.AssetKeys()
	}
	if err := s.assetService.Claim(ctx, caller, held, about.ProfileImage, about.HeroImage, about.Resume); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	about.ID = uuid.New().String()
	about.CreatedByID = caller.ID
	about.CreatedAt = now
	about.UpdatedAt = now

	if existing != nil {
		if err := s.assetService.Delete(ctx, staleKeys(existing.AssetKeys(), about.AssetKeys())...); err != nil {
			return nil, err
		}
	}

	if err := s.aboutRepository.Upsert(ctx, about); err != nil {
		return nil, upstream("save about", err)
	}

	slog.Info("about saved", "user_id", caller.ID, "about_id", about.ID)

	if err := s.revalidator.Revalidate(ctx, aboutPaths...); err != nil {
		return nil, err
	}
	return s.byOwner(ctx, caller.ID)
}

// Delete removes the caller's About section and its files. It reports false
// when there was nothing to delete.
func (s *AboutService) Delete(ctx context.Context, caller *model.User) (bool, error) {
	if err := requireAdmin(caller); err != nil {
		return false, err
	}

	existing, err := s.byOwner(ctx, caller.ID)
	if err != nil || existing == nil {
		return false, err
	}

	if err := s.assetService.Delete(ctx, existing.AssetKeys()...); err != nil {
		return false, err
	}

	err = s.aboutRepository.DeleteByOwner(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAboutNotFound) {
			return false, nil
		}
		return false, upstream("delete about", err)
	}

	slog.Info("about deleted", "user_id", caller.ID)
	return true, s.revalidator.Revalidate(ctx, aboutPaths...)
}

// AttachAsset points one asset field at a freshly uploaded file, deleting the
// file it replaces.
func (s *AboutService) AttachAsset(ctx context.Context, caller *model.User, field string, asset *model.Asset) (*model.About, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	asset, err := validation.ValidateAsset(field, asset)
	if err != nil {
		return nil, err
	}

	about, current, err := s.assetField(ctx, caller, field)
	if err != nil {
		return nil, err
	}

	if err := s.assetService.Claim(ctx, caller, []string{model.AssetKey(current)}, asset); err != nil {
		return nil, err
	}

	if old := model.AssetKey(current); old != "" && old != asset.Key {
		if err := s.assetService.Delete(ctx, old); err != nil {
			return nil, err
		}
	}

	if err := s.aboutRepository.UpdateAsset(ctx, about.CreatedByID, field, asset); err != nil {
		return nil, upstream("attach about asset", err)
	}

	if err := s.revalidator.Revalidate(ctx, aboutPaths...); err != nil {
		return nil, err
	}
	return s.byOwner(ctx, caller.ID)
}

// DetachAsset deletes the file behind field and clears the reference. The
// reference is kept when the remote delete fails.
func (s *AboutService) DetachAsset(ctx context.Context, caller *model.User, field string) (*model.About, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	about, current, err := s.assetField(ctx, caller, field)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return about, nil
	}

	if err := s.assetService.Delete(ctx, current.Key); err != nil {
		return nil, err
	}

	if err := s.aboutRepository.UpdateAsset(ctx, about.CreatedByID, field, nil); err != nil {
		return nil, upstream("detach about asset", err)
	}

	slog.Info("about asset detached", "user_id", caller.ID, "field", field)

	if err := s.revalidator.Revalidate(ctx, aboutPaths...); err != nil {
		return nil, err
	}
	return s.byOwner(ctx, caller.ID)
}

func (s *AboutService) assetField(ctx context.Context, caller *model.User, field string) (*model.About, *model.Asset, error) {
	about, err := s.byOwner(ctx, caller.ID)
	if err != nil {
		return nil, nil, err
	}
	if about == nil {
		return nil, nil, notFound("create your About section first", repository.ErrAboutNotFound)
	}

	current, ok := about.AssetField(field)
	if !ok {
		return nil, nil, validation.Single("field", "unknown asset field "+field)
	}
	return about, current, nil
}
