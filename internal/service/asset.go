package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/storage"
	"github.com/templui/folio/internal/validation"
)

// UploadRequest is phase one of the two-phase upload: the file is pushed to
// storage and a handle returned. Attaching the handle is a separate call.
type UploadRequest struct {
	Kind   string
	Header *multipart.FileHeader

	// ProjectID or Existing identify how many images the target project
	// already holds for kind project-image.
	ProjectID string
	Existing  int
}

// AssetService owns the remote side of every asset reference.
type AssetService struct {
	storage           storage.Storage
	uploadRepository  repository.UploadRepository
	projectRepository repository.ProjectRepository
}

func NewAssetService(
	storage storage.Storage,
	uploadRepository repository.UploadRepository,
	projectRepository repository.ProjectRepository,
) *AssetService {
	return &AssetService{
		storage:           storage,
		uploadRepository:  uploadRepository,
		projectRepository: projectRepository,
	}
}

func (s *AssetService) Upload(ctx context.Context, caller *model.User, req UploadRequest) (*model.Asset, error) {
	if req.Kind == model.UploadKindAvatar {
		if err := requireUser(caller); err != nil {
			return nil, err
		}
	} else if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	constraints, ok := validation.ConstraintsFor(req.Kind)
	if !ok {
		return nil, validation.Single("kind", fmt.Sprintf("unknown upload kind %q", req.Kind))
	}
	if req.Header == nil {
		return nil, validation.Single("file", "file is required")
	}

	if req.Kind == model.UploadKindProjectImage {
		if err := s.checkImageCap(ctx, caller, req); err != nil {
			return nil, err
		}
	}

	mimeType, err := validation.ValidateFile(req.Header, constraints)
	if err != nil {
		return nil, validation.Single("file", err.Error())
	}

	file, err := req.Header.Open()
	if err != nil {
		return nil, upstream("open upload", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(req.Header.Filename))
	key := fmt.Sprintf("%s/%s/%s%s", req.Kind, caller.ID, uuid.New().String(), ext)

	err = s.storage.Save(ctx, key, file, mimeType)
	if err != nil {
		return nil, upstream("save upload", err)
	}

	asset := &model.Asset{
		URL:  s.storage.URL(key),
		Key:  key,
		Name: filepath.Base(req.Header.Filename),
	}

	err = s.uploadRepository.Create(ctx, &model.Upload{
		ID:        uuid.New().String(),
		UserID:    caller.ID,
		Key:       key,
		URL:       asset.URL,
		Kind:      req.Kind,
		Size:      req.Header.Size,
		MimeType:  mimeType,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		// Without a ledger row the sweep could never collect the file.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "key", key)
		}
		return nil, upstream("record upload", err)
	}

	slog.Info("file uploaded", "user_id", caller.ID, "kind", req.Kind, "key", key, "size", req.Header.Size)
	return asset, nil
}

// checkImageCap rejects a project image upload before storage is touched
// when the project is already full. With project_id the count comes from the
// stored project. Without it the upload targets a project that is not saved
// yet and existing is the client's count; ValidateProject enforces the same
// cap when that project is written, and unattached files fall to the sweep.
func (s *AssetService) checkImageCap(ctx context.Context, caller *model.User, req UploadRequest) error {
	count := req.Existing
	if req.ProjectID != "" {
		project, err := s.projectRepository.ByID(ctx, req.ProjectID)
		if err != nil {
			if errors.Is(err, repository.ErrProjectNotFound) {
				return notFound("project not found", err)
			}
			return upstream("get project", err)
		}
		if err := requireOwner(caller, project.CreatedByID); err != nil {
			return err
		}
		count = len(project.Images)
	}

	if count >= model.MaxProjectImages {
		return validation.Single("file", fmt.Sprintf("a project can have at most %d images", model.MaxProjectImages))
	}
	return nil
}

// Delete removes keys from remote storage and drops their ledger rows.
// Empty keys are ignored. A storage failure is returned as ErrUpstream and
// leaves the ledger untouched.
func (s *AssetService) Delete(ctx context.Context, keys ...string) error {
	keys = compactKeys(keys)
	if len(keys) == 0 {
		return nil
	}

	var err error
	if len(keys) == 1 {
		err = s.storage.Delete(ctx, keys[0])
	} else {
		err = s.storage.DeleteMany(ctx, keys)
	}
	if err != nil {
		slog.Error("remote delete failed", "keys", keys, "error", err)
		return &Error{Kind: ErrUpstream, Message: "could not delete the stored file, nothing was changed", Err: err}
	}

	if err := s.uploadRepository.DeleteByKeys(ctx, keys); err != nil {
		slog.Warn("failed to drop upload ledger rows", "keys", keys, "error", err)
	}
	return nil
}

// Claim checks that caller may reference every handle in assets. A key is
// accepted when current already references it or when caller uploaded it;
// in the latter case the URL is replaced with the one recorded at upload.
func (s *AssetService) Claim(ctx context.Context, caller *model.User, current []string, assets ...*model.Asset) error {
	held := make(map[string]struct{}, len(current))
	for _, k := range current {
		held[k] = struct{}{}
	}

	var pending []string
	for _, a := range assets {
		if a == nil || a.Key == "" {
			continue
		}
		if _, ok := held[a.Key]; !ok {
			pending = append(pending, a.Key)
		}
	}
	pending = compactKeys(pending)
	if len(pending) == 0 {
		return nil
	}

	if err := requireUser(caller); err != nil {
		return err
	}
	uploads, err := s.uploadRepository.ByUserAndKeys(ctx, caller.ID, pending)
	if err != nil {
		return upstream("look up uploads", err)
	}
	byKey := make(map[string]*model.Upload, len(uploads))
	for _, u := range uploads {
		byKey[u.Key] = u
	}

	for _, a := range assets {
		if a == nil || a.Key == "" {
			continue
		}
		if _, ok := held[a.Key]; ok {
			continue
		}
		u, ok := byKey[a.Key]
		if !ok {
			slog.Warn("rejected foreign storage key", "user_id", caller.ID, "key", a.Key)
			return unauthorized("you can only attach files you uploaded")
		}
		a.URL = u.URL
	}
	return nil
}

// UploadedKeys lists every key userID pushed to storage, attached or not.
func (s *AssetService) UploadedKeys(ctx context.Context, userID string) ([]string, error) {
	keys, err := s.uploadRepository.KeysByUser(ctx, userID)
	if err != nil {
		return nil, upstream("list uploads", err)
	}
	return keys, nil
}

func compactKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// staleKeys returns the keys of before that are absent from after.
func staleKeys(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, k := range after {
		keep[k] = struct{}{}
	}
	var out []string
	for _, k := range before {
		if _, ok := keep[k]; !ok && k != "" {
			out = append(out, k)
		}
	}
	return out
}
