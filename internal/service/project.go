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

var projectPaths = []string{PathHome, PathProjects, PathDashboardProjects}

type ProjectService struct {
	projectRepository repository.ProjectRepository
	assetService      *AssetService
	revalidator       *Revalidator
}

func NewProjectService(
	projectRepository repository.ProjectRepository,
	assetService *AssetService,
	revalidator *Revalidator,
) *ProjectService {
	return &ProjectService{
		projectRepository: projectRepository,
		assetService:      assetService,
		revalidator:       revalidator,
	}
}

// List returns every project of the caller, published or not.
func (s *ProjectService) List(ctx context.Context, caller *model.User) ([]*model.Project, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	projects, err := s.projectRepository.ListByOwner(ctx, caller.ID, false)
	if err != nil {
		return nil, upstream("list projects", err)
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, caller *model.User, id string) (*model.Project, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.owned(ctx, caller, id)
}

// owned loads a project and checks the caller owns it.
func (s *ProjectService) owned(ctx context.Context, caller *model.User, id string) (*model.Project, error) {
	project, err := s.projectRepository.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, notFound("project not found", err)
		}
		return nil, upstream("get project", err)
	}
	if err := requireOwner(caller, project.CreatedByID); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Create(ctx context.Context, caller *model.User, in validation.ProjectInput) (*model.Project, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	project, err := validation.ValidateProject(in)
	if err != nil {
		return nil, err
	}

	if err := s.claimImages(ctx, caller, nil, project); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	project.ID = uuid.New().String()
	project.CreatedByID = caller.ID
	project.CreatedAt = now
	project.UpdatedAt = now
	for i := range project.Images {
		project.Images[i].ID = ""
	}

	if err := s.projectRepository.Create(ctx, project); err != nil {
		return nil, upstream("create project", err)
	}

	slog.Info("project created", "user_id", caller.ID, "project_id", project.ID)

	if err := s.revalidator.Revalidate(ctx, projectPaths...); err != nil {
		return nil, err
	}
	return s.owned(ctx, caller, project.ID)
}

// Update replaces the project's fields and image set. Images dropped from the
// set are deleted remotely before the row is written.
func (s *ProjectService) Update(ctx context.Context, caller *model.User, id string, in validation.ProjectInput) (*model.Project, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	existing, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	project, err := validation.ValidateProject(in)
	if err != nil {
		return nil, err
	}

	if err := s.claimImages(ctx, caller, existing.ImageKeys(), project); err != nil {
		return nil, err
	}

	project.ID = existing.ID
	project.CreatedByID = existing.CreatedByID
	project.CreatedAt = existing.CreatedAt
	project.UpdatedAt = time.Now().UTC()

	// Images are matched on storage key; ids sent by the client are ignored.
	byKey := make(map[string]model.ProjectImage, len(existing.Images))
	for _, img := range existing.Images {
		byKey[img.Key] = img
	}
	for i := range project.Images {
		img := &project.Images[i]
		img.ID = ""
		if prev, ok := byKey[img.Key]; ok {
			img.ID = prev.ID
			img.CreatedAt = prev.CreatedAt
		}
	}

	if err := s.assetService.Delete(ctx, staleKeys(existing.ImageKeys(), project.ImageKeys())...); err != nil {
		return nil, err
	}

	err = s.projectRepository.Update(ctx, project)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, notFound("project not found", err)
		}
		return nil, upstream("update project", err)
	}

	slog.Info("project updated", "user_id", caller.ID, "project_id", project.ID)

	if err := s.revalidator.Revalidate(ctx, projectPaths...); err != nil {
		return nil, err
	}
	return s.owned(ctx, caller, project.ID)
}

// claimImages checks the caller may reference every image key of project
// and takes the recorded URL for freshly uploaded ones.
func (s *ProjectService) claimImages(ctx context.Context, caller *model.User, held []string, project *model.Project) error {
	handles := make([]*model.Asset, len(project.Images))
	for i, img := range project.Images {
		handles[i] = &model.Asset{URL: img.URL, Key: img.Key}
	}
	if err := s.assetService.Claim(ctx, caller, held, handles...); err != nil {
		return err
	}
	for i, h := range handles {
		project.Images[i].URL = h.URL
	}
	return nil
}

// Delete removes the project, its image rows and files. confirm must be the
// exact phrase ConfirmDeleteProject.
func (s *ProjectService) Delete(ctx context.Context, caller *model.User, id, confirm string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if confirm != ConfirmDeleteProject {
		return validation.Single("confirm", "type "+ConfirmDeleteProject+" to confirm")
	}

	existing, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.assetService.Delete(ctx, existing.ImageKeys()...); err != nil {
		return err
	}

	err = s.projectRepository.Delete(ctx, existing.ID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return notFound("project not found", err)
		}
		return upstream("delete project", err)
	}

	slog.Info("project deleted", "user_id", caller.ID, "project_id", existing.ID)
	return s.revalidator.Revalidate(ctx, projectPaths...)
}

// DeleteImage removes one image. The remaining images are renumbered and the
// first one becomes cover when the cover was removed.
func (s *ProjectService) DeleteImage(ctx context.Context, caller *model.User, projectID, imageID string) (*model.Project, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	project, err := s.owned(ctx, caller, projectID)
	if err != nil {
		return nil, err
	}

	var target *model.ProjectImage
	for i := range project.Images {
		if project.Images[i].ID == imageID {
			target = &project.Images[i]
			break
		}
	}
	if target == nil {
		return nil, notFound("image not found", repository.ErrProjectImageNotFound)
	}

	if err := s.assetService.Delete(ctx, target.Key); err != nil {
		return nil, err
	}

	_, err = s.projectRepository.DeleteImage(ctx, projectID, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectImageNotFound) {
			return nil, notFound("image not found", err)
		}
		return nil, upstream("delete project image", err)
	}

	slog.Info("project image deleted", "project_id", projectID, "image_id", imageID)

	if err := s.revalidator.Revalidate(ctx, projectPaths...); err != nil {
		return nil, err
	}
	return s.owned(ctx, caller, projectID)
}
