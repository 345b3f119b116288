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

var contactPaths = []string{PathHome, PathContact, PathDashboardContact}

type ContactService struct {
	contactRepository repository.ContactRepository
	revalidator       *Revalidator
}

func NewContactService(contactRepository repository.ContactRepository, revalidator *Revalidator) *ContactService {
	return &ContactService{
		contactRepository: contactRepository,
		revalidator:       revalidator,
	}
}

// Get returns the caller's contact details, or nil when none exist yet.
func (s *ContactService) Get(ctx context.Context, caller *model.User) (*model.Contact, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.byOwner(ctx, caller.ID)
}

func (s *ContactService) byOwner(ctx context.Context, ownerID string) (*model.Contact, error) {
	contact, err := s.contactRepository.ByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, nil
		}
		return nil, upstream("get contact", err)
	}
	return contact, nil
}

func (s *ContactService) Save(ctx context.Context, caller *model.User, in validation.ContactInput) (*model.Contact, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	contact, err := validation.ValidateContact(in)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	contact.ID = uuid.New().String()
	contact.CreatedByID = caller.ID
	contact.CreatedAt = now
	contact.UpdatedAt = now

	if err := s.contactRepository.Upsert(ctx, contact); err != nil {
		return nil, upstream("save contact", err)
	}

	slog.Info("contact saved", "user_id", caller.ID)

	if err := s.revalidator.Revalidate(ctx, contactPaths...); err != nil {
		return nil, err
	}
	return s.byOwner(ctx, caller.ID)
}

// Delete reports false when there was nothing to delete.
func (s *ContactService) Delete(ctx context.Context, caller *model.User) (bool, error) {
	if err := requireAdmin(caller); err != nil {
		return false, err
	}

	err := s.contactRepository.DeleteByOwner(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return false, nil
		}
		return false, upstream("delete contact", err)
	}

	slog.Info("contact deleted", "user_id", caller.ID)
	return true, s.revalidator.Revalidate(ctx, contactPaths...)
}
