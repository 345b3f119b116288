package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
)

// IdentityResolver turns a session token into the current user row.
type IdentityResolver struct {
	authService    *AuthService
	userRepository repository.UserRepository
}

func NewIdentityResolver(authService *AuthService, userRepository repository.UserRepository) *IdentityResolver {
	return &IdentityResolver{
		authService:    authService,
		userRepository: userRepository,
	}
}

// Resolve re-reads the user on every call so role changes apply immediately.
// Missing, expired or tampered tokens and tokens of deleted accounts resolve
// to a nil user without error.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*model.User, string, error) {
	if token == "" {
		return nil, "", nil
	}

	claims, err := r.authService.VerifyJWT(token)
	if err != nil {
		slog.Debug("rejected session token", "error", err)
		return nil, "", nil
	}

	user, err := r.userRepository.ByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", nil
		}
		return nil, "", err
	}

	return user, claims.SessionID, nil
}
