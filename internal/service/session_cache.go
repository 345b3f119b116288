package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/templui/folio/internal/cache"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
)

// SessionCache holds the identity projection served by GET /api/me, keyed by
// user and session id. Profile mutations drop every session of the user.
type SessionCache struct {
	cache          cache.Cache
	userRepository repository.UserRepository
	ttl            time.Duration
}

func NewSessionCache(c cache.Cache, userRepository repository.UserRepository, ttl time.Duration) *SessionCache {
	return &SessionCache{
		cache:          c,
		userRepository: userRepository,
		ttl:            ttl,
	}
}

func sessionPrefix(userID string) string {
	return "session:" + userID + ":"
}

// Identity returns the cached projection, loading it on a miss.
func (c *SessionCache) Identity(ctx context.Context, userID, sid string) (*model.Identity, error) {
	key := sessionPrefix(userID) + sid

	identity, err := cache.GetJSON[*model.Identity](ctx, c.cache, key)
	if err == nil && identity != nil {
		return identity, nil
	}
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		slog.Warn("session cache read failed", "user_id", userID, "error", err)
	}

	user, err := c.userRepository.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, unauthorized("sign in to continue")
		}
		return nil, upstream("load session user", err)
	}

	identity = user.Identity()
	if err := cache.SetJSON(ctx, c.cache, key, identity, c.ttl); err != nil {
		slog.Warn("session cache write failed", "user_id", userID, "error", err)
	}
	return identity, nil
}

// Invalidate drops every cached session of userID.
func (c *SessionCache) Invalidate(ctx context.Context, userID string) error {
	n, err := c.cache.DeletePrefix(ctx, sessionPrefix(userID))
	if err != nil {
		return upstream("invalidate sessions", err)
	}
	slog.Debug("sessions invalidated", "user_id", userID, "count", n)
	return nil
}
