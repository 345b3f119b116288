package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/templui/folio/internal/cache"
)

// Paths whose cached views are dropped after a successful mutation.
const (
	PathHome              = "/"
	PathAbout             = "/about"
	PathContact           = "/contact"
	PathProjects          = "/projects"
	PathDashboard         = "/dashboard"
	PathDashboardAbout    = "/dashboard/about"
	PathDashboardContact  = "/dashboard/contact"
	PathDashboardProjects = "/dashboard/projects"
	PathDashboardMessages = "/dashboard/messages"
	PathDashboardStats    = "/dashboard/analytics"
)

const viewKeyPrefix = "view:"

// viewKey is the cache key of one variant of the view rendered at path.
func viewKey(path string, variant ...string) string {
	return viewKeyPrefix + path + "|" + strings.Join(variant, "|")
}

// Revalidator drops cached views after writes.
type Revalidator struct {
	cache cache.Cache
}

func NewRevalidator(c cache.Cache) *Revalidator {
	return &Revalidator{cache: c}
}

// Revalidate drops every cached view at or below each path. "/" therefore
// drops all views.
func (r *Revalidator) Revalidate(ctx context.Context, paths ...string) error {
	for _, path := range paths {
		n, err := r.cache.DeletePrefix(ctx, viewKeyPrefix+path)
		if err != nil {
			return upstream("revalidate "+path, err)
		}
		slog.Debug("revalidated", "path", path, "dropped", n)
	}
	return nil
}
