package middleware

import (
	"net/http"

	"github.com/templui/folio/internal/ctxkeys"
)

// WithURLPath adds the current URL's path and the client IP to the context
func WithURLPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxkeys.WithURLPath(r.Context(), r.URL.Path)
		ctx = ctxkeys.WithClientIP(ctx, getClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
