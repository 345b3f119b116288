package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// statusRecorder keeps the status and body size for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
		sr.ResponseWriter.WriteHeader(code)
	}
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.WriteHeader(http.StatusOK)
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) code() int {
	if sr.status == 0 {
		return http.StatusOK
	}
	return sr.status
}

// accessEntry is filled in by middleware further down the chain, which
// runs on a derived request the logger never sees.
type accessEntry struct {
	userID    string
	sessionID string
	transport string
}

type accessEntryKey struct{}

// noteSession records the resolved session on the access log entry, if any.
func noteSession(ctx context.Context, userID, sessionID string, fromCookie bool) {
	entry, ok := ctx.Value(accessEntryKey{}).(*accessEntry)
	if !ok {
		return
	}
	entry.userID = userID
	entry.sessionID = sessionID
	entry.transport = "bearer"
	if fromCookie {
		entry.transport = "cookie"
	}
}

// Uploaded files are served in bulk and would drown the log.
var quietPrefixes = []string{
	"/files/",
	"/favicon.ico",
}

// RequestLogging writes one access log line per request. Server errors log
// at error level and client errors at warn.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range quietPrefixes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		start := time.Now()
		entry := &accessEntry{}
		sr := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(sr, r.WithContext(context.WithValue(r.Context(), accessEntryKey{}, entry)))

		status := sr.code()
		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Int("bytes", sr.bytes),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("client_ip", getClientIP(r)),
		}
		if entry.userID != "" {
			attrs = append(attrs,
				slog.String("user_id", entry.userID),
				slog.String("session_id", entry.sessionID),
				slog.String("auth", entry.transport),
			)
		}

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		slog.LogAttrs(r.Context(), level, "http request", attrs...)
	})
}
