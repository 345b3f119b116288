package handler

import (
	"log/slog"
	"net/http"

	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/service"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	viewService      *service.ViewService
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService, viewService *service.ViewService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		viewService:      viewService,
	}
}

// Visit counts one page view unless the user agent is a bot.
func (h *AnalyticsHandler) Visit(w http.ResponseWriter, r *http.Request) {
	counted, err := h.analyticsService.TrackVisitor(r.Context(), r.UserAgent())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]bool{"counted": counted})
}

func (h *AnalyticsHandler) ResumeDownload(w http.ResponseWriter, r *http.Request) {
	err := h.analyticsService.TrackResumeDownload(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, nil)
}

// Resume counts a download and redirects to the owner's resume file.
func (h *AnalyticsHandler) Resume(w http.ResponseWriter, r *http.Request) {
	url, err := h.viewService.ResumeURL(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if url == "" {
		respondFailure(w, http.StatusNotFound, "no resume available")
		return
	}

	if err := h.analyticsService.TrackResumeDownload(r.Context()); err != nil {
		slog.Warn("failed to count resume download", "error", err)
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.viewService.AdminAnalytics(r.Context(), ctxkeys.User(r.Context()), queryInt(r, "days", 0))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, summary)
}
