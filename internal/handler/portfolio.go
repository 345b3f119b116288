package handler

import (
	"net/http"

	"github.com/templui/folio/internal/service"
)

// PortfolioHandler serves the cached public views.
type PortfolioHandler struct {
	viewService *service.ViewService
}

func NewPortfolioHandler(viewService *service.ViewService) *PortfolioHandler {
	return &PortfolioHandler{viewService: viewService}
}

func (h *PortfolioHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	view, err := h.viewService.Portfolio(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, view)
}

func (h *PortfolioHandler) About(w http.ResponseWriter, r *http.Request) {
	view, err := h.viewService.About(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, view)
}

func (h *PortfolioHandler) Contact(w http.ResponseWriter, r *http.Request) {
	view, err := h.viewService.Contact(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, view)
}

func (h *PortfolioHandler) Projects(w http.ResponseWriter, r *http.Request) {
	view, err := h.viewService.Projects(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, view)
}
