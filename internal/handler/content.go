package handler

import (
	"net/http"

	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/service"
	"github.com/templui/folio/internal/validation"
)

// ContentHandler serves the owner's dashboard endpoints for the About and
// Contact singletons.
type ContentHandler struct {
	aboutService   *service.AboutService
	contactService *service.ContactService
	viewService    *service.ViewService
}

func NewContentHandler(aboutService *service.AboutService, contactService *service.ContactService, viewService *service.ViewService) *ContentHandler {
	return &ContentHandler{
		aboutService:   aboutService,
		contactService: contactService,
		viewService:    viewService,
	}
}

func (h *ContentHandler) GetAbout(w http.ResponseWriter, r *http.Request) {
	about, err := h.viewService.AdminAbout(r.Context(), ctxkeys.User(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, about)
}

func (h *ContentHandler) SaveAbout(w http.ResponseWriter, r *http.Request) {
	var in validation.AboutInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	about, err := h.aboutService.Save(r.Context(), ctxkeys.User(r.Context()), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, about)
}

func (h *ContentHandler) DeleteAbout(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.aboutService.Delete(r.Context(), ctxkeys.User(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !deleted {
		respondFailure(w, http.StatusNotFound, "about section not found")
		return
	}
	respondOK(w, nil)
}

// AttachAboutAsset points {field} at the {url, key} handle of an upload.
func (h *ContentHandler) AttachAboutAsset(w http.ResponseWriter, r *http.Request) {
	var asset model.Asset
	if err := decodeJSON(w, r, &asset); err != nil {
		respondError(w, r, err)
		return
	}

	about, err := h.aboutService.AttachAsset(r.Context(), ctxkeys.User(r.Context()), r.PathValue("field"), &asset)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, about)
}

func (h *ContentHandler) DetachAboutAsset(w http.ResponseWriter, r *http.Request) {
	about, err := h.aboutService.DetachAsset(r.Context(), ctxkeys.User(r.Context()), r.PathValue("field"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, about)
}

func (h *ContentHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	contact, err := h.viewService.AdminContact(r.Context(), ctxkeys.User(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, contact)
}

func (h *ContentHandler) SaveContact(w http.ResponseWriter, r *http.Request) {
	var in validation.ContactInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	contact, err := h.contactService.Save(r.Context(), ctxkeys.User(r.Context()), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, contact)
}

func (h *ContentHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.contactService.Delete(r.Context(), ctxkeys.User(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !deleted {
		respondFailure(w, http.StatusNotFound, "contact details not found")
		return
	}
	respondOK(w, nil)
}
