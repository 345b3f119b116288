package handler

import (
	"errors"
	"net/http"

	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/service"
	"github.com/templui/folio/internal/validation"
)

// maxUploadBody is above the largest per-kind limit so the size check in
// validation reports a proper issue instead of a truncated body.
const maxUploadBody = 10 << 20

type UploadHandler struct {
	assetService *service.AssetService
}

func NewUploadHandler(assetService *service.AssetService) *UploadHandler {
	return &UploadHandler{assetService: assetService}
}

// Upload stores one multipart "file" and returns its {url, key} handle.
// project-image uploads name their target with project_id or existing.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, validation.Single("file", "file is too large"))
			return
		}
		respondError(w, r, validation.Single("file", "expected a multipart form with a file"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req := service.UploadRequest{
		Kind:      r.PathValue("kind"),
		ProjectID: r.FormValue("project_id"),
		Existing:  formInt(r, "existing"),
	}
	if _, header, err := r.FormFile("file"); err == nil {
		req.Header = header
	}

	asset, err := h.assetService.Upload(r.Context(), ctxkeys.User(r.Context()), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, asset)
}
