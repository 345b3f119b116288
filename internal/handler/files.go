package handler

import (
	"net/http"
	"strconv"

	"github.com/templui/folio/internal/storage"
)

// FileHandler serves objects held by the in-memory storage driver so local
// development works without a bucket.
type FileHandler struct {
	storage *storage.MemoryStorage
}

func NewFileHandler(s *storage.MemoryStorage) *FileHandler {
	return &FileHandler{storage: s}
}

func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	data, contentType, ok := h.storage.Get(r.PathValue("key"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	_, _ = w.Write(data)
}
