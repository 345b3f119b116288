package handler

import (
	"net/http"

	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/service"
	"github.com/templui/folio/internal/validation"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	viewService    *service.ViewService
}

func NewProjectHandler(projectService *service.ProjectService, viewService *service.ViewService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		viewService:    viewService,
	}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.viewService.AdminProjects(r.Context(), ctxkeys.User(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.Get(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, project)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validation.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	project, err := h.projectService.Create(r.Context(), ctxkeys.User(r.Context()), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in validation.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	project, err := h.projectService.Update(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, project)
}

// Delete expects {"confirm": "DELETE MY PROJECT"}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var body confirmBody
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	err := h.projectService.Delete(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"), body.Confirm)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, nil)
}

func (h *ProjectHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.DeleteImage(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"), r.PathValue("imageID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, project)
}
