package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/softdesk/softdesk-api/pkg/auth"
	"github.com/softdesk/softdesk-api/pkg/models"
	"github.com/softdesk/softdesk-api/pkg/services"
)

// ProjectListItem is the compact shape used for project listings. Detail
// responses serialize the full model.
type ProjectListItem struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Author *string `json:"author"`
}

func newProjectListItem(p *models.Project) ProjectListItem {
	item := ProjectListItem{
		ID:   p.ID.String(),
		Name: p.Name,
		Type: p.Type,
	}
	if p.AuthorID != nil {
		author := p.AuthorID.String()
		item.Author = &author
	}
	return item
}

// ProjectsHandler handles project-related HTTP requests.
type ProjectsHandler struct {
	projects services.ProjectService
	logger   *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(projects services.ProjectService, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, logger: logger}
}

// RegisterRoutes registers the projects handler's routes on the given mux.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/projects", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/projects", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/projects/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/projects/{id}", authMiddleware.RequireAuth(h.Replace))
	mux.HandleFunc("PATCH /api/projects/{id}", authMiddleware.RequireAuth(h.Patch))
	mux.HandleFunc("DELETE /api/projects/{id}", authMiddleware.RequireAuth(h.Delete))
}

// List handles GET /api/projects
// Returns the projects within the caller's visibility scope.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	projects, err := h.projects.List(r.Context(), actor)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	items := make([]ProjectListItem, 0, len(projects))
	for _, p := range projects {
		items = append(items, newProjectListItem(p))
	}
	if err := WriteJSON(w, http.StatusOK, items); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/projects
// The caller becomes author and first contributor of the new project.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req services.CreateProjectRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	project, err := h.projects.Create(r.Context(), actor, &req)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/projects/{id}
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	project, err := h.projects.Get(r.Context(), actor, id)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Replace handles PUT /api/projects/{id}
func (h *ProjectsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	var req services.CreateProjectRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	project, err := h.projects.Replace(r.Context(), actor, id, &req)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Patch handles PATCH /api/projects/{id}
func (h *ProjectsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	var req services.PatchProjectRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	project, err := h.projects.Patch(r.Context(), actor, id, &req)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/projects/{id}
// Deletes the project and, transitively, its issues and their comments.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	if err := h.projects.Delete(r.Context(), actor, id); err != nil {
		RespondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
