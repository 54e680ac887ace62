package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/softdesk/softdesk-api/pkg/auth"
	"github.com/softdesk/softdesk-api/pkg/models"
	"github.com/softdesk/softdesk-api/pkg/services"
)

// IssueListItem is the compact shape used for issue listings.
type IssueListItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
	Project  string `json:"project"`
}

func newIssueListItem(i *models.Issue) IssueListItem {
	return IssueListItem{
		ID:       i.ID.String(),
		Name:     i.Name,
		Type:     i.Type,
		Priority: i.Priority,
		Status:   i.Status,
		Project:  i.ProjectID.String(),
	}
}

// IssuesHandler handles issue-related HTTP requests.
type IssuesHandler struct {
	issues services.IssueService
	logger *zap.Logger
}

// NewIssuesHandler creates a new issues handler.
func NewIssuesHandler(issues services.IssueService, logger *zap.Logger) *IssuesHandler {
	return &IssuesHandler{issues: issues, logger: logger}
}

// RegisterRoutes registers the issues handler's routes on the given mux.
func (h *IssuesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/issues", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/issues", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/issues/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/issues/{id}", authMiddleware.RequireAuth(h.Replace))
	mux.HandleFunc("PATCH /api/issues/{id}", authMiddleware.RequireAuth(h.Patch))
	mux.HandleFunc("DELETE /api/issues/{id}", authMiddleware.RequireAuth(h.Delete))
}

// List handles GET /api/issues
func (h *IssuesHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	issues, err := h.issues.List(r.Context(), actor)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	items := make([]IssueListItem, 0, len(issues))
	for _, i := range issues {
		items = append(items, newIssueListItem(i))
	}
	if err := WriteJSON(w, http.StatusOK, items); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/issues
// The payload's project field names the target project; the caller must be
// one of its contributors.
func (h *IssuesHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req services.CreateIssueRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	issue, err := h.issues.Create(r.Context(), actor, &req)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, issue); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/issues/{id}
func (h *IssuesHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	issue, err := h.issues.Get(r.Context(), actor, id)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, issue); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Replace handles PUT /api/issues/{id}
func (h *IssuesHandler) Replace(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	var req services.CreateIssueRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	issue, err := h.issues.Replace(r.Context(), actor, id, &req)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, issue); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Patch handles PATCH /api/issues/{id}
// An assignee who is not the author may only send {"status": ...}.
func (h *IssuesHandler) Patch(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	var req services.PatchIssueRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	issue, err := h.issues.Patch(r.Context(), actor, id, &req)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, issue); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/issues/{id}
func (h *IssuesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	if err := h.issues.Delete(r.Context(), actor, id); err != nil {
		RespondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
