package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/softdesk/softdesk-api/pkg/auth"
	"github.com/softdesk/softdesk-api/pkg/models"
	"github.com/softdesk/softdesk-api/pkg/services"
)

// CommentListItem is the compact shape used for comment listings.
type CommentListItem struct {
	UID   string `json:"uuid"`
	Issue string `json:"issue"`
}

func newCommentListItem(c *models.Comment) CommentListItem {
	return CommentListItem{UID: c.UID.String(), Issue: c.IssueID.String()}
}

// CommentsHandler handles comment HTTP requests. Comments are addressed by
// their public uuid, never by an internal row id.
type CommentsHandler struct {
	comments services.CommentService
	logger   *zap.Logger
}

// NewCommentsHandler creates a new comments handler.
func NewCommentsHandler(comments services.CommentService, logger *zap.Logger) *CommentsHandler {
	return &CommentsHandler{comments: comments, logger: logger}
}

// RegisterRoutes registers the comments handler's routes on the given mux.
func (h *CommentsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/comments", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/comments", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/comments/{uid}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/comments/{uid}", authMiddleware.RequireAuth(h.Replace))
	mux.HandleFunc("PATCH /api/comments/{uid}", authMiddleware.RequireAuth(h.Patch))
	mux.HandleFunc("DELETE /api/comments/{uid}", authMiddleware.RequireAuth(h.Delete))
}

// List handles GET /api/comments
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	comments, err := h.comments.List(r.Context(), actor)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	items := make([]CommentListItem, 0, len(comments))
	for _, c := range comments {
		items = append(items, newCommentListItem(c))
	}
	if err := WriteJSON(w, http.StatusOK, items); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/comments
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req services.CreateCommentRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	comment, err := h.comments.Create(r.Context(), actor, &req)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, comment); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/comments/{uid}
func (h *CommentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	uid, ok := pathID(w, r, h.logger, "uid")
	if !ok {
		return
	}

	comment, err := h.comments.Get(r.Context(), actor, uid)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, comment); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Replace handles PUT /api/comments/{uid}
func (h *CommentsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	uid, ok := pathID(w, r, h.logger, "uid")
	if !ok {
		return
	}

	var req services.CreateCommentRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	comment, err := h.comments.Replace(r.Context(), actor, uid, &req)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, comment); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Patch handles PATCH /api/comments/{uid}
func (h *CommentsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	uid, ok := pathID(w, r, h.logger, "uid")
	if !ok {
		return
	}

	var req services.PatchCommentRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	comment, err := h.comments.Patch(r.Context(), actor, uid, &req)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, comment); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/comments/{uid}
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	uid, ok := pathID(w, r, h.logger, "uid")
	if !ok {
		return
	}

	if err := h.comments.Delete(r.Context(), actor, uid); err != nil {
		RespondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
