package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/softdesk/softdesk-api/pkg/auth"
	"github.com/softdesk/softdesk-api/pkg/models"
	"github.com/softdesk/softdesk-api/pkg/services"
)

// UserListItem is the compact shape used for user listings.
type UserListItem struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func newUserListItem(u *models.User) UserListItem {
	return UserListItem{ID: u.ID.String(), Username: u.Username}
}

// UsersHandler handles user account HTTP requests.
type UsersHandler struct {
	users  services.UserService
	logger *zap.Logger
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(users services.UserService, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{users: users, logger: logger}
}

// RegisterRoutes registers the users handler's routes on the given mux.
func (h *UsersHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/users", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/users", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/users/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/users/{id}", authMiddleware.RequireAuth(h.Replace))
	mux.HandleFunc("PATCH /api/users/{id}", authMiddleware.RequireAuth(h.Patch))
	mux.HandleFunc("DELETE /api/users/{id}", authMiddleware.RequireAuth(h.Delete))
}

// List handles GET /api/users
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	users, err := h.users.List(r.Context(), actor)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	items := make([]UserListItem, 0, len(users))
	for _, u := range users {
		items = append(items, newUserListItem(u))
	}
	if err := WriteJSON(w, http.StatusOK, items); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/users
// Only administrators may register new accounts.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req services.CreateUserRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	user, err := h.users.Create(r.Context(), actor, &req)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, user); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/users/{id}
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), actor, id)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, user); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Replace handles PUT /api/users/{id}
func (h *UsersHandler) Replace(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	var req services.CreateUserRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	user, err := h.users.Replace(r.Context(), actor, id, &req)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, user); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Patch handles PATCH /api/users/{id}
func (h *UsersHandler) Patch(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	var req services.PatchUserRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	user, err := h.users.Patch(r.Context(), actor, id, &req)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, user); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/users/{id}
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), actor, id); err != nil {
		RespondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
