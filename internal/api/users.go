package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/motoinvent/internal/auth"
	"github.com/erazemk/motoinvent/internal/model"
	"github.com/erazemk/motoinvent/internal/store"
)

// UsersHandler manages workshop accounts. All routes are admin only.
type UsersHandler struct {
	DB *sql.DB
}

type userRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list users", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	switch {
	case req.Username == "":
		jsonError(w, http.StatusBadRequest, "username required")
		return
	case !model.ValidRole(req.Role):
		jsonError(w, http.StatusBadRequest, "role must be admin, manager or user")
		return
	}

	hash, ok := hashNewPassword(w, req.Password)
	if !ok {
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Username, hash, req.Role)
	if err != nil {
		jsonError(w, http.StatusConflict, "username already exists")
		return
	}

	slog.Info("user created", "user", GetClaims(r.Context()).Username, "new_user", user.Username, "role", user.Role)
	jsonResponse(w, http.StatusCreated, user)
}

// ResetPassword handles PUT /api/users/{id}/password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	hash, ok := hashNewPassword(w, req.Password)
	if !ok {
		return
	}

	target, err := store.GetUser(r.Context(), h.DB, id)
	if err == nil && (target == nil || target.DeletedAt != nil) {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	if err == nil {
		err = store.UpdateUserPassword(r.Context(), h.DB, id, hash)
	}
	if err != nil {
		slog.Error("failed to reset password", "target_user_id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("user password reset", "user", GetClaims(r.Context()).Username, "target_user", target.Username)
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/users/{id}. Admins cannot delete themselves.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if claims.UserID == id {
		jsonError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}
	if err := store.DeleteUser(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	slog.Info("user deleted", "user", claims.Username, "deleted_user_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func pathUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

// hashNewPassword validates and hashes password, writing the error response
// itself when it fails.
func hashNewPassword(w http.ResponseWriter, password string) (string, bool) {
	if err := model.ValidatePassword(password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		slog.Error("hashing password", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return "", false
	}
	return hash, true
}
