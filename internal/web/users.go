package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/motoinvent/internal/auth"
	"github.com/erazemk/motoinvent/internal/model"
	"github.com/erazemk/motoinvent/internal/store"
)

// UsersPage handles GET /users (admin only).
func (s *Server) UsersPage(w http.ResponseWriter, r *http.Request) {
	s.renderUsers(w, r, "", "")
}

func (s *Server) renderUsers(w http.ResponseWriter, r *http.Request, errMsg, success string) {
	users, err := store.ListUsers(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list users", "error", err)
	}

	data := s.page(r, "Usuarios")
	data.Error = errMsg
	data.Success = success
	s.Templates.Render(w, "users.html", &struct {
		PageData
		Users []model.User
		Roles []string
	}{
		PageData: data,
		Users:    users,
		Roles:    []string{model.RoleUser, model.RoleManager, model.RoleAdmin},
	})
}

// UserCreateSubmit handles POST /users (admin only).
func (s *Server) UserCreateSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	role := r.FormValue("role")

	if username == "" || !model.ValidRole(role) {
		s.renderUsers(w, r, "Completa usuario y rol.", "")
		return
	}
	if err := model.ValidatePassword(password); err != nil {
		s.renderUsers(w, r, "La contraseña debe tener al menos 8 caracteres.", "")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}
	if _, err := store.CreateUser(r.Context(), s.DB, username, hash, role); err != nil {
		s.renderUsers(w, r, "El usuario ya existe.", "")
		return
	}

	slog.Info("user created", "user", GetWebClaims(r.Context()).Username, "new_user", username, "role", role)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// UserResetPasswordSubmit handles POST /users/{id}/password (admin only).
func (s *Server) UserResetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	newPassword := r.FormValue("new_password")
	if err := model.ValidatePassword(newPassword); err != nil {
		s.renderUsers(w, r, "La contraseña debe tener al menos 8 caracteres.", "")
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}
	if err := store.UpdateUserPassword(r.Context(), s.DB, id, hash); err != nil {
		slog.Error("failed to reset password", "error", err)
		s.renderUsers(w, r, "No se pudo cambiar la contraseña.", "")
		return
	}

	slog.Info("user password reset", "user", GetWebClaims(r.Context()).Username, "target_user_id", id)
	s.renderUsers(w, r, "", "Contraseña actualizada.")
}

// UserDeleteSubmit handles POST /users/{id}/delete (admin only).
func (s *Server) UserDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	claims := GetWebClaims(r.Context())
	if claims.UserID == id {
		s.renderUsers(w, r, "No puedes eliminar tu propio usuario.", "")
		return
	}
	if err := store.DeleteUser(r.Context(), s.DB, id); err != nil {
		s.renderUsers(w, r, "El usuario no existe.", "")
		return
	}

	slog.Info("user deleted", "user", claims.Username, "deleted_user_id", id)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// SettingsPage handles GET /settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	data := s.page(r, "Ajustes")
	s.Templates.Render(w, "settings.html", &data)
}

// SettingsSubmit handles POST /settings (change own password).
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	data := s.page(r, "Ajustes")

	if msg := s.changePassword(r, claims.UserID, r.FormValue("current_password"), r.FormValue("new_password")); msg != "" {
		data.Error = msg
	} else {
		slog.Info("user changed own password", "user", claims.Username)
		data.Success = "Contraseña actualizada."
	}
	s.Templates.Render(w, "settings.html", &data)
}

// changePassword returns a message for the settings page, or "" on success.
func (s *Server) changePassword(r *http.Request, userID int64, current, next string) string {
	if current == "" || next == "" {
		return "Escribe la contraseña actual y la nueva."
	}
	if err := model.ValidatePassword(next); err != nil {
		return "La contraseña debe tener al menos 8 caracteres."
	}

	user, err := store.GetUser(r.Context(), s.DB, userID)
	if err != nil || user == nil {
		slog.Error("failed to load user", "user_id", userID, "error", err)
		return "No se pudo leer el usuario."
	}
	if err := auth.CheckPassword(user.PasswordHash, current); err != nil {
		return "La contraseña actual no es correcta."
	}

	hash, err := auth.HashPassword(next)
	if err == nil {
		err = store.UpdateUserPassword(r.Context(), s.DB, userID, hash)
	}
	if err != nil {
		slog.Error("failed to change password", "user_id", userID, "error", err)
		return "No se pudo guardar la contraseña."
	}
	return ""
}
