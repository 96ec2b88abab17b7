package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/motoinvent/internal/auth"
	"github.com/erazemk/motoinvent/internal/store"
)

const loginTitle = "Ingresar"

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: loginTitle})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	fail := func(msg string) {
		s.Templates.Render(w, "login.html", &PageData{Title: loginTitle, Error: msg})
	}

	if username == "" || password == "" {
		fail("Escribe usuario y contraseña.")
		return
	}

	user, err := store.GetUserByUsername(r.Context(), s.DB, username)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
	}
	if err != nil || user == nil {
		fail("Usuario o contraseña incorrectos.")
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		slog.Warn("login failed", "username", username, "remote", r.RemoteAddr)
		fail("Usuario o contraseña incorrectos.")
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, user.ID, user.Username, user.Role)
	if err != nil {
		slog.Error("generating token", "error", err)
		fail("Error al ingresar.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   86400, // 24 hours
	})

	slog.Info("user logged in", "user", user.Username, "role", user.Role)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout and revokes the session token.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value); err == nil {
			if err := store.RevokeToken(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
				slog.Error("revoking token", "error", err)
			}
		}
	}

	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
