package web

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/erazemk/motoinvent/internal/model"
	"github.com/erazemk/motoinvent/internal/store"
	"github.com/erazemk/motoinvent/internal/websocket"
	webembed "github.com/erazemk/motoinvent/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string, inv *store.Inventory, hub *websocket.Hub) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	static, err := webembed.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("opening static assets: %w", err)
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
		Inventory: inv,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)

	page := func(h http.HandlerFunc) http.Handler { return cookieAuth(h) }
	manager := func(h http.HandlerFunc) http.Handler { return cookieAuth(requireRole(model.RoleManager, h)) }
	admin := func(h http.HandlerFunc) http.Handler { return cookieAuth(requireRole(model.RoleAdmin, h)) }

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	mux.Handle("GET /{$}", page(s.Dashboard))
	mux.Handle("GET /scan", page(s.ScanPage))
	mux.Handle("GET /models/{model}/print", page(s.PrintPage))
	mux.Handle("GET /ws", page(hub.ServeHTTP))

	mux.Handle("POST /models/{model}/items", manager(s.ItemSubmit))
	mux.Handle("POST /models/{model}/items/{id}/delete", manager(s.ItemDelete))
	mux.Handle("POST /models/{model}/items/{id}/edit", manager(s.EditBegin))
	mux.Handle("POST /models/{model}/edit/cancel", manager(s.EditCancel))

	mux.Handle("GET /users", admin(s.UsersPage))
	mux.Handle("POST /users", admin(s.UserCreateSubmit))
	mux.Handle("POST /users/{id}/password", admin(s.UserResetPasswordSubmit))
	mux.Handle("POST /users/{id}/delete", admin(s.UserDeleteSubmit))

	mux.Handle("GET /settings", page(s.SettingsPage))
	mux.Handle("POST /settings", page(s.SettingsSubmit))

	return mux, nil
}
