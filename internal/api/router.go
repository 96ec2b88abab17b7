package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/motoinvent/internal/model"
	"github.com/erazemk/motoinvent/internal/scan"
	"github.com/erazemk/motoinvent/internal/store"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, inv *store.Inventory, scanner *scan.Service) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	inventoryHandler := &InventoryHandler{Inventory: inv}
	scanHandler := &ScanHandler{Scanner: scanner, Inventory: inv}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	read := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	write := func(h http.HandlerFunc) http.Handler { return authMW(requireManager(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("PUT /api/auth/password", read(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", read(authHandler.Logout))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Inventory: read (all roles), write (manager+).
	mux.Handle("GET /api/models", read(inventoryHandler.Models))
	mux.Handle("GET /api/inventory", read(inventoryHandler.List))
	mux.Handle("GET /api/inventory/export", read(inventoryHandler.Export))
	mux.Handle("POST /api/inventory/import", write(inventoryHandler.Import))
	mux.Handle("GET /api/models/{model}/items", read(inventoryHandler.ListItems))
	mux.Handle("POST /api/models/{model}/items", write(inventoryHandler.CreateItem))
	mux.Handle("GET /api/models/{model}/items/{id}", read(inventoryHandler.GetItem))
	mux.Handle("PUT /api/models/{model}/items/{id}", write(inventoryHandler.UpdateItem))
	mux.Handle("DELETE /api/models/{model}/items/{id}", write(inventoryHandler.DeleteItem))
	mux.Handle("GET /api/models/{model}/edit", read(inventoryHandler.GetEdit))
	mux.Handle("PUT /api/models/{model}/edit", write(inventoryHandler.BeginEdit))
	mux.Handle("DELETE /api/models/{model}/edit", write(inventoryHandler.CancelEdit))
	mux.Handle("GET /api/models/{model}/print", read(inventoryHandler.Print))

	// Scanning: all roles may recognize, manager+ may save.
	mux.Handle("POST /api/scan", read(scanHandler.Scan))
	mux.Handle("POST /api/scan/parse", read(scanHandler.Parse))
	mux.Handle("POST /api/models/{model}/items/scanned", write(scanHandler.SaveScanned))

	return mux
}
