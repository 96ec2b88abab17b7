package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/motoinvent/internal/api"
	"github.com/erazemk/motoinvent/internal/auth"
	"github.com/erazemk/motoinvent/internal/config"
	"github.com/erazemk/motoinvent/internal/db"
	"github.com/erazemk/motoinvent/internal/label"
	"github.com/erazemk/motoinvent/internal/logging"
	"github.com/erazemk/motoinvent/internal/metrics"
	"github.com/erazemk/motoinvent/internal/model"
	"github.com/erazemk/motoinvent/internal/ocr"
	"github.com/erazemk/motoinvent/internal/scan"
	"github.com/erazemk/motoinvent/internal/store"
	"github.com/erazemk/motoinvent/internal/web"
	"github.com/erazemk/motoinvent/internal/websocket"
)

func main() {
	cfg, err := config.Load(os.Args[1:], ".env", os.Getenv, os.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, logger); err != nil {
		slog.Error("fatal", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready", "path", cfg.DBPath)

	if err := ensureAdmin(ctx, database, cfg.AdminUser); err != nil {
		return err
	}

	if n, err := store.PurgeExpiredTokens(ctx, database, time.Now()); err != nil {
		slog.Warn("failed to purge revoked tokens", "error", err)
	} else if n > 0 {
		slog.Info("purged expired revoked tokens", "count", n)
	}

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("loading JWT secret: %w", err)
	}

	inv := store.NewInventory(store.SettingsBlobs{DB: database}, model.Catalog)
	if err := inv.Load(ctx); err != nil {
		return fmt.Errorf("loading inventory: %w", err)
	}
	if cfg.ImportPath != "" {
		data, err := os.ReadFile(cfg.ImportPath)
		if err != nil {
			return fmt.Errorf("reading import file: %w", err)
		}
		if err := inv.Import(ctx, data); err != nil {
			return fmt.Errorf("importing %s: %w", cfg.ImportPath, err)
		}
		slog.Info("inventory imported", "path", cfg.ImportPath)
	}

	engine, err := ocr.New(cfg.OCREngine, cfg.OCRLang)
	if err != nil {
		return err
	}
	slog.Info("recognition engine ready", "engine", cfg.OCREngine, "lang", cfg.OCRLang)
	scanner := scan.NewService(engine, label.Default, cfg.ScanTimeout)

	mx, err := metrics.New()
	if err != nil {
		return err
	}
	scanner.SetRecorder(mx)
	countItems := func() {
		for modelID, items := range inv.Snapshot() {
			mx.SetItems(modelID, len(items))
		}
	}
	countItems()

	hub := websocket.NewHub(logger)
	inv.OnChange(func(c store.Change) {
		hub.Broadcast(websocket.NewMessage(c.ModelID, c.Action, c.ItemID))
		if c.ModelID == "" {
			countItems()
			return
		}
		if items, err := inv.Items(c.ModelID); err == nil {
			mx.ObserveChange(c.ModelID, c.Action, len(items))
		}
	})

	// API routes take priority, web routes handle the rest.
	webRouter, err := web.NewRouter(database, jwtSecret, inv, hub)
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(database, jwtSecret, inv, scanner))
	mux.Handle("/", webRouter)
	if cfg.Metrics {
		mux.Handle("GET /metrics", mx.Handler())
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Recognition may take up to the scan timeout.
		WriteTimeout: cfg.ScanTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// ensureAdmin creates the first admin account when the database has no users
// and prints its generated password.
func ensureAdmin(ctx context.Context, database *sql.DB, username string) error {
	count, err := store.CountUsers(ctx, database)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if _, err := store.CreateUser(ctx, database, username, hash, model.RoleAdmin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	printInitResult(username, password)
	return nil
}

func printInitResult(username, password string) {
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("It can be changed under Ajustes after logging in.")
	fmt.Println()
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
