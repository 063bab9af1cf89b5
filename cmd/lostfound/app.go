package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/catalog"
	"github.com/erazemk/lostfound/internal/config"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/itemstore"
	"github.com/erazemk/lostfound/internal/lifecycle"
	"github.com/erazemk/lostfound/internal/matchcache"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// app is the wired set of services shared by the server and admin commands.
type app struct {
	cfg       *config.Config
	db        *sql.DB
	items     itemstore.Store
	cache     *matchcache.Cache
	catalog   *catalog.Service
	lifecycle *lifecycle.Controller
	jwtSecret string
}

// loadConfig reads the configuration and applies command-line overrides.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return nil, err
	}
	if flags.db != "" {
		cfg.Storage.DBPath = flags.db
	}
	if flags.backend != "" {
		cfg.Storage.Backend = flags.backend
	}
	if flags.items != "" {
		cfg.Storage.ItemsFile = flags.items
	}
	if flags.log != "" {
		cfg.Log.Path = flags.log
	}
	return cfg, nil
}

// openApp opens storage and builds the services. The caller must call close.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	database, err := db.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	slog.Info("database ready", "path", cfg.Storage.DBPath)

	a := &app{cfg: cfg, db: database}

	switch cfg.Storage.Backend {
	case "sqlite":
		a.items = itemstore.NewSQLite(database)
	default:
		jf, err := itemstore.OpenJSONFile(cfg.Storage.ItemsFile)
		if err != nil {
			database.Close()
			return nil, err
		}
		a.items = jf
	}
	slog.Info("item store ready", "backend", cfg.Storage.Backend)

	a.jwtSecret = cfg.Auth.JWTSecret
	if a.jwtSecret == "" {
		a.jwtSecret, err = store.GetJWTSecret(ctx, database)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("loading JWT secret: %w", err)
		}
	}

	logger := slog.Default()
	a.cache, err = matchcache.New(ctx, matchcache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.RedisTTL(),
	}, logger)
	if err != nil {
		// Matching still works without the cache.
		slog.Warn("match cache disabled", "error", err)
	}

	notifier := cfg.BuildNotifier(logger)

	a.catalog = &catalog.Service{
		Items:         a.items,
		DB:            database,
		Notifier:      notifier,
		NotifyTimeout: cfg.NotifyTimeout(),
		UploadsDir:    cfg.Storage.UploadsDir,
		Logger:        logger,
	}
	a.lifecycle = &lifecycle.Controller{
		Items:         a.items,
		Notifier:      notifier,
		NotifyTimeout: cfg.NotifyTimeout(),
		OnRemove:      a.catalog.RemoveImage,
		Logger:        logger,
	}
	if a.cache != nil {
		a.catalog.Cache = a.cache
		a.lifecycle.Cache = a.cache
		slog.Info("match cache enabled", "addr", cfg.Redis.Addr)
	}

	return a, nil
}

func (a *app) close() {
	if err := a.cache.Close(); err != nil {
		slog.Error("failed to close match cache", "error", err)
	}
	if err := a.db.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
}

// withApp loads the configuration, opens the app, runs fn and closes it.
func withApp(ctx context.Context, flags *globalFlags, fn func(*app) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

// ensureAdmin creates the first admin account when none exists and prints
// its generated password to out. It reports whether an account was created.
func ensureAdmin(ctx context.Context, database *sql.DB, email string, out io.Writer) (bool, error) {
	n, err := store.CountAdmins(ctx, database)
	if err != nil {
		return false, fmt.Errorf("counting admins: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return false, fmt.Errorf("generating password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hashing password: %w", err)
	}
	if _, err := store.CreateUser(ctx, database, email, "Admin", hash, model.RoleAdmin); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return false, fmt.Errorf("admin e-mail %s already belongs to a regular user", email)
		}
		return false, fmt.Errorf("creating admin user: %w", err)
	}

	fmt.Fprintln(out, "Admin account created:")
	fmt.Fprintf(out, "  Email:    %s\n", email)
	fmt.Fprintf(out, "  Password: %s\n", password)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Save this password, it cannot be recovered.")
	fmt.Fprintln(out, "The admin can change it after logging in.")
	return true, nil
}
