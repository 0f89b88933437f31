package main

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"folder-catalog/internal/config"
	"folder-catalog/internal/indexer"
	"folder-catalog/internal/library"
	"folder-catalog/internal/storage"
)

// catalogApp holds the components shared by every command.
type catalogApp struct {
	cfg        *config.Config
	db         *sql.DB
	store      *storage.Store
	lib        *library.Library
	reconciler *indexer.Reconciler
}

// newApp loads configuration, configures logging, opens and migrates the
// database and builds the scan pipeline. The caller must defer app.Close().
func newApp(logOut io.Writer) (*catalogApp, error) {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := setupLogging(cfg, logOut); err != nil {
		return nil, err
	}

	db, err := storage.New(cfg.DBDriver, dsn(cfg), cfg.DBMaxConns)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db, cfg.DBDriver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database initialized", "driver", cfg.DBDriver, "max_conns", cfg.DBMaxConns)

	lib, err := library.New(afero.NewOsFs(), cfg.IndexFolder, cfg.QuarantineDir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open library: %w", err)
	}

	policy, err := indexer.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := storage.NewStore(db)
	return &catalogApp{
		cfg:        cfg,
		db:         db,
		store:      store,
		lib:        lib,
		reconciler: indexer.NewReconciler(lib, store, policy),
	}, nil
}

// Close releases the database pool.
func (a *catalogApp) Close() error {
	return a.db.Close()
}

// setupLogging configures structured logging with configurable level and format.
func setupLogging(cfg *config.Config, out io.Writer) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{
		Level: level,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", level.String(), "format", cfg.LogFormat)
	return nil
}

func dsn(cfg *config.Config) string {
	if cfg.DBDriver == storage.DriverPostgres {
		return storage.PostgresDSN(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	}
	return storage.SQLiteDSN(cfg.DBPath)
}
