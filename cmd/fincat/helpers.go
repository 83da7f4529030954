package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/suriya2318/AI-FinCatTransaction/internal/classifier"
	"github.com/suriya2318/AI-FinCatTransaction/internal/common"
	"github.com/suriya2318/AI-FinCatTransaction/internal/config"
	"github.com/suriya2318/AI-FinCatTransaction/internal/engine"
	"github.com/suriya2318/AI-FinCatTransaction/internal/storage"
	"github.com/suriya2318/AI-FinCatTransaction/internal/taxonomy"
)

func taxonomyPath() string {
	path := viper.GetString("taxonomy.path")
	if path == "" {
		path = filepath.Join(config.DataDir(), "taxonomy.yaml")
	}
	return config.ExpandPath(path)
}

func modelPath() string {
	path := viper.GetString("model.path")
	if path == "" {
		path = filepath.Join(config.DataDir(), "model.json")
	}
	return config.ExpandPath(path)
}

func databasePath() string {
	path := viper.GetString("database.path")
	if path == "" {
		path = filepath.Join(config.DataDir(), "fincat.db")
	}
	return config.ExpandPath(path)
}

// newTaxonomyStore creates and eagerly loads the taxonomy store, so a
// broken configuration fails the command instead of the first lookup.
func newTaxonomyStore() (*taxonomy.Store, error) {
	store := taxonomy.NewStore(taxonomyPath())
	if err := store.Load(); err != nil {
		return nil, common.NewUserError("failed to load taxonomy", err)
	}
	return store, nil
}

// newEngine wires the full classification pipeline: taxonomy store,
// classifier adapter, and resolution engine. Both singletons are built
// once here and shared read-only for the process lifetime.
func newEngine() (*engine.Engine, *taxonomy.Store, error) {
	store, err := newTaxonomyStore()
	if err != nil {
		return nil, nil, err
	}

	adapter, err := classifier.NewAdapter(modelPath(), slog.Default())
	if err != nil {
		return nil, nil, common.NewUserError("failed to load classifier model", err)
	}

	return engine.New(store, adapter, slog.Default()), store, nil
}

// openStorage opens the SQLite database and applies migrations.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	db, err := storage.NewSQLiteStorage(databasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
