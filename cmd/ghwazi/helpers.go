package main

import (
	"context"
	"fmt"

	"github.com/amalhadhrami/ghwazi/internal/config"
	"github.com/amalhadhrami/ghwazi/internal/service"
	"github.com/amalhadhrami/ghwazi/internal/storage"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/ghwazi/ghwazi.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// currentUser returns the user id the command operates as.
func currentUser() int64 {
	return viper.GetInt64("user.id")
}
