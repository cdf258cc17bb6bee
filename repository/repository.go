// Package repository stores prediction records for the storage service.
//
// Two backends implement Repository: a gorm-backed store over sqlite,
// postgres or mysql, and an in-memory store used by tests and DB_DRIVER=memory.
// The backend is chosen once at startup by New.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"iris-prediction/config"
	"iris-prediction/models"
)

type Repository interface {
	// Create inserts record and sets its ID.
	Create(ctx context.Context, record *models.Prediction) error
	// ListAll returns every record in insertion order. The slice is never nil.
	ListAll(ctx context.Context) ([]models.Prediction, error)
	Close() error
}

// New opens the backend selected by cfg.Driver and makes sure the schema exists.
func New(cfg config.DatabaseConfig, logger *slog.Logger) (Repository, error) {
	switch cfg.Driver {
	case "memory":
		logger.Info("initializing in-memory prediction store")
		return NewMemoryRepository(), nil
	case "sqlite", "postgres", "mysql":
		logger.Info("initializing gorm prediction store", "driver", cfg.Driver)
		repo, err := OpenGorm(cfg)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported db driver: %q", cfg.Driver)
	}
}
