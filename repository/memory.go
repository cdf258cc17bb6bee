package repository

import (
	"context"
	"sync"

	"iris-prediction/models"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	nextID uint
	rows   []models.Prediction
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

func (r *MemoryRepository) Create(ctx context.Context, record *models.Prediction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	record.ID = r.nextID
	r.nextID++
	r.rows = append(r.rows, *record)
	return nil
}

func (r *MemoryRepository) ListAll(ctx context.Context) ([]models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Prediction, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *MemoryRepository) Close() error { return nil }
