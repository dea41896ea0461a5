package ports

import (
	"context"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

// MapRepository persists rendered map records and their routes.
type MapRepository interface {
	Create(ctx context.Context, rec *domain.MapRecord) error
	// GetByID returns the record with its routes, or domain.ErrMapNotFound.
	GetByID(ctx context.Context, id string) (*domain.MapRecord, error)
	// List returns records newest first without routes, plus the total count.
	List(ctx context.Context, offset, limit int) ([]domain.MapRecord, int, error)
}

// ArtifactStore holds exported map documents.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns domain.ErrMapNotFound when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
}
