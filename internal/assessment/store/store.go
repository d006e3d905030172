package store

import (
	"context"

	"github.com/google/uuid"

	"itsg33/internal/assessment/models"
)

// Store persists assessments. Update is optimistic: callers pass the version
// they read, and the store fails with sentinel.ErrVersionConflict when a
// concurrent writer got there first. The service retries the whole
// read-modify-write on conflict.
type Store interface {
	Create(ctx context.Context, a *models.Assessment) error
	Get(ctx context.Context, id uuid.UUID) (*models.Assessment, error)
	Update(ctx context.Context, a *models.Assessment, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.Assessment, error)
}
