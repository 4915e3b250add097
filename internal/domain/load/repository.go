package load

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for posted loads.
type Repository interface {
	Create(ctx context.Context, l *Load) error
	GetByID(ctx context.Context, id uuid.UUID) (*Load, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	ListOpen(ctx context.Context, page, pageSize int) ([]*Load, int64, error)
	ListByFleet(ctx context.Context, fleetID uuid.UUID) ([]*Load, error)
}
