package driver

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for driver profiles. UpdateIf follows the
// same compare-and-swap contract as the lease repository.
type Repository interface {
	Create(ctx context.Context, driver *Driver) error
	GetByID(ctx context.Context, id uuid.UUID) (*Driver, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*Driver, error)
	UpdateIf(ctx context.Context, id uuid.UUID, expectedVersion int64, driver *Driver) error
	ListByFleet(ctx context.Context, fleetID uuid.UUID) ([]*Driver, error)
}
