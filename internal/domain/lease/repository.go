package lease

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence for lease agreements. All mutations after
// creation go through UpdateIf; there is deliberately no unconditional
// update and no delete; agreements are never physically removed.
type Repository interface {
	Create(ctx context.Context, agreement *Agreement) error
	GetByID(ctx context.Context, id uuid.UUID) (*Agreement, error)

	// UpdateIf replaces the stored agreement only when its version still
	// equals expectedVersion, and bumps the version by one. A stale
	// expectedVersion yields ErrVersionConflict; a missing row yields
	// ErrAgreementNotFound.
	UpdateIf(ctx context.Context, id uuid.UUID, expectedVersion int64, agreement *Agreement) error

	List(ctx context.Context, filter *Filter) ([]*Agreement, int64, error)
}

// Filter narrows agreement listings. FleetID matches either side of the
// agreement; LessorFleetID and LesseeFleetID match one side only.
type Filter struct {
	Status        *Status
	FleetID       *uuid.UUID
	LessorFleetID *uuid.UUID
	LesseeFleetID *uuid.UUID
	DriverID      *uuid.UUID

	CreatedAfter  *time.Time
	CreatedBefore *time.Time

	Page     int
	PageSize int
}
