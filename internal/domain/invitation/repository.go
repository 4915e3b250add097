package invitation

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for invitation tokens.
type Repository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByToken(ctx context.Context, token string) (*Invitation, error)

	// MarkUsed flips the invitation to used and links the created driver.
	// The write is conditioned on status still being pending, so of two
	// concurrent redemptions exactly one succeeds; the loser gets
	// ErrAlreadyUsed.
	MarkUsed(ctx context.Context, id uuid.UUID, driverID uuid.UUID) error

	// Release reverts a claim made with MarkUsed back to pending. The
	// write is conditioned on the claiming driver id, so it can only
	// undo its own claim.
	Release(ctx context.Context, id uuid.UUID, driverID uuid.UUID) error

	ListByFleet(ctx context.Context, fleetID uuid.UUID) ([]*Invitation, error)
}
