package invitation

import (
	"time"

	"github.com/google/uuid"
)

// Status of a driver invitation token.
type Status string

const (
	StatusPending Status = "pending"
	StatusUsed    Status = "used"
)

// TTL is how long an invitation token stays redeemable.
const TTL = 7 * 24 * time.Hour

// Invitation is a single-use token a fleet issues to bring a driver onto
// the platform. It is consumed by exactly one successful registration.
type Invitation struct {
	ID      uuid.UUID
	Token   string
	FleetID uuid.UUID
	Email   string

	// The inviting fleet acknowledges its DQF certification duty when
	// issuing the invitation.
	DQFAcknowledged bool

	Status    Status
	ExpiresAt time.Time

	DriverID *uuid.UUID
	UsedAt   *time.Time

	CreatedAt time.Time
}

// Expired reports whether the token is past its redemption window.
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
