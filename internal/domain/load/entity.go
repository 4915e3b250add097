package load

import (
	"time"

	"github.com/google/uuid"
)

// Status of a posted load.
type Status string

const (
	StatusOpen    Status = "open"    // Listed on the marketplace
	StatusMatched Status = "matched" // A lease agreement was drafted for it
	StatusClosed  Status = "closed"  // Withdrawn by the posting fleet
)

// Load is a haul a fleet posts to the marketplace, looking to lease a
// driver from another fleet.
type Load struct {
	ID      uuid.UUID
	FleetID uuid.UUID

	Origin           string
	Destination      string
	CargoDescription string
	WeightLbs        *float64
	OfferedCents     int64

	PickupDate   *time.Time
	DeliveryDate *time.Time

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
