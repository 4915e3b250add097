package account

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleFleet  = "fleet"
	RoleDriver = "driver"
	RoleAdmin  = "admin"
)

// Account is an authenticated user of the marketplace: a fleet
// (owner-operator), a driver, or an admin. Fleet legal details live here
// and get snapshotted into agreements at creation time.
type Account struct {
	ID             uuid.UUID
	Email          string
	PasswordHashed string
	Role           string

	FullName string
	Phone    *string

	// Fleet-only legal identity.
	CompanyName *string
	LegalName   *string
	Address     *string
	USDOTNumber *string
	MCNumber    *string

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
