package driver

import (
	"time"

	"github.com/google/uuid"
)

// ProfileStatus tracks the onboarding confirmation workflow, separate from
// the compliance color.
type ProfileStatus string

const (
	ProfileIncomplete          ProfileStatus = "incomplete"
	ProfilePendingConfirmation ProfileStatus = "pending_confirmation"
	ProfileConfirmed           ProfileStatus = "confirmed"
	ProfileRejected            ProfileStatus = "rejected"
)

// Availability is the driver's self-reported tri-state.
type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
	AvailabilityOnTrip      Availability = "on_trip"
)

// Certification holds the DQF fields evaluated for compliance. Document
// dates are kept exactly as submitted (YYYY-MM-DD); the evaluator parses
// them and fails closed on anything unparseable.
type Certification struct {
	CDLNumber               string `json:"cdl_number"`
	CDLExpiry               string `json:"cdl_expiry"`
	MedicalCardExpiry       string `json:"medical_card_expiry"`
	InsuranceExpiry         string `json:"insurance_expiry"`
	MVRNumber               string `json:"mvr_number"`
	BackgroundCheckedAt     string `json:"background_checked_at"`
	PreEmploymentScreenedAt string `json:"pre_employment_screened_at"`
	DrugScreenedAt          string `json:"drug_screened_at"`
}

// Consent records one agreed item with the capture context required for
// e-sign defensibility.
type Consent struct {
	Item        string    `json:"item"`
	SourceIP    string    `json:"source_ip"`
	Device      string    `json:"device"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Driver is a leasable driver profile owned by a fleet.
type Driver struct {
	ID           uuid.UUID
	Version      int64
	OwnerFleetID uuid.UUID
	AccountID    uuid.UUID
	InvitationID *uuid.UUID

	FullName    string
	Email       string
	Phone       *string
	VehicleType string

	ProfileStatus ProfileStatus
	Availability  Availability

	Certification Certification
	CDLImageURL   *string
	Consents      []Consent

	RejectedReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
