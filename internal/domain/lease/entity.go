package lease

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a temporary lease agreement.
type Status string

const (
	StatusDraft         Status = "draft"          // Created from an accepted match
	StatusPendingLessor Status = "pending_lessor" // Waiting on the lessor's signature
	StatusPendingLessee Status = "pending_lessee" // Lessor signed, waiting on the lessee
	StatusSigned        Status = "signed"         // Both parties signed
	StatusInProgress    Status = "in_progress"    // Trip underway
	StatusCompleted     Status = "completed"      // Trip ended
	StatusVoided        Status = "voided"         // Terminated before completion
)

// PartySnapshot captures a fleet's legal identity at agreement creation.
// It is a copy, not a live reference, so later profile edits never alter
// an executed agreement.
type PartySnapshot struct {
	FleetID     uuid.UUID `json:"fleet_id"`
	CompanyName string    `json:"company_name"`
	LegalName   string    `json:"legal_name"`
	Address     string    `json:"address"`
	USDOTNumber string    `json:"usdot_number"`
	MCNumber    string    `json:"mc_number"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
}

// DriverSnapshot captures the leased driver's identity and the certification
// expiries in force when the agreement was drafted.
type DriverSnapshot struct {
	DriverID          uuid.UUID `json:"driver_id"`
	AccountID         uuid.UUID `json:"account_id"`
	FullName          string    `json:"full_name"`
	Email             string    `json:"email"`
	CDLNumber         string    `json:"cdl_number"`
	CDLExpiry         string    `json:"cdl_expiry"`
	MedicalCardExpiry string    `json:"medical_card_expiry"`
}

// TripDetails describes the load being hauled under the agreement.
type TripDetails struct {
	Origin           string     `json:"origin"`
	Destination      string     `json:"destination"`
	CargoDescription string     `json:"cargo_description"`
	WeightLbs        *float64   `json:"weight_lbs"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
}

// PaymentTerms holds the lease amount and the match-fee gate for trip start.
type PaymentTerms struct {
	AmountCents  int64      `json:"amount_cents"`
	DueDate      *time.Time `json:"due_date"`
	MatchFeePaid bool       `json:"match_fee_paid"`
	FeePaidAt    *time.Time `json:"fee_paid_at"`
}

// InsuranceAttestation records the coverage option a party attested to.
// The system records the attestation; it never verifies coverage.
type InsuranceAttestation struct {
	Option     string    `json:"option"`
	AttestedBy uuid.UUID `json:"attested_by"`
	AttestedAt time.Time `json:"attested_at"`
}

// Signature is one party's electronic signature on the agreement.
type Signature struct {
	SignerID   uuid.UUID `json:"signer_id"`
	SignerName string    `json:"signer_name"`
	Role       string    `json:"role"`
	SignedAt   time.Time `json:"signed_at"`
	SourceIP   string    `json:"source_ip"`
}

// TripTracking records who started and ended the trip and when.
type TripTracking struct {
	StartedBy       *uuid.UUID `json:"started_by"`
	StartedAt       *time.Time `json:"started_at"`
	EndedBy         *uuid.UUID `json:"ended_by"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationMinutes *int       `json:"duration_minutes"`
}

// Agreement is the temporary lease agreement between two fleets for one
// driver-lease trip. Version increments by exactly one per accepted
// mutation; every write is conditioned on the version read.
type Agreement struct {
	ID      uuid.UUID
	Version int64

	LoadID uuid.UUID

	Lessor PartySnapshot
	Lessee PartySnapshot
	Driver DriverSnapshot

	Trip      TripDetails
	Payment   PaymentTerms
	Insurance *InsuranceAttestation

	LessorSignature *Signature
	LesseeSignature *Signature

	Status       Status
	TripTracking TripTracking

	CreatedAt    time.Time
	UpdatedAt    time.Time
	SignedAt     *time.Time
	VoidedAt     *time.Time
	VoidedReason *string
}

// BothSigned reports whether both parties have signed.
func (a *Agreement) BothSigned() bool {
	return a.LessorSignature != nil && a.LesseeSignature != nil
}

// IsTerminal reports whether the agreement can no longer transition.
func (a *Agreement) IsTerminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusVoided
}

// Clone returns a deep copy safe to mutate without touching the original.
func (a *Agreement) Clone() *Agreement {
	clone := *a

	if a.Insurance != nil {
		ins := *a.Insurance
		clone.Insurance = &ins
	}
	if a.LessorSignature != nil {
		sig := *a.LessorSignature
		clone.LessorSignature = &sig
	}
	if a.LesseeSignature != nil {
		sig := *a.LesseeSignature
		clone.LesseeSignature = &sig
	}
	clone.Trip.WeightLbs = copyFloat(a.Trip.WeightLbs)
	clone.Trip.StartDate = copyTime(a.Trip.StartDate)
	clone.Trip.EndDate = copyTime(a.Trip.EndDate)
	clone.Payment.DueDate = copyTime(a.Payment.DueDate)
	clone.Payment.FeePaidAt = copyTime(a.Payment.FeePaidAt)
	clone.TripTracking.StartedBy = copyUUID(a.TripTracking.StartedBy)
	clone.TripTracking.StartedAt = copyTime(a.TripTracking.StartedAt)
	clone.TripTracking.EndedBy = copyUUID(a.TripTracking.EndedBy)
	clone.TripTracking.EndedAt = copyTime(a.TripTracking.EndedAt)
	clone.TripTracking.DurationMinutes = copyInt(a.TripTracking.DurationMinutes)
	clone.SignedAt = copyTime(a.SignedAt)
	clone.VoidedAt = copyTime(a.VoidedAt)
	if a.VoidedReason != nil {
		reason := *a.VoidedReason
		clone.VoidedReason = &reason
	}

	return &clone
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

func copyInt(i *int) *int {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
