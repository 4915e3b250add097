package driver

import (
	"time"

	"github.com/google/uuid"

	"fleetlease/internal/compliance"
	domainDriver "fleetlease/internal/domain/driver"
	domainInvitation "fleetlease/internal/domain/invitation"
)

// InviteRequest starts onboarding for one driver. The inviting fleet must
// acknowledge it keeps the driver qualification file current; the
// invitation is refused otherwise.
type InviteRequest struct {
	Email           string `json:"email" validate:"required,email"`
	DQFAcknowledged bool   `json:"dqf_acknowledged"`
}

// RedeemRequest exchanges a single-use invitation token for a driver
// account and an empty profile.
type RedeemRequest struct {
	Token    string  `json:"token" validate:"required"`
	FullName string  `json:"full_name" validate:"required,min=2,max=255"`
	Password string  `json:"password" validate:"required"`
	Phone    *string `json:"phone" validate:"omitempty,phone"`
}

// CertificationRequest carries the qualification-file fields. Dates travel
// as YYYY-MM-DD strings and are stored exactly as submitted.
type CertificationRequest struct {
	CDLNumber               string `json:"cdl_number" validate:"required,max=50"`
	CDLExpiry               string `json:"cdl_expiry" validate:"required,cert_date"`
	MedicalCardExpiry       string `json:"medical_card_expiry" validate:"required,cert_date"`
	InsuranceExpiry         string `json:"insurance_expiry" validate:"required,cert_date"`
	MVRNumber               string `json:"mvr_number" validate:"required,max=50"`
	BackgroundCheckedAt     string `json:"background_checked_at" validate:"required,cert_date"`
	PreEmploymentScreenedAt string `json:"pre_employment_screened_at" validate:"required,cert_date"`
	DrugScreenedAt          string `json:"drug_screened_at" validate:"required,cert_date"`
}

// SubmitProfileRequest is the driver's completed profile, moving it to
// pending confirmation by the owning fleet. Each consent is captured with
// the device and source address it was given from.
type SubmitProfileRequest struct {
	VehicleType   string               `json:"vehicle_type" validate:"required,max=50"`
	Certification CertificationRequest `json:"certification" validate:"required"`
	Consents      []string             `json:"consents" validate:"required,min=1,dive,required"`
	Device        string               `json:"device" validate:"max=255"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

type AvailabilityRequest struct {
	Availability string `json:"availability" validate:"required,oneof=available unavailable"`
}

type RedeemResponse struct {
	Driver      *DriverResponse `json:"driver"`
	AccessToken string          `json:"access_token"`
}

type ConsentResponse struct {
	Item        string    `json:"item"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type DriverResponse struct {
	ID           uuid.UUID `json:"id"`
	OwnerFleetID uuid.UUID `json:"owner_fleet_id"`

	FullName    string  `json:"full_name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone,omitempty"`
	VehicleType string  `json:"vehicle_type,omitempty"`

	ProfileStatus string `json:"profile_status"`
	Availability  string `json:"availability"`

	Certification domainDriver.Certification `json:"certification"`
	CDLImageURL   *string                    `json:"cdl_image_url,omitempty"`
	Consents      []ConsentResponse          `json:"consents,omitempty"`

	RejectedReason *string `json:"rejected_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InvitationResponse struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ComplianceResponse reports the tri-state color for one driver at the
// moment of evaluation.
type ComplianceResponse struct {
	DriverID      uuid.UUID                  `json:"driver_id"`
	Status        compliance.Status          `json:"status"`
	Certification domainDriver.Certification `json:"certification"`
	EvaluatedAt   time.Time                  `json:"evaluated_at"`
}

type CDLImageResponse struct {
	URL string `json:"url"`
}

func ToDriverResponse(d *domainDriver.Driver) *DriverResponse {
	resp := &DriverResponse{
		ID:             d.ID,
		OwnerFleetID:   d.OwnerFleetID,
		FullName:       d.FullName,
		Email:          d.Email,
		Phone:          d.Phone,
		VehicleType:    d.VehicleType,
		ProfileStatus:  string(d.ProfileStatus),
		Availability:   string(d.Availability),
		Certification:  d.Certification,
		CDLImageURL:    d.CDLImageURL,
		RejectedReason: d.RejectedReason,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	for _, c := range d.Consents {
		resp.Consents = append(resp.Consents, ConsentResponse{Item: c.Item, SubmittedAt: c.SubmittedAt})
	}
	return resp
}

func ToInvitationResponse(inv *domainInvitation.Invitation) *InvitationResponse {
	return &InvitationResponse{
		ID:        inv.ID,
		Token:     inv.Token,
		Email:     inv.Email,
		Status:    string(inv.Status),
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
	}
}
