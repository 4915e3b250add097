package lease

import (
	"time"

	"github.com/google/uuid"

	domainLease "fleetlease/internal/domain/lease"
	"fleetlease/internal/lease/lifecycle"
)

// AcceptMatchRequest is a lessor fleet offering one of its drivers against
// an open load. Acceptance drafts the agreement with frozen snapshots.
type AcceptMatchRequest struct {
	DriverID    uuid.UUID  `json:"driver_id" validate:"required"`
	AmountCents int64      `json:"amount_cents" validate:"required,gt=0"`
	DueDate     *time.Time `json:"due_date"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type SignRequest struct {
	SignerName string `json:"signer_name" validate:"required,min=2,max=255"`
}

type VoidRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

type AttestInsuranceRequest struct {
	Option string `json:"option" validate:"required,min=2,max=255"`
}

type ListRequest struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// FeeSessionResponse carries the hosted checkout URL for the match fee.
type FeeSessionResponse struct {
	SessionURL  string `json:"session_url"`
	AmountCents int64  `json:"amount_cents"`
}

// SigningStatusResponse tells the caller where the agreement stands for
// them specifically: whether they can sign, and if not, why.
type SigningStatusResponse struct {
	Status     string `json:"status"`
	YourRole   string `json:"your_role"`
	CanSign    bool   `json:"can_sign"`
	Reason     string `json:"reason,omitempty"`
	WaitingFor string `json:"waiting_for,omitempty"`
}

type SignatureResponse struct {
	SignerID   uuid.UUID `json:"signer_id"`
	SignerName string    `json:"signer_name"`
	Role       string    `json:"role"`
	SignedAt   time.Time `json:"signed_at"`
}

type AgreementResponse struct {
	ID      uuid.UUID `json:"id"`
	Version int64     `json:"version"`
	LoadID  uuid.UUID `json:"load_id"`
	Status  string    `json:"status"`

	Lessor domainLease.PartySnapshot  `json:"lessor"`
	Lessee domainLease.PartySnapshot  `json:"lessee"`
	Driver domainLease.DriverSnapshot `json:"driver"`

	Trip      domainLease.TripDetails           `json:"trip"`
	Payment   domainLease.PaymentTerms          `json:"payment"`
	Insurance *domainLease.InsuranceAttestation `json:"insurance,omitempty"`

	LessorSignature *SignatureResponse `json:"lessor_signature,omitempty"`
	LesseeSignature *SignatureResponse `json:"lessee_signature,omitempty"`

	TripTracking domainLease.TripTracking `json:"trip_tracking"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	SignedAt     *time.Time `json:"signed_at,omitempty"`
	VoidedAt     *time.Time `json:"voided_at,omitempty"`
	VoidedReason *string    `json:"voided_reason,omitempty"`
}

type ListResponse struct {
	Agreements []*AgreementResponse `json:"agreements"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
}

func toSignatureResponse(sig *domainLease.Signature) *SignatureResponse {
	if sig == nil {
		return nil
	}
	return &SignatureResponse{
		SignerID:   sig.SignerID,
		SignerName: sig.SignerName,
		Role:       sig.Role,
		SignedAt:   sig.SignedAt,
	}
}

func ToAgreementResponse(a *domainLease.Agreement) *AgreementResponse {
	return &AgreementResponse{
		ID:              a.ID,
		Version:         a.Version,
		LoadID:          a.LoadID,
		Status:          string(a.Status),
		Lessor:          a.Lessor,
		Lessee:          a.Lessee,
		Driver:          a.Driver,
		Trip:            a.Trip,
		Payment:         a.Payment,
		Insurance:       a.Insurance,
		LessorSignature: toSignatureResponse(a.LessorSignature),
		LesseeSignature: toSignatureResponse(a.LesseeSignature),
		TripTracking:    a.TripTracking,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
		SignedAt:        a.SignedAt,
		VoidedAt:        a.VoidedAt,
		VoidedReason:    a.VoidedReason,
	}
}

func toSigningStatusResponse(a *domainLease.Agreement, actor lifecycle.Actor) *SigningStatusResponse {
	resp := &SigningStatusResponse{
		Status:   string(a.Status),
		YourRole: string(lifecycle.RoleOf(a, actor)),
	}

	if role := lifecycle.SigningRole(a, actor); role != "" {
		resp.CanSign = true
		return resp
	}

	resp.Reason = lifecycle.CannotSignReason(a, actor)
	resp.WaitingFor = lifecycle.WaitingMessage(a, actor)
	return resp
}
