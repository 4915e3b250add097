package account

import (
	"time"

	"github.com/google/uuid"

	domainAccount "fleetlease/internal/domain/account"
)

// RegisterRequest creates a fleet account. Driver accounts come only from
// invitation redemption, and the first admin is seeded out of band.
type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required"`
	FullName    string  `json:"full_name" validate:"required,min=2,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,phone"`
	CompanyName string  `json:"company_name" validate:"required,min=2,max=255"`
	LegalName   string  `json:"legal_name" validate:"required,min=2,max=255"`
	Address     string  `json:"address" validate:"required,max=1000"`
	USDOTNumber string  `json:"usdot_number" validate:"required,max=30"`
	MCNumber    string  `json:"mc_number" validate:"max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=2,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,phone"`
	CompanyName *string `json:"company_name" validate:"omitempty,min=2,max=255"`
	LegalName   *string `json:"legal_name" validate:"omitempty,min=2,max=255"`
	Address     *string `json:"address" validate:"omitempty,max=1000"`
	USDOTNumber *string `json:"usdot_number" validate:"omitempty,max=30"`
	MCNumber    *string `json:"mc_number" validate:"omitempty,max=30"`
}

type AccountResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	FullName    string    `json:"full_name"`
	Phone       *string   `json:"phone,omitempty"`
	CompanyName *string   `json:"company_name,omitempty"`
	LegalName   *string   `json:"legal_name,omitempty"`
	Address     *string   `json:"address,omitempty"`
	USDOTNumber *string   `json:"usdot_number,omitempty"`
	MCNumber    *string   `json:"mc_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type AuthResponse struct {
	Account     *AccountResponse `json:"account"`
	AccessToken string           `json:"access_token"`
}

func ToAccountResponse(acc *domainAccount.Account) *AccountResponse {
	return &AccountResponse{
		ID:          acc.ID,
		Email:       acc.Email,
		Role:        string(acc.Role),
		FullName:    acc.FullName,
		Phone:       acc.Phone,
		CompanyName: acc.CompanyName,
		LegalName:   acc.LegalName,
		Address:     acc.Address,
		USDOTNumber: acc.USDOTNumber,
		MCNumber:    acc.MCNumber,
		CreatedAt:   acc.CreatedAt,
	}
}
