package load

import (
	"time"

	"github.com/google/uuid"

	domainLoad "fleetlease/internal/domain/load"
)

type CreateRequest struct {
	Origin           string     `json:"origin" validate:"required,min=2,max=255"`
	Destination      string     `json:"destination" validate:"required,min=2,max=255"`
	CargoDescription string     `json:"cargo_description" validate:"required,min=2,max=2000"`
	WeightLbs        *float64   `json:"weight_lbs" validate:"omitempty,gt=0"`
	OfferedCents     int64      `json:"offered_cents" validate:"required,gt=0"`
	PickupDate       *time.Time `json:"pickup_date"`
	DeliveryDate     *time.Time `json:"delivery_date"`
}

type MarketplaceRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

type LoadResponse struct {
	ID               uuid.UUID  `json:"id"`
	FleetID          uuid.UUID  `json:"fleet_id"`
	Origin           string     `json:"origin"`
	Destination      string     `json:"destination"`
	CargoDescription string     `json:"cargo_description"`
	WeightLbs        *float64   `json:"weight_lbs,omitempty"`
	OfferedCents     int64      `json:"offered_cents"`
	PickupDate       *time.Time `json:"pickup_date,omitempty"`
	DeliveryDate     *time.Time `json:"delivery_date,omitempty"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
}

type MarketplaceResponse struct {
	Loads    []*LoadResponse `json:"loads"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

func ToLoadResponse(l *domainLoad.Load) *LoadResponse {
	return &LoadResponse{
		ID:               l.ID,
		FleetID:          l.FleetID,
		Origin:           l.Origin,
		Destination:      l.Destination,
		CargoDescription: l.CargoDescription,
		WeightLbs:        l.WeightLbs,
		OfferedCents:     l.OfferedCents,
		PickupDate:       l.PickupDate,
		DeliveryDate:     l.DeliveryDate,
		Status:           string(l.Status),
		CreatedAt:        l.CreatedAt,
	}
}
