package models

import (
	"time"

	"github.com/google/uuid"
)

// LoadModel represents the database model for marketplace loads.
type LoadModel struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	FleetID uuid.UUID `gorm:"type:uuid;not null;index"`

	Origin           string   `gorm:"type:text;not null"`
	Destination      string   `gorm:"type:text;not null"`
	CargoDescription string   `gorm:"type:text;not null"`
	WeightLbs        *float64 `gorm:"type:decimal(10,2)"`
	OfferedCents     int64    `gorm:"type:bigint;not null"`

	PickupDate   *time.Time `gorm:"type:timestamptz"`
	DeliveryDate *time.Time `gorm:"type:timestamptz"`

	Status string `gorm:"type:varchar(10);not null;default:'open';index"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	Fleet *AccountModel `gorm:"foreignKey:FleetID"`
}

func (LoadModel) TableName() string {
	return "loads"
}
