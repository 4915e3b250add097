package models

import (
	"time"

	"github.com/google/uuid"
)

// InvitationModel represents the database model for driver invitations.
type InvitationModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	Token           string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	FleetID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Email           string    `gorm:"type:varchar(255);not null"`
	DQFAcknowledged bool      `gorm:"not null;default:false"`

	Status    string    `gorm:"type:varchar(10);not null;default:'pending';index"`
	ExpiresAt time.Time `gorm:"type:timestamptz;not null"`

	DriverID *uuid.UUID `gorm:"type:uuid"`
	UsedAt   *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"not null"`

	Fleet *AccountModel `gorm:"foreignKey:FleetID"`
}

func (InvitationModel) TableName() string {
	return "driver_invitations"
}
