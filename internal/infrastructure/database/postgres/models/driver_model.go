package models

import (
	"time"

	"github.com/google/uuid"
)

// DriverModel represents the database model for driver profiles.
type DriverModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key"`
	Version      int64      `gorm:"type:bigint;not null"`
	OwnerFleetID uuid.UUID  `gorm:"type:uuid;not null;index"`
	AccountID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	InvitationID *uuid.UUID `gorm:"type:uuid"`

	FullName    string  `gorm:"type:varchar(255);not null"`
	Email       string  `gorm:"type:varchar(255);not null"`
	Phone       *string `gorm:"type:varchar(30)"`
	VehicleType string  `gorm:"type:varchar(50)"`

	ProfileStatus string `gorm:"type:varchar(30);not null;default:'incomplete';index"`
	Availability  string `gorm:"type:varchar(20);not null;default:'unavailable'"`

	// Certification fields stay exactly as submitted; the compliance
	// evaluator parses and fails closed.
	CDLNumber               string `gorm:"type:varchar(50)"`
	CDLExpiry               string `gorm:"type:varchar(10)"`
	MedicalCardExpiry       string `gorm:"type:varchar(10)"`
	InsuranceExpiry         string `gorm:"type:varchar(10)"`
	MVRNumber               string `gorm:"type:varchar(50)"`
	BackgroundCheckedAt     string `gorm:"type:varchar(10)"`
	PreEmploymentScreenedAt string `gorm:"type:varchar(10)"`
	DrugScreenedAt          string `gorm:"type:varchar(10)"`

	CDLImageURL *string `gorm:"type:text"`
	Consents    []byte  `gorm:"type:jsonb"`

	RejectedReason *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Owner   *AccountModel `gorm:"foreignKey:OwnerFleetID"`
	Account *AccountModel `gorm:"foreignKey:AccountID"`
}

func (DriverModel) TableName() string {
	return "drivers"
}
