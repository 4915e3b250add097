package models

import (
	"time"

	"github.com/google/uuid"
)

// LeaseAgreementModel represents the database model for lease agreements.
// Party and driver snapshots are stored as JSONB: they are immutable
// copies captured at creation time, never joined against live rows.
type LeaseAgreementModel struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	Version int64     `gorm:"type:bigint;not null"`

	LoadID uuid.UUID `gorm:"type:uuid;not null;index"`

	LessorFleetID uuid.UUID `gorm:"type:uuid;not null;index"`
	LesseeFleetID uuid.UUID `gorm:"type:uuid;not null;index"`
	DriverID      uuid.UUID `gorm:"type:uuid;not null;index"`

	LessorSnapshot []byte `gorm:"type:jsonb;not null"`
	LesseeSnapshot []byte `gorm:"type:jsonb;not null"`
	DriverSnapshot []byte `gorm:"type:jsonb;not null"`
	Trip           []byte `gorm:"type:jsonb;not null"`
	Payment        []byte `gorm:"type:jsonb;not null"`
	Insurance      []byte `gorm:"type:jsonb"`

	LessorSignature []byte `gorm:"type:jsonb"`
	LesseeSignature []byte `gorm:"type:jsonb"`

	Status       string `gorm:"type:varchar(20);not null;index"`
	TripTracking []byte `gorm:"type:jsonb;not null"`

	CreatedAt    time.Time  `gorm:"not null;index"`
	UpdatedAt    time.Time  `gorm:"not null"`
	SignedAt     *time.Time `gorm:"type:timestamptz"`
	VoidedAt     *time.Time `gorm:"type:timestamptz"`
	VoidedReason *string    `gorm:"type:text"`
}

func (LeaseAgreementModel) TableName() string {
	return "lease_agreements"
}
