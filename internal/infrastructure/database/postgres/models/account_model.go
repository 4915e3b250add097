package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountModel represents the database model for accounts.
type AccountModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHashed string    `gorm:"type:varchar(255);not null"`
	Role           string    `gorm:"type:varchar(20);not null;index"`
	FullName       string    `gorm:"type:varchar(255);not null"`
	Phone          *string   `gorm:"type:varchar(30)"`
	CompanyName    *string   `gorm:"type:varchar(255)"`
	LegalName      *string   `gorm:"type:varchar(255)"`
	Address        *string   `gorm:"type:text"`
	USDOTNumber    *string   `gorm:"type:varchar(30)"`
	MCNumber       *string   `gorm:"type:varchar(30)"`
	IsActive       bool      `gorm:"default:true;not null"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (AccountModel) TableName() string {
	return "accounts"
}
