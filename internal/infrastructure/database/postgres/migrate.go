package postgres

import (
	"fmt"

	"fleetlease/internal/infrastructure/database/postgres/models"
	"fleetlease/internal/logger"
)

// Migrate runs schema auto-migration for all tables.
func Migrate(db *DB) error {
	err := db.DB.AutoMigrate(
		&models.AccountModel{},
		&models.LoadModel{},
		&models.InvitationModel{},
		&models.DriverModel{},
		&models.LeaseAgreementModel{},
	)
	if err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}

	logger.Info("Database migrations completed")
	return nil
}
