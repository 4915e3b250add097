package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleetlease/internal/domain/driver"
	"fleetlease/internal/infrastructure/database/postgres/models"
)

type DriverRepository struct {
	db *DB
}

func NewDriverRepository(db *DB) *DriverRepository {
	return &DriverRepository{db: db}
}

func (r *DriverRepository) Create(ctx context.Context, d *driver.Driver) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.Version = 1
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.ProfileStatus == "" {
		d.ProfileStatus = driver.ProfileIncomplete
	}
	if d.Availability == "" {
		d.Availability = driver.AvailabilityUnavailable
	}

	dbModel, err := toDriverModel(d)
	if err != nil {
		return err
	}
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}

	return nil
}

func (r *DriverRepository) GetByID(ctx context.Context, id uuid.UUID) (*driver.Driver, error) {
	var dbModel models.DriverModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, driver.ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	return toDriverEntity(&dbModel)
}

func (r *DriverRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*driver.Driver, error) {
	var dbModel models.DriverModel
	err := r.db.DB.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, driver.ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver by account: %w", err)
	}

	return toDriverEntity(&dbModel)
}

// UpdateIf replaces the stored profile only when the version still matches.
func (r *DriverRepository) UpdateIf(ctx context.Context, id uuid.UUID, expectedVersion int64, d *driver.Driver) error {
	next := *d
	next.Version = expectedVersion + 1
	next.UpdatedAt = time.Now()

	dbModel, err := toDriverModel(&next)
	if err != nil {
		return err
	}

	result := r.db.DB.WithContext(ctx).
		Model(&models.DriverModel{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"version":                    dbModel.Version,
			"full_name":                  dbModel.FullName,
			"email":                      dbModel.Email,
			"phone":                      dbModel.Phone,
			"vehicle_type":               dbModel.VehicleType,
			"profile_status":             dbModel.ProfileStatus,
			"availability":               dbModel.Availability,
			"cdl_number":                 dbModel.CDLNumber,
			"cdl_expiry":                 dbModel.CDLExpiry,
			"medical_card_expiry":        dbModel.MedicalCardExpiry,
			"insurance_expiry":           dbModel.InsuranceExpiry,
			"mvr_number":                 dbModel.MVRNumber,
			"background_checked_at":      dbModel.BackgroundCheckedAt,
			"pre_employment_screened_at": dbModel.PreEmploymentScreenedAt,
			"drug_screened_at":           dbModel.DrugScreenedAt,
			"cdl_image_url":              dbModel.CDLImageURL,
			"consents":                   dbModel.Consents,
			"rejected_reason":            dbModel.RejectedReason,
			"updated_at":                 dbModel.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update driver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.DB.WithContext(ctx).
			Model(&models.DriverModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check driver existence: %w", err)
		}
		if count == 0 {
			return driver.ErrDriverNotFound
		}
		return driver.ErrVersionConflict
	}

	d.Version = next.Version
	d.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *DriverRepository) ListByFleet(ctx context.Context, fleetID uuid.UUID) ([]*driver.Driver, error) {
	var dbModels []models.DriverModel
	err := r.db.DB.WithContext(ctx).
		Where("owner_fleet_id = ?", fleetID).
		Order("created_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}

	drivers := make([]*driver.Driver, 0, len(dbModels))
	for i := range dbModels {
		entity, err := toDriverEntity(&dbModels[i])
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, entity)
	}

	return drivers, nil
}

func toDriverModel(d *driver.Driver) (*models.DriverModel, error) {
	var consents []byte
	if len(d.Consents) > 0 {
		var err error
		consents, err = json.Marshal(d.Consents)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal consents: %w", err)
		}
	}

	return &models.DriverModel{
		ID:                      d.ID,
		Version:                 d.Version,
		OwnerFleetID:            d.OwnerFleetID,
		AccountID:               d.AccountID,
		InvitationID:            d.InvitationID,
		FullName:                d.FullName,
		Email:                   d.Email,
		Phone:                   d.Phone,
		VehicleType:             d.VehicleType,
		ProfileStatus:           string(d.ProfileStatus),
		Availability:            string(d.Availability),
		CDLNumber:               d.Certification.CDLNumber,
		CDLExpiry:               d.Certification.CDLExpiry,
		MedicalCardExpiry:       d.Certification.MedicalCardExpiry,
		InsuranceExpiry:         d.Certification.InsuranceExpiry,
		MVRNumber:               d.Certification.MVRNumber,
		BackgroundCheckedAt:     d.Certification.BackgroundCheckedAt,
		PreEmploymentScreenedAt: d.Certification.PreEmploymentScreenedAt,
		DrugScreenedAt:          d.Certification.DrugScreenedAt,
		CDLImageURL:             d.CDLImageURL,
		Consents:                consents,
		RejectedReason:          d.RejectedReason,
		CreatedAt:               d.CreatedAt,
		UpdatedAt:               d.UpdatedAt,
	}, nil
}

func toDriverEntity(m *models.DriverModel) (*driver.Driver, error) {
	d := &driver.Driver{
		ID:           m.ID,
		Version:      m.Version,
		OwnerFleetID: m.OwnerFleetID,
		AccountID:    m.AccountID,
		InvitationID: m.InvitationID,
		FullName:     m.FullName,
		Email:        m.Email,
		Phone:        m.Phone,
		VehicleType:  m.VehicleType,
		ProfileStatus: driver.ProfileStatus(m.ProfileStatus),
		Availability:  driver.Availability(m.Availability),
		Certification: driver.Certification{
			CDLNumber:               m.CDLNumber,
			CDLExpiry:               m.CDLExpiry,
			MedicalCardExpiry:       m.MedicalCardExpiry,
			InsuranceExpiry:         m.InsuranceExpiry,
			MVRNumber:               m.MVRNumber,
			BackgroundCheckedAt:     m.BackgroundCheckedAt,
			PreEmploymentScreenedAt: m.PreEmploymentScreenedAt,
			DrugScreenedAt:          m.DrugScreenedAt,
		},
		CDLImageURL:    m.CDLImageURL,
		RejectedReason: m.RejectedReason,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}

	if len(m.Consents) > 0 {
		if err := json.Unmarshal(m.Consents, &d.Consents); err != nil {
			return nil, fmt.Errorf("failed to unmarshal consents: %w", err)
		}
	}

	return d, nil
}
