package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleetlease/internal/domain/lease"
	"fleetlease/internal/infrastructure/database/postgres/models"
)

type LeaseRepository struct {
	db *DB
}

func NewLeaseRepository(db *DB) *LeaseRepository {
	return &LeaseRepository{db: db}
}

func (r *LeaseRepository) Create(ctx context.Context, a *lease.Agreement) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Version = 1
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = lease.StatusDraft
	}

	dbModel, err := toLeaseModel(a)
	if err != nil {
		return err
	}
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create lease agreement: %w", err)
	}

	return nil
}

func (r *LeaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*lease.Agreement, error) {
	var dbModel models.LeaseAgreementModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, lease.ErrAgreementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lease agreement: %w", err)
	}

	return toLeaseEntity(&dbModel)
}

// UpdateIf is the single compare-and-swap write path for agreements. The
// row is replaced only when the stored version still matches; the new row
// carries expectedVersion+1.
func (r *LeaseRepository) UpdateIf(ctx context.Context, id uuid.UUID, expectedVersion int64, a *lease.Agreement) error {
	next := a.Clone()
	next.Version = expectedVersion + 1

	dbModel, err := toLeaseModel(next)
	if err != nil {
		return err
	}

	result := r.db.DB.WithContext(ctx).
		Model(&models.LeaseAgreementModel{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"version":          dbModel.Version,
			"lessor_snapshot":  dbModel.LessorSnapshot,
			"lessee_snapshot":  dbModel.LesseeSnapshot,
			"driver_snapshot":  dbModel.DriverSnapshot,
			"trip":             dbModel.Trip,
			"payment":          dbModel.Payment,
			"insurance":        dbModel.Insurance,
			"lessor_signature": dbModel.LessorSignature,
			"lessee_signature": dbModel.LesseeSignature,
			"status":           dbModel.Status,
			"trip_tracking":    dbModel.TripTracking,
			"updated_at":       dbModel.UpdatedAt,
			"signed_at":        dbModel.SignedAt,
			"voided_at":        dbModel.VoidedAt,
			"voided_reason":    dbModel.VoidedReason,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update lease agreement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Distinguish a vanished row from a stale version.
		var count int64
		if err := r.db.DB.WithContext(ctx).
			Model(&models.LeaseAgreementModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check lease agreement existence: %w", err)
		}
		if count == 0 {
			return lease.ErrAgreementNotFound
		}
		return lease.ErrVersionConflict
	}

	a.Version = next.Version
	return nil
}

func (r *LeaseRepository) List(ctx context.Context, filter *lease.Filter) ([]*lease.Agreement, int64, error) {
	query := r.db.DB.WithContext(ctx).Model(&models.LeaseAgreementModel{})

	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.FleetID != nil {
		query = query.Where("lessor_fleet_id = ? OR lessee_fleet_id = ?", *filter.FleetID, *filter.FleetID)
	}
	if filter.LessorFleetID != nil {
		query = query.Where("lessor_fleet_id = ?", *filter.LessorFleetID)
	}
	if filter.LesseeFleetID != nil {
		query = query.Where("lessee_fleet_id = ?", *filter.LesseeFleetID)
	}
	if filter.DriverID != nil {
		query = query.Where("driver_id = ?", *filter.DriverID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count lease agreements: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var dbModels []models.LeaseAgreementModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list lease agreements: %w", err)
	}

	agreements := make([]*lease.Agreement, 0, len(dbModels))
	for i := range dbModels {
		entity, err := toLeaseEntity(&dbModels[i])
		if err != nil {
			return nil, 0, err
		}
		agreements = append(agreements, entity)
	}

	return agreements, total, nil
}

func toLeaseModel(a *lease.Agreement) (*models.LeaseAgreementModel, error) {
	lessor, err := json.Marshal(a.Lessor)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lessor snapshot: %w", err)
	}
	lessee, err := json.Marshal(a.Lessee)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lessee snapshot: %w", err)
	}
	drv, err := json.Marshal(a.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal driver snapshot: %w", err)
	}
	trip, err := json.Marshal(a.Trip)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trip: %w", err)
	}
	pay, err := json.Marshal(a.Payment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment: %w", err)
	}
	tracking, err := json.Marshal(a.TripTracking)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trip tracking: %w", err)
	}

	m := &models.LeaseAgreementModel{
		ID:             a.ID,
		Version:        a.Version,
		LoadID:         a.LoadID,
		LessorFleetID:  a.Lessor.FleetID,
		LesseeFleetID:  a.Lessee.FleetID,
		DriverID:       a.Driver.DriverID,
		LessorSnapshot: lessor,
		LesseeSnapshot: lessee,
		DriverSnapshot: drv,
		Trip:           trip,
		Payment:        pay,
		Status:         string(a.Status),
		TripTracking:   tracking,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		SignedAt:       a.SignedAt,
		VoidedAt:       a.VoidedAt,
		VoidedReason:   a.VoidedReason,
	}

	if a.Insurance != nil {
		if m.Insurance, err = json.Marshal(a.Insurance); err != nil {
			return nil, fmt.Errorf("failed to marshal insurance: %w", err)
		}
	}
	if a.LessorSignature != nil {
		if m.LessorSignature, err = json.Marshal(a.LessorSignature); err != nil {
			return nil, fmt.Errorf("failed to marshal lessor signature: %w", err)
		}
	}
	if a.LesseeSignature != nil {
		if m.LesseeSignature, err = json.Marshal(a.LesseeSignature); err != nil {
			return nil, fmt.Errorf("failed to marshal lessee signature: %w", err)
		}
	}

	return m, nil
}

func toLeaseEntity(m *models.LeaseAgreementModel) (*lease.Agreement, error) {
	a := &lease.Agreement{
		ID:           m.ID,
		Version:      m.Version,
		LoadID:       m.LoadID,
		Status:       lease.Status(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		SignedAt:     m.SignedAt,
		VoidedAt:     m.VoidedAt,
		VoidedReason: m.VoidedReason,
	}

	if err := json.Unmarshal(m.LessorSnapshot, &a.Lessor); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lessor snapshot: %w", err)
	}
	if err := json.Unmarshal(m.LesseeSnapshot, &a.Lessee); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lessee snapshot: %w", err)
	}
	if err := json.Unmarshal(m.DriverSnapshot, &a.Driver); err != nil {
		return nil, fmt.Errorf("failed to unmarshal driver snapshot: %w", err)
	}
	if err := json.Unmarshal(m.Trip, &a.Trip); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trip: %w", err)
	}
	if err := json.Unmarshal(m.Payment, &a.Payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment: %w", err)
	}
	if err := json.Unmarshal(m.TripTracking, &a.TripTracking); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trip tracking: %w", err)
	}
	if len(m.Insurance) > 0 {
		a.Insurance = &lease.InsuranceAttestation{}
		if err := json.Unmarshal(m.Insurance, a.Insurance); err != nil {
			return nil, fmt.Errorf("failed to unmarshal insurance: %w", err)
		}
	}
	if len(m.LessorSignature) > 0 {
		a.LessorSignature = &lease.Signature{}
		if err := json.Unmarshal(m.LessorSignature, a.LessorSignature); err != nil {
			return nil, fmt.Errorf("failed to unmarshal lessor signature: %w", err)
		}
	}
	if len(m.LesseeSignature) > 0 {
		a.LesseeSignature = &lease.Signature{}
		if err := json.Unmarshal(m.LesseeSignature, a.LesseeSignature); err != nil {
			return nil, fmt.Errorf("failed to unmarshal lessee signature: %w", err)
		}
	}

	return a, nil
}
