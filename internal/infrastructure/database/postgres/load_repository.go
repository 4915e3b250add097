package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleetlease/internal/domain/load"
	"fleetlease/internal/infrastructure/database/postgres/models"
)

type LoadRepository struct {
	db *DB
}

func NewLoadRepository(db *DB) *LoadRepository {
	return &LoadRepository{db: db}
}

func (r *LoadRepository) Create(ctx context.Context, l *load.Load) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now
	if l.Status == "" {
		l.Status = load.StatusOpen
	}

	dbModel := toLoadModel(l)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create load: %w", err)
	}

	return nil
}

func (r *LoadRepository) GetByID(ctx context.Context, id uuid.UUID) (*load.Load, error) {
	var dbModel models.LoadModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, load.ErrLoadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get load: %w", err)
	}

	return toLoadEntity(&dbModel), nil
}

// UpdateStatus moves a load between statuses only when it is still in the
// expected one, so two fleets racing to match the same load cannot both win.
func (r *LoadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to load.Status) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.LoadModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update load status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.DB.WithContext(ctx).
			Model(&models.LoadModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check load existence: %w", err)
		}
		if count == 0 {
			return load.ErrLoadNotFound
		}
		return load.ErrLoadNotOpen
	}

	return nil
}

func (r *LoadRepository) ListOpen(ctx context.Context, page, pageSize int) ([]*load.Load, int64, error) {
	query := r.db.DB.WithContext(ctx).
		Model(&models.LoadModel{}).
		Where("status = ?", string(load.StatusOpen))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count loads: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var dbModels []models.LoadModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list loads: %w", err)
	}

	loads := make([]*load.Load, 0, len(dbModels))
	for i := range dbModels {
		loads = append(loads, toLoadEntity(&dbModels[i]))
	}

	return loads, total, nil
}

func (r *LoadRepository) ListByFleet(ctx context.Context, fleetID uuid.UUID) ([]*load.Load, error) {
	var dbModels []models.LoadModel
	err := r.db.DB.WithContext(ctx).
		Where("fleet_id = ?", fleetID).
		Order("created_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list fleet loads: %w", err)
	}

	loads := make([]*load.Load, 0, len(dbModels))
	for i := range dbModels {
		loads = append(loads, toLoadEntity(&dbModels[i]))
	}

	return loads, nil
}

func toLoadModel(l *load.Load) *models.LoadModel {
	return &models.LoadModel{
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
		UpdatedAt:        l.UpdatedAt,
	}
}

func toLoadEntity(m *models.LoadModel) *load.Load {
	return &load.Load{
		ID:               m.ID,
		FleetID:          m.FleetID,
		Origin:           m.Origin,
		Destination:      m.Destination,
		CargoDescription: m.CargoDescription,
		WeightLbs:        m.WeightLbs,
		OfferedCents:     m.OfferedCents,
		PickupDate:       m.PickupDate,
		DeliveryDate:     m.DeliveryDate,
		Status:           load.Status(m.Status),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
