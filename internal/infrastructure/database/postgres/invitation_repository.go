package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleetlease/internal/domain/invitation"
	"fleetlease/internal/infrastructure/database/postgres/models"
)

type InvitationRepository struct {
	db *DB
}

func NewInvitationRepository(db *DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(ctx context.Context, inv *invitation.Invitation) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.CreatedAt = time.Now()
	if inv.Status == "" {
		inv.Status = invitation.StatusPending
	}

	dbModel := toInvitationModel(inv)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	return nil
}

func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*invitation.Invitation, error) {
	var dbModel models.InvitationModel
	err := r.db.DB.WithContext(ctx).
		Where("token = ?", token).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invitation.ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return toInvitationEntity(&dbModel), nil
}

// MarkUsed flips the invitation to used, conditioned on it still being
// pending. Of two concurrent redemptions exactly one row update lands;
// the loser gets ErrAlreadyUsed.
func (r *InvitationRepository) MarkUsed(ctx context.Context, id uuid.UUID, driverID uuid.UUID) error {
	now := time.Now()
	result := r.db.DB.WithContext(ctx).
		Model(&models.InvitationModel{}).
		Where("id = ? AND status = ?", id, string(invitation.StatusPending)).
		Updates(map[string]interface{}{
			"status":    string(invitation.StatusUsed),
			"driver_id": driverID,
			"used_at":   now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark invitation used: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.DB.WithContext(ctx).
			Model(&models.InvitationModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check invitation existence: %w", err)
		}
		if count == 0 {
			return invitation.ErrInvitationNotFound
		}
		return invitation.ErrAlreadyUsed
	}

	return nil
}

// Release reverts a claim back to pending when redemption could not
// finish. Conditioning on the claiming driver id keeps it from undoing a
// different redemption's claim.
func (r *InvitationRepository) Release(ctx context.Context, id uuid.UUID, driverID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.InvitationModel{}).
		Where("id = ? AND status = ? AND driver_id = ?", id, string(invitation.StatusUsed), driverID).
		Updates(map[string]interface{}{
			"status":    string(invitation.StatusPending),
			"driver_id": nil,
			"used_at":   nil,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to release invitation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return invitation.ErrInvitationNotFound
	}

	return nil
}

func (r *InvitationRepository) ListByFleet(ctx context.Context, fleetID uuid.UUID) ([]*invitation.Invitation, error) {
	var dbModels []models.InvitationModel
	err := r.db.DB.WithContext(ctx).
		Where("fleet_id = ?", fleetID).
		Order("created_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	invitations := make([]*invitation.Invitation, 0, len(dbModels))
	for i := range dbModels {
		invitations = append(invitations, toInvitationEntity(&dbModels[i]))
	}

	return invitations, nil
}

func toInvitationModel(inv *invitation.Invitation) *models.InvitationModel {
	return &models.InvitationModel{
		ID:              inv.ID,
		Token:           inv.Token,
		FleetID:         inv.FleetID,
		Email:           inv.Email,
		DQFAcknowledged: inv.DQFAcknowledged,
		Status:          string(inv.Status),
		ExpiresAt:       inv.ExpiresAt,
		DriverID:        inv.DriverID,
		UsedAt:          inv.UsedAt,
		CreatedAt:       inv.CreatedAt,
	}
}

func toInvitationEntity(m *models.InvitationModel) *invitation.Invitation {
	return &invitation.Invitation{
		ID:              m.ID,
		Token:           m.Token,
		FleetID:         m.FleetID,
		Email:           m.Email,
		DQFAcknowledged: m.DQFAcknowledged,
		Status:          invitation.Status(m.Status),
		ExpiresAt:       m.ExpiresAt,
		DriverID:        m.DriverID,
		UsedAt:          m.UsedAt,
		CreatedAt:       m.CreatedAt,
	}
}
