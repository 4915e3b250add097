package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleetlease/internal/domain/account"
	"fleetlease/internal/infrastructure/database/postgres/models"
)

type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	if acc.ID == uuid.Nil {
		acc.ID = uuid.New()
	}
	now := time.Now()
	acc.CreatedAt = now
	acc.UpdatedAt = now

	dbModel := toAccountModel(acc)
	err := r.db.DB.WithContext(ctx).Create(dbModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return account.ErrAccountAlreadyExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var dbModel models.AccountModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return toAccountEntity(&dbModel), nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	var dbModel models.AccountModel
	err := r.db.DB.WithContext(ctx).
		Where("email = ?", email).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return toAccountEntity(&dbModel), nil
}

func (r *AccountRepository) Update(ctx context.Context, acc *account.Account) error {
	acc.UpdatedAt = time.Now()
	dbModel := toAccountModel(acc)

	result := r.db.DB.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("id = ?", acc.ID).
		Updates(dbModel)
	if result.Error != nil {
		return fmt.Errorf("failed to update account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.AccountModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

func toAccountModel(acc *account.Account) *models.AccountModel {
	return &models.AccountModel{
		ID:             acc.ID,
		Email:          acc.Email,
		PasswordHashed: acc.PasswordHashed,
		Role:           string(acc.Role),
		FullName:       acc.FullName,
		Phone:          acc.Phone,
		CompanyName:    acc.CompanyName,
		LegalName:      acc.LegalName,
		Address:        acc.Address,
		USDOTNumber:    acc.USDOTNumber,
		MCNumber:       acc.MCNumber,
		IsActive:       acc.IsActive,
		CreatedAt:      acc.CreatedAt,
		UpdatedAt:      acc.UpdatedAt,
	}
}

func toAccountEntity(m *models.AccountModel) *account.Account {
	return &account.Account{
		ID:             m.ID,
		Email:          m.Email,
		PasswordHashed: m.PasswordHashed,
		Role:           m.Role,
		FullName:       m.FullName,
		Phone:          m.Phone,
		CompanyName:    m.CompanyName,
		LegalName:      m.LegalName,
		Address:        m.Address,
		USDOTNumber:    m.USDOTNumber,
		MCNumber:       m.MCNumber,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
