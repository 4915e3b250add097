package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for accounts.
type Repository interface {
	Create(ctx context.Context, acc *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, acc *Account) error
	Delete(ctx context.Context, id uuid.UUID) error
}
