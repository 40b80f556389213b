package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TxRepository is the part of the repository bound to an open transaction.
type TxRepository interface {
	Delete(ctx context.Context, id uuid.UUID) error
}
