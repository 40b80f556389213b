package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("profile not found")
	ErrDuplicate = errors.New("profile already exists")
	// ErrOwnerMissing is returned by Create when the owning user does not exist.
	ErrOwnerMissing = errors.New("profile owner does not exist")
)

type Repository interface {
	Create(ctx context.Context, p Profile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (Profile, error)
	List(ctx context.Context) ([]Profile, error)

	// Modify loads the profile of userID under a row lock, applies fn and stores
	// the result in the same transaction. Returning an error from fn aborts
	// without writing.
	Modify(ctx context.Context, userID uuid.UUID, fn func(p *Profile) error) (Profile, error)
}

// TxRepository is the part of the repository bound to an open transaction.
type TxRepository interface {
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
