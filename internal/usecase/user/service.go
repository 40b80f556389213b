package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"devlink/internal/domain"
	"devlink/internal/domain/account"
	"devlink/internal/domain/profile"
	"devlink/internal/domain/user"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrInternal = errors.New("internal error")
)

// ProfileRemover is the profile side of account deletion.
type ProfileRemover interface {
	DeleteProfile(ctx context.Context, profiles profile.TxRepository, userID uuid.UUID) error
	Evict(ctx context.Context, userID uuid.UUID)
}

type Service struct {
	users    user.Repository
	tx       account.Transactor
	profiles ProfileRemover
}

func NewService(users user.Repository, tx account.Transactor, profiles ProfileRemover) *Service {
	return &Service{users: users, tx: tx, profiles: profiles}
}

// GetCurrent returns the user without its password hash.
func (s *Service) GetCurrent(ctx context.Context, userID uuid.UUID) (user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, internalErr(err)
	}
	return sanitizeUser(u), nil
}

// DeleteAccount removes the user and its profile in one transaction.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st account.Stores) error {
		if err := st.Users.Delete(ctx, userID); err != nil {
			return err
		}
		return s.profiles.DeleteProfile(ctx, st.Profiles, userID)
	})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrNotFound
		}
		return internalErr(err)
	}

	s.profiles.Evict(ctx, userID)
	return nil
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}

func internalErr(err error) error {
	if errors.Is(err, domain.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
