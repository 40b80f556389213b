package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"devlink/internal/domain"
	"devlink/internal/domain/user"
	"devlink/internal/pkg/avatar"
	"devlink/internal/pkg/password"
)

const MinPasswordLength = 5

var (
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInternal           = errors.New("internal error")
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

type Usecase interface {
	Register(ctx context.Context, in RegisterInput) (string, error)
	Login(ctx context.Context, in LoginInput) (string, error)
}

type Service struct {
	users  user.Repository
	hasher password.Hasher
	tokens TokenIssuer

	// compared against when the email is unknown, so both failure paths cost
	// one hash verification
	decoyMu   sync.Mutex
	decoyHash string
}

func NewService(users user.Repository, hasher password.Hasher, tokens TokenIssuer) *Service {
	s := &Service{users: users, hasher: hasher, tokens: tokens}
	// a failure here is retried by the first login for an unknown email
	_, _ = s.decoy()
	return s
}

func (s *Service) decoy() (string, error) {
	s.decoyMu.Lock()
	defer s.decoyMu.Unlock()

	if s.decoyHash != "" {
		return s.decoyHash, nil
	}
	h, err := s.hasher.Hash(uuid.NewString())
	if err != nil {
		return "", err
	}
	s.decoyHash = h
	return h, nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || !isValidPassword(in.Password) {
		return "", ErrInvalidInput
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return "", internalErr(err)
	}
	if exists {
		return "", ErrDuplicateUser
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", internalErr(err)
	}

	u := user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Avatar:       avatar.Gravatar(email),
	}

	// The unique index on email settles concurrent registrations.
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			return "", ErrDuplicateUser
		}
		return "", internalErr(err)
	}

	return s.issue(u.ID)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (string, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return "", ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			decoy, herr := s.decoy()
			if herr != nil {
				return "", internalErr(herr)
			}
			_ = s.hasher.Verify(in.Password, decoy)
			return "", ErrInvalidCredentials
		}
		return "", internalErr(err)
	}

	if !s.hasher.Verify(in.Password, u.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.issue(u.ID)
}

func (s *Service) issue(userID uuid.UUID) (string, error) {
	tok, err := s.tokens.Issue(userID)
	if err != nil {
		return "", internalErr(err)
	}
	return tok, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidPassword(pw string) bool {
	return len(pw) >= MinPasswordLength
}

// internalErr keeps domain.ErrUnavailable visible so callers can report a
// retryable failure.
func internalErr(err error) error {
	if errors.Is(err, domain.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
