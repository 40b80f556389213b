package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"devlink/internal/domain/profile"
	"devlink/internal/domain/user"
	"devlink/internal/infrastructure/persistence/memory"
	profileuc "devlink/internal/usecase/profile"
)

func str(s string) *string { return &s }

func seed(t *testing.T, store *memory.Store, profiles *profileuc.Service) user.User {
	t.Helper()
	ctx := context.Background()
	u := user.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	if err := store.Users().Create(ctx, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := profiles.Upsert(ctx, u.ID, profileuc.UpsertInput{Status: str("Dev"), Skills: str("go")}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return u
}

func TestService_GetCurrent_HidesPasswordHash(t *testing.T) {
	store := memory.NewStore()
	profiles := profileuc.NewService(store.Profiles(), store.Users())
	u := seed(t, store, profiles)
	svc := NewService(store.Users(), store.Transactor(), profiles)

	got, err := svc.GetCurrent(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.PasswordHash != "" {
		t.Fatalf("expected password hash to be cleared")
	}
	if got.Email != u.Email || got.Name != u.Name {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestService_DeleteAccount_RemovesUserAndProfile(t *testing.T) {
	store := memory.NewStore()
	profiles := profileuc.NewService(store.Profiles(), store.Users())
	u := seed(t, store, profiles)
	svc := NewService(store.Users(), store.Transactor(), profiles)
	ctx := context.Background()

	if err := svc.DeleteAccount(ctx, u.ID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if _, err := svc.GetCurrent(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted user, got %v", err)
	}
	if _, err := profiles.GetByUser(ctx, u.ID); !errors.Is(err, profileuc.ErrNotFound) {
		t.Fatalf("expected profile to be gone, got %v", err)
	}
	if err := svc.DeleteAccount(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestService_DeleteAccount_WithoutProfile(t *testing.T) {
	store := memory.NewStore()
	profiles := profileuc.NewService(store.Profiles(), store.Users())
	svc := NewService(store.Users(), store.Transactor(), profiles)
	ctx := context.Background()

	u := user.User{ID: uuid.New(), Name: "Bob", Email: "bob@example.com", PasswordHash: "hash"}
	if err := store.Users().Create(ctx, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := svc.DeleteAccount(ctx, u.ID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if store.Users().Count() != 0 {
		t.Fatalf("expected user removed")
	}
}

type failingRemover struct {
	evicted bool
}

func (f *failingRemover) DeleteProfile(context.Context, profile.TxRepository, uuid.UUID) error {
	return errors.New("disk on fire")
}

func (f *failingRemover) Evict(context.Context, uuid.UUID) { f.evicted = true }

func TestService_DeleteAccount_FailureKeepsBothRecords(t *testing.T) {
	store := memory.NewStore()
	profiles := profileuc.NewService(store.Profiles(), store.Users())
	u := seed(t, store, profiles)

	remover := &failingRemover{}
	svc := NewService(store.Users(), store.Transactor(), remover)
	ctx := context.Background()

	err := svc.DeleteAccount(ctx, u.ID)
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if remover.evicted {
		t.Fatalf("cache must not be evicted for a rolled back delete")
	}
	if _, err := svc.GetCurrent(ctx, u.ID); err != nil {
		t.Fatalf("expected user to survive, got %v", err)
	}
	if _, err := profiles.GetOwn(ctx, u.ID); err != nil {
		t.Fatalf("expected profile to survive, got %v", err)
	}
}
