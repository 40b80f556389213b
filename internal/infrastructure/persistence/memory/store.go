// Package memory is a process-local storage backend with the same uniqueness
// and transaction guarantees as the Postgres one. It backs STORAGE_DRIVER=memory
// and the tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"devlink/internal/domain/account"
	"devlink/internal/domain/profile"
	"devlink/internal/domain/user"
)

type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]user.User
	profiles map[uuid.UUID]profile.Profile

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:    map[uuid.UUID]user.User{},
		profiles: map[uuid.UUID]profile.Profile{},
		now:      time.Now,
	}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{s: s}
}

func (s *Store) Transactor() *Transactor {
	return &Transactor{s: s}
}

func (s *Store) Ping(context.Context) error { return nil }

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, u user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.ID]; ok {
		return user.ErrDuplicate
	}
	if _, ok := r.s.findByEmail(u.Email); ok {
		return user.ErrDuplicate
	}
	now := r.s.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.findByEmail(email)
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, ok := r.s.findByEmail(email)
	return ok, nil
}

func (r *UserRepository) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make(map[uuid.UUID]user.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// Count is used by tests to assert that no duplicate rows were written.
func (r *UserRepository) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.users)
}

func (s *Store) findByEmail(email string) (user.User, bool) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return user.User{}, false
}

type ProfileRepository struct {
	s *Store
}

func (r *ProfileRepository) Create(_ context.Context, p profile.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[p.UserID]; !ok {
		return profile.ErrOwnerMissing
	}
	if _, ok := r.s.profiles[p.UserID]; ok {
		return profile.ErrDuplicate
	}
	now := r.s.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.profiles[p.UserID] = cloneProfile(p)
	return nil
}

func (r *ProfileRepository) GetByUserID(_ context.Context, userID uuid.UUID) (profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (r *ProfileRepository) List(_ context.Context) ([]profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]profile.Profile, 0, len(r.s.profiles))
	for _, p := range r.s.profiles {
		out = append(out, cloneProfile(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ProfileRepository) Modify(_ context.Context, userID uuid.UUID, fn func(p *profile.Profile) error) (profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.profiles[userID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	next := cloneProfile(cur)
	if err := fn(&next); err != nil {
		return profile.Profile{}, err
	}
	next.ID, next.UserID, next.CreatedAt = cur.ID, cur.UserID, cur.CreatedAt
	next.UpdatedAt = r.s.now().UTC()
	r.s.profiles[userID] = cloneProfile(next)
	return next, nil
}

// Transactor stages deletes and applies them together on commit.
type Transactor struct {
	s *Store
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, s account.Stores) error) error {
	tx := &stagedTx{s: t.s}
	if err := fn(ctx, account.Stores{Users: tx, Profiles: (*stagedProfiles)(tx)}); err != nil {
		return err
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, id := range tx.users {
		delete(t.s.users, id)
		// mirrors ON DELETE CASCADE on profiles.user_id
		delete(t.s.profiles, id)
	}
	for _, id := range tx.profiles {
		delete(t.s.profiles, id)
	}
	return nil
}

type stagedTx struct {
	s        *Store
	users    []uuid.UUID
	profiles []uuid.UUID
}

func (tx *stagedTx) Delete(_ context.Context, id uuid.UUID) error {
	tx.s.mu.Lock()
	_, ok := tx.s.users[id]
	tx.s.mu.Unlock()
	if !ok || slices.Contains(tx.users, id) {
		return user.ErrNotFound
	}
	tx.users = append(tx.users, id)
	return nil
}

type stagedProfiles stagedTx

func (tx *stagedProfiles) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	tx.profiles = append(tx.profiles, userID)
	return nil
}

func cloneProfile(p profile.Profile) profile.Profile {
	p.Skills = slices.Clone(p.Skills)
	p.Experience = slices.Clone(p.Experience)
	p.Education = slices.Clone(p.Education)
	return p
}
