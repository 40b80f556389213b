package profile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"devlink/internal/domain"
	"devlink/internal/domain/profile"
	"devlink/internal/domain/user"
)

var (
	ErrNotFound         = errors.New("profile not found")
	ErrDuplicateProfile = errors.New("profile already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal error")
)

const (
	cacheKeyList       = "profile:list"
	cacheKeyUserPrefix = "profile:user:"
)

// View is a profile joined with the public fields of its owner.
type View struct {
	Profile profile.Profile
	Owner   user.Public
}

type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.User, error)
}

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type TextCleaner interface {
	Clean(s string) string
}

type Service struct {
	profiles profile.Repository
	users    UserLookup
	cache    Cache
	cleaner  TextCleaner
	logger   *log.Logger

	newID func() uuid.UUID
}

type Option func(*Service)

func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithTextCleaner(c TextCleaner) Option {
	return func(s *Service) { s.cleaner = c }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewService(profiles profile.Repository, users UserLookup, opts ...Option) *Service {
	s := &Service{profiles: profiles, users: users, newID: uuid.New}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) GetOwn(ctx context.Context, userID uuid.UUID) (View, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return View{}, mapRepoErr(err)
	}
	return s.join(ctx, p)
}

func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) (View, error) {
	key := cacheKeyUserPrefix + userID.String()

	var cached View
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	v, err := s.GetOwn(ctx, userID)
	if err != nil {
		return View{}, err
	}
	s.cacheSet(ctx, key, v)
	return v, nil
}

func (s *Service) List(ctx context.Context) ([]View, error) {
	var cached []View
	if s.cacheGet(ctx, cacheKeyList, &cached) {
		return cached, nil
	}

	items, err := s.profiles.List(ctx)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.UserID)
	}
	owners, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, internalErr(err)
	}

	out := make([]View, 0, len(items))
	for _, p := range items {
		owner, ok := owners[p.UserID]
		if !ok {
			// owner deleted between the two reads
			continue
		}
		out = append(out, View{Profile: p, Owner: owner.Public()})
	}

	s.cacheSet(ctx, cacheKeyList, out)
	return out, nil
}

// Upsert merges the provided fields into the existing profile, or creates one
// when the user has none yet. Creation requires status and skills.
func (s *Service) Upsert(ctx context.Context, userID uuid.UUID, in UpsertInput) (View, error) {
	in = s.cleanUpsert(in)

	p, err := s.profiles.Modify(ctx, userID, func(p *profile.Profile) error {
		in.applyTo(p)
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, profile.ErrNotFound):
		p, err = s.create(ctx, userID, in)
		if err != nil {
			return View{}, err
		}
	default:
		return View{}, mapRepoErr(err)
	}

	s.evict(ctx, userID)
	return s.join(ctx, p)
}

func (s *Service) create(ctx context.Context, userID uuid.UUID, in UpsertInput) (profile.Profile, error) {
	if err := in.validateForCreate(); err != nil {
		return profile.Profile{}, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return profile.Profile{}, ErrUserNotFound
		}
		return profile.Profile{}, internalErr(err)
	}

	p := profile.Profile{ID: s.newID(), UserID: userID}
	in.applyTo(&p)

	if err := s.profiles.Create(ctx, p); err != nil {
		switch {
		case errors.Is(err, profile.ErrDuplicate):
			return profile.Profile{}, ErrDuplicateProfile
		case errors.Is(err, profile.ErrOwnerMissing):
			// account deleted after the lookup above
			return profile.Profile{}, ErrUserNotFound
		}
		return profile.Profile{}, internalErr(err)
	}

	created, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return profile.Profile{}, mapRepoErr(err)
	}
	return created, nil
}

func (s *Service) AddExperience(ctx context.Context, userID uuid.UUID, in ExperienceInput) (View, error) {
	e, err := in.toEntry(s.newID(), s.clean)
	if err != nil {
		return View{}, err
	}
	return s.modify(ctx, userID, func(p *profile.Profile) error {
		p.PrependExperience(e)
		return nil
	})
}

func (s *Service) AddEducation(ctx context.Context, userID uuid.UUID, in EducationInput) (View, error) {
	e, err := in.toEntry(s.newID(), s.clean)
	if err != nil {
		return View{}, err
	}
	return s.modify(ctx, userID, func(p *profile.Profile) error {
		p.PrependEducation(e)
		return nil
	})
}

// RemoveExperience is a no-op for an unknown entry id.
func (s *Service) RemoveExperience(ctx context.Context, userID, entryID uuid.UUID) (View, error) {
	return s.modify(ctx, userID, func(p *profile.Profile) error {
		p.RemoveExperience(entryID)
		return nil
	})
}

func (s *Service) RemoveEducation(ctx context.Context, userID, entryID uuid.UUID) (View, error) {
	return s.modify(ctx, userID, func(p *profile.Profile) error {
		p.RemoveEducation(entryID)
		return nil
	})
}

// DeleteProfile removes the profile through a transaction-bound repository.
// It is only reachable through account deletion, which also removes the user.
func (s *Service) DeleteProfile(ctx context.Context, profiles profile.TxRepository, userID uuid.UUID) error {
	if err := profiles.DeleteByUserID(ctx, userID); err != nil {
		return internalErr(err)
	}
	return nil
}

// Evict drops cached views of userID; call it after the deleting transaction
// committed.
func (s *Service) Evict(ctx context.Context, userID uuid.UUID) {
	s.evict(ctx, userID)
}

func (s *Service) modify(ctx context.Context, userID uuid.UUID, fn func(p *profile.Profile) error) (View, error) {
	p, err := s.profiles.Modify(ctx, userID, fn)
	if err != nil {
		return View{}, mapRepoErr(err)
	}
	s.evict(ctx, userID)
	return s.join(ctx, p)
}

func (s *Service) join(ctx context.Context, p profile.Profile) (View, error) {
	owner, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return View{}, ErrNotFound
		}
		return View{}, internalErr(err)
	}
	return View{Profile: p, Owner: owner.Public()}, nil
}

func (s *Service) clean(v string) string {
	if s.cleaner == nil {
		return strings.TrimSpace(v)
	}
	return s.cleaner.Clean(v)
}

func (s *Service) cleanUpsert(in UpsertInput) UpsertInput {
	if in.Bio != nil {
		bio := s.clean(*in.Bio)
		in.Bio = &bio
	}
	return in
}

func (s *Service) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.GetJSON(ctx, key, out)
	if err != nil {
		s.logf("[Profile] cache read failed key=%s err=%v", key, err)
		return false
	}
	return ok
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, 0); err != nil {
		s.logf("[Profile] cache write failed key=%s err=%v", key, err)
	}
}

func (s *Service) evict(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyUserPrefix+userID.String(), cacheKeyList); err != nil {
		s.logf("[Profile] cache evict failed user_id=%s err=%v", userID, err)
	}
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

func mapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, profile.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrInvalidInput):
		return err
	default:
		return internalErr(err)
	}
}

func internalErr(err error) error {
	if errors.Is(err, domain.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
