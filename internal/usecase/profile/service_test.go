package profile

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"devlink/internal/domain/profile"
	"devlink/internal/domain/user"
	"devlink/internal/infrastructure/persistence/memory"
	"devlink/internal/pkg/sanitize"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *mapCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func str(s string) *string { return &s }

type fixture struct {
	store *memory.Store
	svc   *Service
	cache *mapCache
	user  user.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	cache := newMapCache()
	u := user.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", PasswordHash: "x", Avatar: "//avatar"}
	if err := store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	svc := NewService(store.Profiles(), store.Users(), WithCache(cache), WithTextCleaner(sanitize.NewText()))
	return fixture{store: store, svc: svc, cache: cache, user: u}
}

func (f fixture) createProfile(t *testing.T) View {
	t.Helper()
	v, err := f.svc.Upsert(context.Background(), f.user.ID, UpsertInput{
		Status:  str("Developer"),
		Skills:  str("go, sql"),
		Company: str("Acme"),
		Bio:     str("Gopher"),
		Twitter: str("https://twitter.com/ada"),
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return v
}

func TestService_GetOwn_NotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.GetOwn(context.Background(), f.user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Upsert_CreateRequiresStatusAndSkills(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Upsert(ctx, f.user.ID, UpsertInput{Skills: str("go")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without status, got %v", err)
	}
	if _, err := f.svc.Upsert(ctx, f.user.ID, UpsertInput{Status: str("Dev"), Skills: str(" , ")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without skills, got %v", err)
	}
	if _, err := f.svc.GetOwn(ctx, f.user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no profile to be created, got %v", err)
	}
}

func TestService_Upsert_CreateReportsEveryMissingField(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upsert(context.Background(), f.user.ID, UpsertInput{Status: str("  ")})
	var fields FieldErrors
	if !errors.As(err, &fields) || !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if len(fields) != 2 || fields[0].Field != "status" || fields[1].Field != "skills" {
		t.Fatalf("expected status and skills reported, got %+v", fields)
	}
	if fields[0].Message != "Status is required" || fields[1].Message != "Skills is required" {
		t.Fatalf("unexpected messages %+v", fields)
	}
}

func TestService_Upsert_UnknownUserWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ghost := uuid.New()

	_, err := f.svc.Upsert(ctx, ghost, UpsertInput{Status: str("Dev"), Skills: str("go")})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := f.store.Profiles().GetByUserID(ctx, ghost); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("expected no profile stored, got %v", err)
	}
}

type staleUsers struct {
	UserLookup
	u user.User
}

func (s staleUsers) GetByID(context.Context, uuid.UUID) (user.User, error) {
	return s.u, nil
}

func TestService_Upsert_OwnerDeletedDuringCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ghost := user.User{ID: uuid.New(), Name: "Bob"}
	svc := NewService(f.store.Profiles(), staleUsers{UserLookup: f.store.Users(), u: ghost})

	_, err := svc.Upsert(ctx, ghost.ID, UpsertInput{Status: str("Dev"), Skills: str("go")})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := f.store.Profiles().GetByUserID(ctx, ghost.ID); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("expected no profile stored, got %v", err)
	}
}

func TestService_Upsert_CreateJoinsOwner(t *testing.T) {
	f := newFixture(t)
	v := f.createProfile(t)

	if v.Owner.ID != f.user.ID || v.Owner.Name != "Ada" || v.Owner.Avatar != "//avatar" {
		t.Fatalf("unexpected owner: %+v", v.Owner)
	}
	if v.Profile.Status != "Developer" || v.Profile.Company != "Acme" {
		t.Fatalf("unexpected profile: %+v", v.Profile)
	}
	if v.Profile.ID == uuid.Nil {
		t.Fatalf("expected profile id")
	}
}

func TestService_Upsert_SkillsParsedWithoutCompany(t *testing.T) {
	f := newFixture(t)

	v, err := f.svc.Upsert(context.Background(), f.user.ID, UpsertInput{
		Status: str("Developer"),
		Skills: str("go, rust , ts"),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []string{"go", "rust", "ts"}
	if !reflect.DeepEqual(v.Profile.Skills, want) {
		t.Fatalf("expected %v, got %v", want, v.Profile.Skills)
	}
}

func TestService_Upsert_MergesInsteadOfOverwriting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.createProfile(t)

	second, err := f.svc.Upsert(ctx, f.user.ID, UpsertInput{
		Status:   str("Senior Developer"),
		Skills:   str("go, rust , ts"),
		Location: str("Berlin"),
		Company:  str(""),
		Facebook: str("https://facebook.com/ada"),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	p := second.Profile
	if p.ID != first.Profile.ID {
		t.Fatalf("expected update in place, got new profile id")
	}
	if p.Status != "Senior Developer" || p.Location != "Berlin" {
		t.Fatalf("expected submitted fields applied, got %+v", p)
	}
	if p.Company != "Acme" || p.Bio != "Gopher" {
		t.Fatalf("expected omitted fields retained, got company=%q bio=%q", p.Company, p.Bio)
	}
	if p.Social.Twitter != "https://twitter.com/ada" || p.Social.Facebook != "https://facebook.com/ada" {
		t.Fatalf("expected social links merged, got %+v", p.Social)
	}
	if !reflect.DeepEqual(p.Skills, []string{"go", "rust", "ts"}) {
		t.Fatalf("unexpected skills: %v", p.Skills)
	}

	stored, err := f.svc.GetOwn(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if stored.Profile.Company != "Acme" || stored.Profile.Location != "Berlin" {
		t.Fatalf("unexpected stored profile: %+v", stored.Profile)
	}
}

func TestService_Upsert_SanitizesBio(t *testing.T) {
	f := newFixture(t)
	v, err := f.svc.Upsert(context.Background(), f.user.ID, UpsertInput{
		Status: str("Dev"),
		Skills: str("go"),
		Bio:    str("<b>hi</b><script>x()</script>"),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v.Profile.Bio != "hi" {
		t.Fatalf("expected markup stripped, got %q", v.Profile.Bio)
	}
}

type racingProfiles struct {
	profile.Repository
}

func (racingProfiles) Modify(context.Context, uuid.UUID, func(*profile.Profile) error) (profile.Profile, error) {
	return profile.Profile{}, profile.ErrNotFound
}

func (racingProfiles) Create(context.Context, profile.Profile) error {
	return profile.ErrDuplicate
}

func TestService_Upsert_LosingConcurrentCreate(t *testing.T) {
	f := newFixture(t)
	svc := NewService(racingProfiles{}, f.store.Users())

	_, err := svc.Upsert(context.Background(), f.user.ID, UpsertInput{Status: str("Dev"), Skills: str("go")})
	if !errors.Is(err, ErrDuplicateProfile) {
		t.Fatalf("expected ErrDuplicateProfile, got %v", err)
	}
}

func TestService_AddExperience_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createProfile(t)

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	next := 0
	f.svc.newID = func() uuid.UUID { id := ids[next]; next++; return id }

	from := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := f.svc.AddExperience(ctx, f.user.ID, ExperienceInput{Title: "Dev", Company: "Initech", From: from, To: &to}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	v, err := f.svc.AddExperience(ctx, f.user.ID, ExperienceInput{Title: "Lead", Company: "Acme", From: to, To: &to, Current: true})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	exp := v.Profile.Experience
	if len(exp) != 2 || exp[0].ID != ids[1] || exp[1].ID != ids[0] {
		t.Fatalf("expected newest first, got %+v", exp)
	}
	if exp[0].To != nil {
		t.Fatalf("expected current entry to drop its to-date")
	}
	if exp[1].To == nil || !exp[1].To.Equal(to) {
		t.Fatalf("expected to-date kept, got %v", exp[1].To)
	}
}

func TestService_AddExperience_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createProfile(t)
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	before := from.AddDate(-1, 0, 0)

	cases := []ExperienceInput{
		{Company: "Acme", From: from},
		{Title: "Dev", From: from},
		{Title: "Dev", Company: "Acme"},
		{Title: "Dev", Company: "Acme", From: from, To: &before},
	}
	for _, in := range cases {
		if _, err := f.svc.AddExperience(ctx, f.user.ID, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}
}

func TestService_AddEntries_WithoutProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := f.svc.AddExperience(ctx, f.user.ID, ExperienceInput{Title: "Dev", Company: "Acme", From: from}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.svc.AddEducation(ctx, f.user.ID, EducationInput{School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: from}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_RemoveExperience(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createProfile(t)
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	v, err := f.svc.AddExperience(ctx, f.user.ID, ExperienceInput{Title: "Dev", Company: "Acme", From: from})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	v, err = f.svc.AddExperience(ctx, f.user.ID, ExperienceInput{Title: "Lead", Company: "Acme", From: from})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	before := v.Profile.Experience

	unchanged, err := f.svc.RemoveExperience(ctx, f.user.ID, uuid.New())
	if err != nil {
		t.Fatalf("expected no error for unknown id, got %v", err)
	}
	if !reflect.DeepEqual(unchanged.Profile.Experience, before) {
		t.Fatalf("expected list unchanged, got %+v", unchanged.Profile.Experience)
	}

	after, err := f.svc.RemoveExperience(ctx, f.user.ID, before[1].ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(after.Profile.Experience) != 1 || after.Profile.Experience[0].ID != before[0].ID {
		t.Fatalf("expected only the newest entry left, got %+v", after.Profile.Experience)
	}
}

func TestService_RemoveEducation_TargetsEducationList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createProfile(t)
	from := time.Date(2015, 9, 1, 0, 0, 0, 0, time.UTC)

	v, err := f.svc.AddExperience(ctx, f.user.ID, ExperienceInput{Title: "Dev", Company: "Acme", From: from})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	expID := v.Profile.Experience[0].ID

	v, err = f.svc.AddEducation(ctx, f.user.ID, EducationInput{School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: from})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	eduID := v.Profile.Education[0].ID

	v, err = f.svc.RemoveEducation(ctx, f.user.ID, expID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(v.Profile.Experience) != 1 || len(v.Profile.Education) != 1 {
		t.Fatalf("an experience id must not remove anything from education: %+v", v.Profile)
	}

	v, err = f.svc.RemoveEducation(ctx, f.user.ID, eduID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(v.Profile.Education) != 0 || len(v.Profile.Experience) != 1 {
		t.Fatalf("expected education removed and experience kept: %+v", v.Profile)
	}
}

func TestService_List_JoinsOwnersAndCaches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createProfile(t)

	other := user.User{ID: uuid.New(), Name: "Bob", Email: "bob@example.com", PasswordHash: "x"}
	if err := f.store.Users().Create(ctx, other); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := f.svc.Upsert(ctx, other.ID, UpsertInput{Status: str("Student"), Skills: str("js")}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	items, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(items))
	}
	names := map[string]bool{}
	for _, it := range items {
		names[it.Owner.Name] = true
	}
	if !names["Ada"] || !names["Bob"] {
		t.Fatalf("expected owners joined, got %v", names)
	}
	if !f.cache.has(cacheKeyList) {
		t.Fatalf("expected list to be cached")
	}

	if _, err := f.svc.Upsert(ctx, other.ID, UpsertInput{Location: str("Paris")}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if f.cache.has(cacheKeyList) {
		t.Fatalf("expected write to evict cached list")
	}
}

func TestService_GetByUser_ServesFromCacheUntilWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createProfile(t)

	if _, err := f.svc.GetByUser(ctx, f.user.ID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	key := cacheKeyUserPrefix + f.user.ID.String()
	if !f.cache.has(key) {
		t.Fatalf("expected view cached under %s", key)
	}

	if _, err := f.svc.Upsert(ctx, f.user.ID, UpsertInput{Location: str("Oslo")}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	v, err := f.svc.GetByUser(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v.Profile.Location != "Oslo" {
		t.Fatalf("expected fresh view after write, got %q", v.Profile.Location)
	}
}

func TestParseSkills(t *testing.T) {
	cases := map[string][]string{
		"go, rust , ts": {"go", "rust", "ts"},
		"go":            {"go"},
		" , go,,":       {"go"},
		"":              {},
	}
	for in, want := range cases {
		if got := ParseSkills(in); !reflect.DeepEqual(got, want) {
			t.Fatalf("ParseSkills(%q) = %v, want %v", in, got, want)
		}
	}
}
