package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"devlink/internal/domain/profile"
	"devlink/internal/pkg/validation"
)

// UpsertInput holds the submitted profile fields. A nil or blank field is
// treated as not submitted and leaves the stored value untouched.
type UpsertInput struct {
	Company        *string
	Website        *string
	Status         *string
	Location       *string
	Bio            *string
	GithubUsername *string
	// Skills is a comma separated list, e.g. "go, rust , ts".
	Skills *string

	Twitter   *string
	Facebook  *string
	Instagram *string
	LinkedIn  *string
}

// ParseSkills splits a comma separated list, trimming each entry and dropping
// empty ones.
func ParseSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func present(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	s := strings.TrimSpace(*v)
	return s, s != ""
}

// FieldErrors lists every rejected field of a submission. It matches
// ErrInvalidInput.
type FieldErrors []validation.FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, f := range e {
		msgs = append(msgs, f.Message)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(msgs, "; ")
}

func (e FieldErrors) Unwrap() error { return ErrInvalidInput }

func (in UpsertInput) validateForCreate() error {
	var errs FieldErrors
	if _, ok := present(in.Status); !ok {
		errs = append(errs, validation.FieldError{Field: "status", Message: "Status is required"})
	}
	raw, _ := present(in.Skills)
	if len(ParseSkills(raw)) == 0 {
		errs = append(errs, validation.FieldError{Field: "skills", Message: "Skills is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (in UpsertInput) applyTo(p *profile.Profile) {
	set := func(dst *string, v *string) {
		if s, ok := present(v); ok {
			*dst = s
		}
	}

	set(&p.Company, in.Company)
	set(&p.Website, in.Website)
	set(&p.Status, in.Status)
	set(&p.Location, in.Location)
	set(&p.Bio, in.Bio)
	set(&p.GithubUsername, in.GithubUsername)

	if raw, ok := present(in.Skills); ok {
		if skills := ParseSkills(raw); len(skills) > 0 {
			p.Skills = skills
		}
	}

	set(&p.Social.Twitter, in.Twitter)
	set(&p.Social.Facebook, in.Facebook)
	set(&p.Social.Instagram, in.Instagram)
	set(&p.Social.LinkedIn, in.LinkedIn)
}

type ExperienceInput struct {
	Title       string
	Company     string
	Location    string
	From        time.Time
	To          *time.Time
	Current     bool
	Description string
}

func (in ExperienceInput) toEntry(id uuid.UUID, clean func(string) string) (profile.Experience, error) {
	e := profile.Experience{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Company:     strings.TrimSpace(in.Company),
		Location:    strings.TrimSpace(in.Location),
		Current:     in.Current,
		Description: clean(in.Description),
	}
	if e.Title == "" || e.Company == "" {
		return profile.Experience{}, fmt.Errorf("%w: title and company are required", ErrInvalidInput)
	}

	from, to, err := period(in.From, in.To, in.Current)
	if err != nil {
		return profile.Experience{}, err
	}
	e.From, e.To = from, to
	return e, nil
}

type EducationInput struct {
	School       string
	Degree       string
	FieldOfStudy string
	From         time.Time
	To           *time.Time
	Current      bool
	Description  string
}

func (in EducationInput) toEntry(id uuid.UUID, clean func(string) string) (profile.Education, error) {
	e := profile.Education{
		ID:           id,
		School:       strings.TrimSpace(in.School),
		Degree:       strings.TrimSpace(in.Degree),
		FieldOfStudy: strings.TrimSpace(in.FieldOfStudy),
		Current:      in.Current,
		Description:  clean(in.Description),
	}
	if e.School == "" || e.Degree == "" || e.FieldOfStudy == "" {
		return profile.Education{}, fmt.Errorf("%w: school, degree and field of study are required", ErrInvalidInput)
	}

	from, to, err := period(in.From, in.To, in.Current)
	if err != nil {
		return profile.Education{}, err
	}
	e.From, e.To = from, to
	return e, nil
}

// period drops the end date of a current entry.
func period(from time.Time, to *time.Time, current bool) (time.Time, *time.Time, error) {
	if from.IsZero() {
		return time.Time{}, nil, fmt.Errorf("%w: from date is required", ErrInvalidInput)
	}
	if current || to == nil || to.IsZero() {
		return from, nil, nil
	}
	if to.Before(from) {
		return time.Time{}, nil, fmt.Errorf("%w: to date is before from date", ErrInvalidInput)
	}
	t := *to
	return from, &t, nil
}
