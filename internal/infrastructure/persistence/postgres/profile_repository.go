package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"devlink/internal/database"
	"devlink/internal/domain/profile"
)

const profileColumns = `id, user_id, company, website, status, location, bio, github_username,
	skills, social, experience, education, created_at, updated_at`

// ProfileRepository stores the aggregate in one row; experience and education
// are JSONB arrays kept in list order.
type ProfileRepository struct {
	db      database.DB
	timeout time.Duration
}

func NewProfileRepository(db database.DB, timeout time.Duration) *ProfileRepository {
	return &ProfileRepository{db: db, timeout: timeout}
}

func (r *ProfileRepository) Create(ctx context.Context, p profile.Profile) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	args, err := profileArgs(p)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO profiles (id, user_id, company, website, status, location, bio, github_username,
			skills, social, experience, education)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11::jsonb, $12::jsonb)`,
		args...,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return profile.ErrDuplicate
		case isForeignKeyViolation(err):
			return profile.ErrOwnerMissing
		}
		return classify(err)
	}
	return nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	return scanProfile(row)
}

func (r *ProfileRepository) List(ctx context.Context) ([]profile.Profile, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at ASC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := make([]profile.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (r *ProfileRepository) Modify(ctx context.Context, userID uuid.UUID, fn func(p *profile.Profile) error) (profile.Profile, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var out profile.Profile
	err := database.RunInTx(ctx, r.db, func(tx database.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1 FOR UPDATE`, userID)
		p, err := scanProfile(row)
		if err != nil {
			return err
		}
		if err := fn(&p); err != nil {
			return err
		}
		if err := updateProfile(ctx, tx, &p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return profile.Profile{}, classify(err)
	}
	return out, nil
}

// ProfileTxRepository runs against an open transaction.
type ProfileTxRepository struct {
	q       database.Querier
	timeout time.Duration
}

func NewProfileTxRepository(q database.Querier, timeout time.Duration) *ProfileTxRepository {
	return &ProfileTxRepository{q: q, timeout: timeout}
}

// DeleteByUserID succeeds when no row exists; the users foreign key may
// already have cascaded.
func (r *ProfileTxRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.q.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID); err != nil {
		return classify(err)
	}
	return nil
}

// updateProfile writes p and refreshes its UpdatedAt from the database.
func updateProfile(ctx context.Context, q database.Querier, p *profile.Profile) error {
	args, err := profileArgs(*p)
	if err != nil {
		return err
	}
	row := q.QueryRow(ctx,
		`UPDATE profiles SET company = $3, website = $4, status = $5, location = $6, bio = $7,
			github_username = $8, skills = $9, social = $10::jsonb, experience = $11::jsonb,
			education = $12::jsonb, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING updated_at`,
		args...,
	)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		if isNoRows(err) {
			return profile.ErrNotFound
		}
		return classify(err)
	}
	return nil
}

func profileArgs(p profile.Profile) ([]any, error) {
	social, err := json.Marshal(toSocialRecord(p.Social))
	if err != nil {
		return nil, fmt.Errorf("encode social: %w", err)
	}
	exp, err := json.Marshal(toExperienceRecords(p.Experience))
	if err != nil {
		return nil, fmt.Errorf("encode experience: %w", err)
	}
	edu, err := json.Marshal(toEducationRecords(p.Education))
	if err != nil {
		return nil, fmt.Errorf("encode education: %w", err)
	}

	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}

	return []any{
		p.ID, p.UserID, p.Company, p.Website, p.Status, p.Location, p.Bio, p.GithubUsername,
		skills, string(social), string(exp), string(edu),
	}, nil
}

func scanProfile(row database.Row) (profile.Profile, error) {
	var (
		p                profile.Profile
		social, exp, edu []byte
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Company, &p.Website, &p.Status, &p.Location, &p.Bio, &p.GithubUsername,
		&p.Skills, &social, &exp, &edu, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, classify(err)
	}

	if err := decodeAggregate(&p, social, exp, edu); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}
