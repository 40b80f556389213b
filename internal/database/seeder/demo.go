package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"devlink/internal/database"
	"devlink/internal/pkg/avatar"
	"devlink/internal/pkg/password"
)

// DemoPassword is shared by every demo account.
const DemoPassword = "devlink-demo"

type demoAccount struct {
	Name    string
	Email   string
	Status  string
	Company string
	Skills  []string
	Bio     string
	Job     string
}

var demoAccounts = []demoAccount{
	{Name: "Ada Lovelace", Email: "ada@devlink.test", Status: "Developer", Company: "Analytical Engines", Skills: []string{"Go", "PostgreSQL"}, Bio: "Writes the first programs.", Job: "Engineer"},
	{Name: "Grace Hopper", Email: "grace@devlink.test", Status: "Senior Developer", Company: "Navy", Skills: []string{"COBOL", "Compilers"}, Bio: "Finds the bugs.", Job: "Rear Admiral"},
	{Name: "Linus Torvalds", Email: "linus@devlink.test", Status: "Manager", Skills: []string{"C", "Git"}, Job: "Maintainer"},
}

// DemoSeeder inserts a few accounts with profiles. Rows are keyed by a
// deterministic id, so reruns leave existing data alone.
type DemoSeeder struct {
	Hasher password.Hasher
}

func (DemoSeeder) Name() string { return "demo" }

func (s DemoSeeder) Run(ctx context.Context, db database.DB) error {
	if s.Hasher == nil {
		return fmt.Errorf("nil hasher")
	}
	hash, err := s.Hasher.Hash(DemoPassword)
	if err != nil {
		return err
	}

	return database.RunInTx(ctx, db, func(tx database.Tx) error {
		for _, a := range demoAccounts {
			if err := insertDemo(ctx, tx, a, hash); err != nil {
				return fmt.Errorf("%s: %w", a.Email, err)
			}
		}
		return nil
	})
}

func demoID(kind, email string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("devlink:"+kind+":"+strings.ToLower(email)))
}

func insertDemo(ctx context.Context, tx database.Tx, a demoAccount, hash string) error {
	userID := demoID("user", a.Email)
	if _, err := tx.Exec(
		ctx,
		`INSERT INTO users (id, name, email, password_hash, avatar) VALUES ($1, $2, $3, $4, $5) ON CONFLICT DO NOTHING`,
		userID, a.Name, a.Email, hash, avatar.Gravatar(a.Email),
	); err != nil {
		return err
	}

	experience, err := json.Marshal([]map[string]any{{
		"id":      demoID("experience", a.Email),
		"title":   a.Job,
		"company": a.Company,
		"from":    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		"current": true,
	}})
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO profiles (id, user_id, company, status, bio, skills, experience)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
		 ON CONFLICT (user_id) DO NOTHING`,
		demoID("profile", a.Email), userID, a.Company, a.Status, a.Bio, a.Skills, string(experience),
	)
	return err
}
