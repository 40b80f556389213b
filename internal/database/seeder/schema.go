package seeder

import (
	"context"
	"fmt"

	"devlink/internal/database"
)

// Tables are the columns the repositories read and write.
var Tables = map[string][]string{
	"users": {"id", "name", "email", "password_hash", "avatar", "created_at", "updated_at"},
	"profiles": {
		"id", "user_id", "company", "website", "status", "location", "bio", "github_username",
		"skills", "social", "experience", "education", "created_at", "updated_at",
	},
}

// SchemaCheck fails when a migrated table lacks a column the code depends on.
type SchemaCheck struct{}

func (SchemaCheck) Name() string { return "schema" }

func (SchemaCheck) Run(ctx context.Context, db database.DB) error {
	for _, table := range []string{"users", "profiles"} {
		if err := EnsureTableColumns(ctx, db, table, Tables[table]...); err != nil {
			return err
		}
	}
	return nil
}

func EnsureTableColumns(ctx context.Context, db database.DB, table string, columns ...string) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	if table == "" {
		return fmt.Errorf("empty table")
	}
	for _, col := range columns {
		if col == "" {
			return fmt.Errorf("empty column")
		}
	}

	rows, err := db.Query(
		ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema='public' AND table_name=$1`,
		table,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	existing := map[string]struct{}{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return err
		}
		existing[c] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, col := range columns {
		if _, ok := existing[col]; !ok {
			return fmt.Errorf("schema mismatch: missing column %s.%s", table, col)
		}
	}
	return nil
}
