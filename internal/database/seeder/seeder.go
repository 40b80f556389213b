package seeder

import (
	"context"

	"devlink/internal/database"
)

// Seeder writes fixture rows. Implementations must be safe to run repeatedly.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
