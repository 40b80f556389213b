package account

import (
	"context"

	"devlink/internal/domain/profile"
	"devlink/internal/domain/user"
)

// Stores are repositories bound to one transaction.
type Stores struct {
	Users    user.TxRepository
	Profiles profile.TxRepository
}

// Transactor runs fn atomically: every write through Stores commits together
// or not at all.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
