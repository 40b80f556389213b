package postgres

import (
	"context"
	"time"

	"devlink/internal/database"
	"devlink/internal/domain/account"
)

type AccountTransactor struct {
	db      database.DB
	timeout time.Duration
}

func NewAccountTransactor(db database.DB, timeout time.Duration) *AccountTransactor {
	return &AccountTransactor{db: db, timeout: timeout}
}

func (t *AccountTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, s account.Stores) error) error {
	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()

	err := database.RunInTx(ctx, t.db, func(tx database.Tx) error {
		return fn(ctx, account.Stores{
			Users:    NewUserRepository(tx, t.timeout),
			Profiles: NewProfileTxRepository(tx, t.timeout),
		})
	})
	return classify(err)
}
