package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public is the subset of a user that may be shown next to a profile.
type Public struct {
	ID     uuid.UUID
	Name   string
	Avatar string
}

func (u User) Public() Public {
	return Public{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}
