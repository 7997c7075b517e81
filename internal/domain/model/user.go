package model

import (
	"strings"
	"time"

	"subscription-cancellation/internal/domain"
)

// User is referenced, not owned, by the cancellation subsystem.
type User struct {
	ID        string // UUID
	Email     string
	CreatedAt time.Time
}

func NewUser(id, email string) (*User, error) {
	if id == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:        id,
		Email:     email,
		CreatedAt: time.Now(),
	}, nil
}
