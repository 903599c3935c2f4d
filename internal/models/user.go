package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	FirstName      string
	LastName       string
	UserName       string
	Age            *int // nil if not provided
	Email          string
	HashedPassword string

	// Last refresh token issued for the user; empty if logged out or never logged in
	RefreshToken string
}
