package models

import (
	"time"
)

// Identity claims embedded in both access and refresh tokens
type Claims struct {
	Email string
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time // zero value means the token never expires
}

// Token pair issues by TokenManager, AuthService
// Refresh may be empty when only access token was renewed
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
