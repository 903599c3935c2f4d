package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Missing, malformed, expired or not recognized token
	ErrUnauthorized = errors.New("unauthorized")

	// Stored refresh token changed between read and write
	ErrRefreshTokenConflict = errors.New("refresh token was changed concurrently")

	ErrVideoNotFound     = errors.New("video not found")
	ErrValidationFailed  = errors.New("validation failed")
	ErrFavouriteNotFound = errors.New("favourite not found")
)
