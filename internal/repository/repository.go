package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/montevideo/internal/models"
)

type Storage interface {
	User() UserRepo
	Video() VideoRepo

	// Run fn within one transaction: commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}

// User repository interface (credential store)
type UserRepo interface {
	// Create user
	// If user with the email exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// Get user by email or by currently stored refresh token
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByRefreshToken(ctx context.Context, token string) (models.User, error)

	// Set new refresh token if the stored one still equals 'expected' (compare-and-swap)
	// If stored value changed must return apperrors.ErrRefreshTokenConflict
	// If user not found must return apperrors.ErrUserNotFound
	UpdateRefreshToken(ctx context.Context, email string, expected string, next string) error

	// Reset refresh token to empty value unconditionally
	ClearRefreshToken(ctx context.Context, email string) error
}

type ListVideosOpts struct {
	// Max count of videos to return
	Limit int

	// Case-insensitive regular expression (postgres flavour) the tags has to match
	// Empty means no filtering by tags
	TagPattern string
}

// Video repository interface (video catalog)
// Archived videos are never returned by List* and Sample* methods
type VideoRepo interface {
	CreateVideo(ctx context.Context, video models.Video) (models.Video, error)

	// If video not found must return apperrors.ErrVideoNotFound
	GetVideo(ctx context.Context, id uuid.UUID) (models.Video, error)

	// Overwrite all mutable fields of the stored video
	// If video not found must return apperrors.ErrVideoNotFound
	ReplaceVideo(ctx context.Context, video models.Video) (models.Video, error)

	ListVideos(ctx context.Context, opts ListVideosOpts) ([]models.Video, error)

	// Uniform random sample without replacement
	SampleVideos(ctx context.Context, limit int) ([]models.Video, error)

	// Favourites relation between users and videos
	// Adding existing favourite is no-op
	// Adding favourite for unknown video must return apperrors.ErrVideoNotFound, for unknown user apperrors.ErrUserNotFound
	AddFavourite(ctx context.Context, userID uuid.UUID, videoID uuid.UUID) error
	// If favourite not exists must return apperrors.ErrFavouriteNotFound
	RemoveFavourite(ctx context.Context, userID uuid.UUID, videoID uuid.UUID) error
	ListFavourites(ctx context.Context, userID uuid.UUID) ([]models.Video, error)
}
