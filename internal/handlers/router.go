package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/montevideo/internal/handlers/middleware"
	"github.com/nkiryanov/montevideo/internal/logger"
	"github.com/nkiryanov/montevideo/internal/models"
	"github.com/nkiryanov/montevideo/internal/service/auth"
	"github.com/nkiryanov/montevideo/internal/service/video"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type RouterConfig struct {
	// Deadline for every request. Zero means no deadline
	RequestTimeout time.Duration
}

// Importer may be nil: import endpoint answers 503 then
func NewRouter(
	cfg RouterConfig,
	authService authService,
	videoService videoService,
	importer videoImporter,
	logger logger.Logger,
) http.Handler {
	withAuth := middleware.AuthMiddleware(authService)

	mux := http.NewServeMux()

	mux.Handle("POST /add-user", handleRegister(authService, logger))
	mux.Handle("POST /login", handleLogin(authService, logger))
	mux.Handle("POST /token", handleTokenRefresh(authService, logger))
	mux.Handle("POST /logout", withAuth(handleLogout(authService, logger)))
	mux.Handle("GET /api/me", withAuth(handleUserMe()))

	mux.Handle("GET /{$}", handleListVideos(videoService, logger))
	mux.Handle("GET /api/videos", handleListVideos(videoService, logger))
	mux.Handle("POST /api/videos", withAuth(handleCreateVideo(videoService, logger)))
	mux.Handle("GET /video/{id}", handleGetVideo(videoService, logger))
	mux.Handle("PUT /video/{id}", withAuth(handleUpdateVideo(videoService, logger)))

	mux.Handle("GET /api/favourites", withAuth(handleListFavourites(videoService, logger)))
	mux.Handle("POST /api/favourites/{id}", withAuth(handleAddFavourite(videoService, logger)))
	mux.Handle("DELETE /api/favourites/{id}", withAuth(handleRemoveFavourite(videoService, logger)))

	mux.Handle("GET /yt/add-video", withAuth(handleYouTubeImport(importer, logger)))

	handler := chain(mux,
		middleware.LoggerMiddleware(logger),
		middleware.Timeout(cfg.RequestTimeout),
	)

	return handler
}

type authService interface {
	// Register user. Has to return apperrors.ErrUserAlreadyExists if email is taken
	Register(ctx context.Context, p auth.RegisterParams) (models.User, error)

	// Login user with email and password
	// Has to return apperrors.ErrUserNotFound if user not found
	// Has to return apperrors.ErrInvalidCredentials if password is wrong
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Forget stored refresh token of the user
	Logout(ctx context.Context, email string) error

	// Issue access token for refresh token
	// Has to return apperrors.ErrUnauthorized if token is not valid or not known
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Get request and return user if it authenticated or error
	GetUserFromRequest(ctx context.Context, r *http.Request) (models.User, error)
}

type videoService interface {
	Select(ctx context.Context, p video.SelectParams) ([]models.Video, error)
	Get(ctx context.Context, id uuid.UUID) (models.Video, error)
	Create(ctx context.Context, in video.VideoInput) (models.Video, error)
	Update(ctx context.Context, id uuid.UUID, patch models.VideoPatch) (models.Video, error)

	AddFavourite(ctx context.Context, user *models.User, videoID uuid.UUID) error
	RemoveFavourite(ctx context.Context, user *models.User, videoID uuid.UUID) error
	ListFavourites(ctx context.Context, user *models.User) ([]models.Video, error)
}

type videoImporter interface {
	Import(ctx context.Context) ([]models.Video, error)
}
