package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nkiryanov/montevideo/internal/apperrors"
	"github.com/nkiryanov/montevideo/internal/models"
	"github.com/nkiryanov/montevideo/internal/repository"
)

const (
	defaultAccessHeaderName = "Authorization"
	defaultAccessAuthScheme = "Bearer"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type tokenManager interface {
	IssueAccess(claims models.Claims) (models.IssuedToken, error)
	IssueRefresh(claims models.Claims) (models.IssuedToken, error)
	ParseAccess(access string) (models.Claims, error)
	ParseRefresh(refresh string) (models.Claims, error)
	RotatesRefresh() bool
}

type Config struct {
	// Header and scheme to read access token from: 'Authorization: Bearer <token>' by default
	AccessHeaderName string
	AccessAuthScheme string

	// Hasher to use during user registration or login process
	Hasher PasswordHasher
}

type RegisterParams struct {
	FirstName string
	LastName  string
	UserName  string
	Age       *int
	Email     string
	Password  string
}

// Auth service: registration and user session lifecycle
type AuthService struct {
	accessHeaderName string
	accessAuthScheme string

	hasher PasswordHasher
	tokens tokenManager

	userRepo repository.UserRepo
}

func NewService(cfg Config, tokens tokenManager, userRepo repository.UserRepo) (*AuthService, error) {
	setDefault := func(field *string, def string) {
		if *field == "" {
			*field = def
		}
	}
	setDefault(&cfg.AccessHeaderName, defaultAccessHeaderName)
	setDefault(&cfg.AccessAuthScheme, defaultAccessAuthScheme)

	if cfg.Hasher == nil {
		cfg.Hasher = DefaultHasher
	}

	return &AuthService{
		accessHeaderName: cfg.AccessHeaderName,
		accessAuthScheme: cfg.AccessAuthScheme,
		hasher:           cfg.Hasher,
		tokens:           tokens,
		userRepo:         userRepo,
	}, nil
}

// Register new user
// Returns apperrors.ErrUserAlreadyExists if the email is taken; stored user is not touched then
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (models.User, error) {
	_, err := s.userRepo.GetUserByEmail(ctx, p.Email)
	switch {
	case err == nil:
		return models.User{}, apperrors.ErrUserAlreadyExists
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return models.User{}, fmt.Errorf("can't check user exists. Err: %w", err)
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	// Unique index still may reject the user if it was registered concurrently
	return s.userRepo.CreateUser(ctx, models.User{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		UserName:       p.UserName,
		Age:            p.Age,
		Email:          p.Email,
		HashedPassword: hash,
	})
}

// Login user with email and password, issue token pair and remember the refresh token
// Any previously issued refresh token of the user stops working
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return pair, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return pair, apperrors.ErrInvalidCredentials
	}

	claims := models.Claims{Email: user.Email}

	pair.Access, err = s.tokens.IssueAccess(claims)
	if err != nil {
		return models.TokenPair{}, err
	}
	pair.Refresh, err = s.tokens.IssueRefresh(claims)
	if err != nil {
		return models.TokenPair{}, err
	}

	// Write only if nobody logged in between read and write
	err = s.userRepo.UpdateRefreshToken(ctx, user.Email, user.RefreshToken, pair.Refresh.Value)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("can't save refresh token. Err: %w", err)
	}

	return pair, nil
}

// Forget the user refresh token
func (s *AuthService) Logout(ctx context.Context, email string) error {
	return s.userRepo.ClearRefreshToken(ctx, email)
}

// Issue new access token for the refresh token
// Refresh token in the returned pair is empty unless refresh rotation is enabled
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	if refresh == "" {
		return pair, fmt.Errorf("%w: refresh token is empty", apperrors.ErrUnauthorized)
	}

	user, err := s.userRepo.GetUserByRefreshToken(ctx, refresh)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return pair, fmt.Errorf("%w: refresh token not recognized", apperrors.ErrUnauthorized)
	case err != nil:
		return pair, err
	}

	claims, err := s.tokens.ParseRefresh(refresh)
	if err != nil {
		return pair, err
	}
	if claims.Email != user.Email {
		return pair, fmt.Errorf("%w: refresh token issued for another user", apperrors.ErrUnauthorized)
	}

	pair.Access, err = s.tokens.IssueAccess(claims)
	if err != nil {
		return models.TokenPair{}, err
	}

	if !s.tokens.RotatesRefresh() {
		return pair, nil
	}

	pair.Refresh, err = s.tokens.IssueRefresh(claims)
	if err != nil {
		return models.TokenPair{}, err
	}

	err = s.userRepo.UpdateRefreshToken(ctx, user.Email, refresh, pair.Refresh.Value)
	switch {
	case errors.Is(err, apperrors.ErrRefreshTokenConflict):
		// Somebody used the same token first
		return models.TokenPair{}, fmt.Errorf("%w: refresh token already used", apperrors.ErrUnauthorized)
	case err != nil:
		return models.TokenPair{}, fmt.Errorf("can't save refresh token. Err: %w", err)
	}

	return pair, nil
}

// Read access token from request and return the authenticated user
func (s *AuthService) GetUserFromRequest(ctx context.Context, r *http.Request) (models.User, error) {
	header := r.Header.Get(s.accessHeaderName)

	scheme, access, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, s.accessAuthScheme) || access == "" {
		return models.User{}, fmt.Errorf("%w: no access token in request", apperrors.ErrUnauthorized)
	}

	claims, err := s.tokens.ParseAccess(strings.TrimSpace(access))
	if err != nil {
		return models.User{}, err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, claims.Email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.User{}, fmt.Errorf("%w: token owner not found", apperrors.ErrUnauthorized)
	case err != nil:
		return models.User{}, err
	}

	return user, nil
}

// Set access token to request
// Helpful in tests and http clients
func (s *AuthService) SetAccessToRequest(r *http.Request, access models.IssuedToken) {
	r.Header.Set(s.accessHeaderName, s.accessAuthScheme+" "+access.Value)
}
