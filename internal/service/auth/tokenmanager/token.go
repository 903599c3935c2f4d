package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/montevideo/internal/apperrors"
	"github.com/nkiryanov/montevideo/internal/models"
)

const (
	defaultAccessTokenTTL = time.Hour
	defaultSigningMethod  = "HS256"
)

type TokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Token manager with sensible default
type Config struct {
	// Secret keys to sign access and refresh tokens
	// Both required and must differ: leaked access key must not allow to mint refresh tokens
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used. Only HMAC family is allowed
	Alg string

	// Access token lifetime. If not set than default is used
	AccessTTL time.Duration

	// Refresh token lifetime. Zero means refresh token never expires
	RefreshTTL time.Duration

	// Issue new refresh token on every refresh
	RotateRefresh bool

	// Clock. time.Now if not set
	Now func() time.Time
}

type TokenManager struct {
	accessKey  []byte
	refreshKey []byte

	alg jwt.SigningMethod

	accessTTL     time.Duration
	refreshTTL    time.Duration
	rotateRefresh bool

	now func() time.Time
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("access and refresh secret keys must not be empty")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secret keys must differ")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg, ok := jwt.GetSigningMethod(cfg.Alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("signing method %q is not supported, use one of HS256, HS384, HS512", cfg.Alg)
	}

	switch {
	case cfg.AccessTTL < 0:
		return nil, errors.New("access token TTL must not be negative")
	case cfg.AccessTTL == 0:
		cfg.AccessTTL = defaultAccessTokenTTL
	}
	if cfg.RefreshTTL < 0 {
		return nil, errors.New("refresh token TTL must not be negative")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &TokenManager{
		accessKey:     []byte(cfg.AccessSecret),
		refreshKey:    []byte(cfg.RefreshSecret),
		alg:           alg,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		rotateRefresh: cfg.RotateRefresh,
		now:           cfg.Now,
	}, nil
}

// Sign short-living access token
func (m *TokenManager) IssueAccess(claims models.Claims) (models.IssuedToken, error) {
	token, err := m.issue(claims, m.accessKey, m.accessTTL)
	if err != nil {
		return token, fmt.Errorf("error while signing access token. Err: %w", err)
	}
	return token, nil
}

// Sign refresh token with the refresh key
// Token has no expiration if refresh TTL is zero
func (m *TokenManager) IssueRefresh(claims models.Claims) (models.IssuedToken, error) {
	token, err := m.issue(claims, m.refreshKey, m.refreshTTL)
	if err != nil {
		return token, fmt.Errorf("error while signing refresh token. Err: %w", err)
	}
	return token, nil
}

// Parse and validate access token
func (m *TokenManager) ParseAccess(access string) (models.Claims, error) {
	return m.parse(access, m.accessKey)
}

// Parse and validate refresh token
func (m *TokenManager) ParseRefresh(refresh string) (models.Claims, error) {
	return m.parse(refresh, m.refreshKey)
}

func (m *TokenManager) RotatesRefresh() bool {
	return m.rotateRefresh
}

func (m *TokenManager) issue(claims models.Claims, key []byte, ttl time.Duration) (models.IssuedToken, error) {
	var issued models.IssuedToken
	now := m.now().Truncate(time.Second)

	registered := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		issued.ExpiresAt = now.Add(ttl)
		registered.ExpiresAt = jwt.NewNumericDate(issued.ExpiresAt)
	}

	token := jwt.NewWithClaims(m.alg, TokenClaims{
		RegisteredClaims: registered,
		Email:            claims.Email,
	})

	value, err := token.SignedString(key)
	if err != nil {
		return issued, err
	}

	issued.Value = value
	return issued, nil
}

func (m *TokenManager) parse(value string, key []byte) (models.Claims, error) {
	claims := &TokenClaims{}

	_, err := jwt.ParseWithClaims(
		value,
		claims,
		func(t *jwt.Token) (any, error) {
			return key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return models.Claims{}, fmt.Errorf("%w: error while parsing or validating token. Err: %w", apperrors.ErrUnauthorized, err)
	}

	if claims.Email == "" {
		return models.Claims{}, fmt.Errorf("%w: token has no email claim", apperrors.ErrUnauthorized)
	}

	return models.Claims{Email: claims.Email}, nil
}
