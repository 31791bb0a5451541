package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	// DefaultAccessTokenExpiry is used when no lifetime is configured.
	DefaultAccessTokenExpiry = 24 * time.Hour
	// DefaultRefreshTokenExpiry is used when no lifetime is configured.
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour
)

// Token types carried in the typ claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims represents JWT claims.
type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	now           func() time.Time
}

// NewJWTService creates a new JWT service with the given secret and lifetimes.
// Non-positive lifetimes fall back to the defaults.
func NewJWTService(secret string, accessExpiry, refreshExpiry time.Duration) *JWTService {
	if accessExpiry <= 0 {
		accessExpiry = DefaultAccessTokenExpiry
	}
	if refreshExpiry <= 0 {
		refreshExpiry = DefaultRefreshTokenExpiry
	}
	return &JWTService{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		now:           time.Now,
	}
}

// AccessExpiry returns the access token lifetime.
func (s *JWTService) AccessExpiry() time.Duration { return s.accessExpiry }

// RefreshExpiry returns the refresh token lifetime.
func (s *JWTService) RefreshExpiry() time.Duration { return s.refreshExpiry }

// GenerateAccessToken generates a new access token for the user.
func (s *JWTService) GenerateAccessToken(userID, role string) (string, error) {
	_, token, err := s.sign(userID, role, TokenTypeAccess, s.accessExpiry)
	return token, err
}

// GenerateRefreshToken generates a new refresh token for the user.
// The refresh token ID is returned separately for storage in Redis.
func (s *JWTService) GenerateRefreshToken(userID, role string) (tokenID string, token string, err error) {
	return s.sign(userID, role, TokenTypeRefresh, s.refreshExpiry)
}

func (s *JWTService) sign(userID, role, typ string, ttl time.Duration) (string, string, error) {
	now := s.now()
	tokenID := uuid.NewString()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	return tokenID, token, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" || claims.ID == "" {
		return nil, errors.New("token is missing required claims")
	}
	return claims, nil
}

// ValidateAccessToken validates tokenString and requires an access token.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validateType(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken validates tokenString and requires a refresh token.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validateType(tokenString, TokenTypeRefresh)
}

func (s *JWTService) validateType(tokenString, typ string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, errors.New("wrong token type")
	}
	return claims, nil
}

// RemainingTTL returns how long the claims stay valid, zero when expired.
func (s *JWTService) RemainingTTL(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	if d := claims.ExpiresAt.Time.Sub(s.now()); d > 0 {
		return d
	}
	return 0
}
