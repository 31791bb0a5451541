package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"hotelbooking/internal/auth"
	apperrors "hotelbooking/internal/errors"
	"hotelbooking/internal/metrics"
	"hotelbooking/internal/model"
	"hotelbooking/internal/repository"
)

const bcryptCost = 10

// RegisterInput carries a self-registration.
type RegisterInput struct {
	Email    string
	Pseudo   string
	Password string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	// Logout revokes the access token described by claims and, when given,
	// the refresh token.
	Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	logger     zerolog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		logger:     logger.With().Str("component", "auth").Logger(),
	}
}

// Register creates a user with role user and signs them in.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	pseudo := strings.TrimSpace(in.Pseudo)

	var errs fieldErrors
	checkEmail(&errs, email)
	checkPseudo(&errs, pseudo)
	checkPassword(&errs, in.Password)
	if err := errs.err(); err != nil {
		return nil, err
	}

	user, err := createUser(ctx, s.userRepo, email, pseudo, in.Password, model.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// Login authenticates a user and returns access and refresh tokens. Unknown
// email and wrong password yield the same error.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		metrics.IncAuthFailure()
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("find user: %w", err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.IncAuthFailure()
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

func (s *authService) issue(ctx context.Context, user *model.User) (*AuthResult, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("generate access token: %w", err))
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("generate refresh token: %w", err))
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, s.jwtService.RefreshExpiry()); err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("store refresh token: %w", err))
	}

	return &AuthResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidToken
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || storedUserID != claims.UserID {
		return "", apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperrors.ErrInvalidToken
	}
	if err != nil {
		return "", apperrors.Unexpected(fmt.Errorf("find user: %w", err))
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return "", apperrors.Unexpected(fmt.Errorf("generate access token: %w", err))
	}
	return accessToken, nil
}

func (s *authService) Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error {
	if claims == nil {
		return apperrors.ErrMissingToken
	}

	if refreshToken != "" {
		refresh, err := s.jwtService.ValidateRefreshToken(refreshToken)
		if err != nil || refresh.UserID != claims.UserID {
			return apperrors.ErrInvalidToken
		}
		if err := s.tokenStore.DeleteRefreshToken(ctx, refresh.ID); err != nil {
			s.logger.Warn().Err(err).Str("user_id", claims.UserID).Msg("delete refresh token failed")
		}
	}

	if err := s.tokenStore.BlacklistAccessToken(ctx, claims.ID, s.jwtService.RemainingTTL(claims)); err != nil {
		s.logger.Warn().Err(err).Str("user_id", claims.UserID).Msg("blacklist access token failed")
	}
	return nil
}

// createUser hashes password and stores a new user, mapping duplicate
// emails to Conflict.
func createUser(ctx context.Context, repo repository.UserRepository, email, pseudo, password string, role model.Role) (*model.User, error) {
	existing, err := repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unexpected(fmt.Errorf("check user existence: %w", err))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("hash password: %w", err))
	}

	user := &model.User{
		Email:        email,
		Pseudo:       pseudo,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, apperrors.Unexpected(fmt.Errorf("create user: %w", err))
	}
	return user, nil
}
