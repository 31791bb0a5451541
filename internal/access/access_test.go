package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/auth"
	apperrors "hotelbooking/internal/errors"
	"hotelbooking/internal/model"
	"hotelbooking/internal/repository"
)

type mockUserRepo struct {
	mock.Mock
	repository.UserRepository
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type stubRevocations map[string]bool

func (s stubRevocations) IsAccessTokenBlacklisted(_ context.Context, id string) (bool, error) {
	return s[id], nil
}

func TestAuthenticate(t *testing.T) {
	jwtSvc := auth.NewJWTService("secret", time.Hour, time.Hour)
	ctx := context.Background()

	token, err := jwtSvc.GenerateAccessToken("u1", "user")
	require.NoError(t, err)

	t.Run("role comes from the store", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1", Role: model.RoleAdmin}, nil)

		identity, claims, err := NewController(jwtSvc, nil, repo).Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, Identity{ID: "u1", Role: model.RoleAdmin}, identity)
		assert.Equal(t, "u1", claims.UserID)
		repo.AssertExpectations(t)
	})

	t.Run("missing token", func(t *testing.T) {
		_, _, err := NewController(jwtSvc, nil, new(mockUserRepo)).Authenticate(ctx, "  ")
		assert.ErrorIs(t, err, apperrors.ErrMissingToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, _, err := NewController(jwtSvc, nil, new(mockUserRepo)).Authenticate(ctx, "abc.def")
		assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		_, refresh, err := jwtSvc.GenerateRefreshToken("u1", "user")
		require.NoError(t, err)
		_, _, err = NewController(jwtSvc, nil, new(mockUserRepo)).Authenticate(ctx, refresh)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("revoked token", func(t *testing.T) {
		claims, err := jwtSvc.ValidateAccessToken(token)
		require.NoError(t, err)
		revoked := stubRevocations{claims.ID: true}

		_, _, err = NewController(jwtSvc, revoked, new(mockUserRepo)).Authenticate(ctx, token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("deleted user", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByID", ctx, "u1").Return(nil, repository.ErrNotFound)

		_, _, err := NewController(jwtSvc, nil, repo).Authenticate(ctx, token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByID", ctx, "u1").Return(nil, errors.New("connection reset"))

		_, _, err := NewController(jwtSvc, nil, repo).Authenticate(ctx, token)
		assert.True(t, apperrors.IsKind(err, apperrors.KindUnexpected))
	})
}

func TestRequireRole(t *testing.T) {
	admin := Identity{ID: "a", Role: model.RoleAdmin}
	user := Identity{ID: "u", Role: model.RoleUser}

	assert.NoError(t, RequireRole(admin, model.RoleAdmin))
	assert.ErrorIs(t, RequireRole(user, model.RoleAdmin), apperrors.ErrForbidden)
	assert.ErrorIs(t, RequireRole(user), apperrors.ErrForbidden)
}

func TestRequireOwnerOrRole(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		owner    string
		wantErr  bool
	}{
		{"owner", Identity{ID: "abc", Role: model.RoleUser}, "abc", false},
		{"owner case and spaces", Identity{ID: "ABC", Role: model.RoleUser}, " abc ", false},
		{"employee", Identity{ID: "e", Role: model.RoleEmployee}, "abc", false},
		{"admin", Identity{ID: "x", Role: model.RoleAdmin}, "abc", false},
		{"other user", Identity{ID: "other", Role: model.RoleUser}, "abc", true},
		{"empty identity", Identity{Role: model.RoleUser}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireOwnerOrRole(tt.identity, tt.owner, Privileged...)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrForbidden)
				return
			}
			assert.NoError(t, err)
		})
	}
}
