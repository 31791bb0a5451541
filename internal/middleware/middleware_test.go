package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/access"
	"hotelbooking/internal/auth"
	apperrors "hotelbooking/internal/errors"
	"hotelbooking/internal/model"
)

type fakeController struct {
	tokens map[string]access.Identity
}

func (f fakeController) Authenticate(_ context.Context, token string) (access.Identity, *auth.Claims, error) {
	identity, found := f.tokens[token]
	if !found {
		return access.Identity{}, nil, apperrors.ErrInvalidToken
	}
	return identity, &auth.Claims{UserID: identity.ID, Role: string(identity.Role)}, nil
}

func (f fakeController) RequireRole(identity access.Identity, allowed ...model.Role) error {
	return access.RequireRole(identity, allowed...)
}

func (f fakeController) RequireOwnerOrRole(identity access.Identity, ownerID string, allowed ...model.Role) error {
	return access.RequireOwnerOrRole(identity, ownerID, allowed...)
}

func newContext(e *echo.Echo, header string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestJWT(t *testing.T) {
	e := echo.New()
	ac := fakeController{tokens: map[string]access.Identity{
		"good": {ID: "u1", Role: model.RoleEmployee},
	}}

	var seen access.Identity
	next := func(c echo.Context) error {
		var found bool
		seen, found = IdentityFrom(c)
		require.True(t, found)
		return c.NoContent(http.StatusOK)
	}
	h := JWT(ac)(next)

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"valid bearer", "Bearer good", nil},
		{"missing header", "", apperrors.ErrMissingToken},
		{"unknown token", "Bearer bad", apperrors.ErrInvalidToken},
		{"wrong scheme", "Basic good", apperrors.ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = access.Identity{}
			c, _ := newContext(e, tt.header)

			err := h(c)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, access.Identity{ID: "u1", Role: model.RoleEmployee}, seen)
				principal, found := PrincipalFrom(c)
				require.True(t, found)
				assert.Equal(t, "u1", principal.Claims.UserID)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	tests := []struct {
		name     string
		identity *access.Identity
		wantErr  error
	}{
		{"admin allowed", &access.Identity{ID: "a", Role: model.RoleAdmin}, nil},
		{"user forbidden", &access.Identity{ID: "u", Role: model.RoleUser}, apperrors.ErrForbidden},
		{"anonymous", nil, apperrors.ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(e, "")
			if tt.identity != nil {
				c.Set(principalKey, &Principal{Identity: *tt.identity})
			}

			err := RequireRole(model.RoleAdmin)(next)(c)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	e := echo.New()
	limiter := NewRateLimiter(0.001, 2)
	h := limiter.Middleware()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		c, rec := newContext(e, "")
		require.NoError(t, h(c))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	t.Run("other clients keep their budget", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("disabled when rps is zero", func(t *testing.T) {
		open := NewRateLimiter(0, 1).Middleware()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
		for i := 0; i < 5; i++ {
			c, rec := newContext(e, "")
			require.NoError(t, open(c))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(zerolog.New(&buf)))
	e.GET("/hotels/:id", func(c echo.Context) error {
		c.Set(principalKey, &Principal{Identity: access.Identity{ID: "u1", Role: model.RoleUser}})
		return c.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hotels/42", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/hotels/42", entry["uri"])
	assert.Equal(t, float64(http.StatusNoContent), entry["status"])
	assert.Equal(t, "u1", entry["user_id"])
}
