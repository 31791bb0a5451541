package middleware

import (
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"hotelbooking/internal/access"
	"hotelbooking/internal/auth"
	apperrors "hotelbooking/internal/errors"
	"hotelbooking/internal/metrics"
	"hotelbooking/internal/model"
)

const (
	principalKey = "principal"
	authErrorKey = "auth_error"
)

// Principal is stored on the echo context for authenticated requests.
type Principal struct {
	Identity access.Identity
	Claims   *auth.Claims
}

// JWT authenticates the bearer token through the access controller.
func JWT(ac access.Controller) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  principalKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			identity, claims, err := ac.Authenticate(c.Request().Context(), token)
			if err != nil {
				c.Set(authErrorKey, err)
				return nil, err
			}
			return &Principal{Identity: identity, Claims: claims}, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			metrics.IncAuthFailure()
			if cause, ok := c.Get(authErrorKey).(error); ok {
				err = cause
			}
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				return appErr
			}
			return apperrors.ErrMissingToken
		},
	})
}

// RequireRole rejects authenticated callers lacking one of roles.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return apperrors.ErrMissingToken
			}
			if err := access.RequireRole(identity, roles...); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// PrincipalFrom returns the authenticated principal.
func PrincipalFrom(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(principalKey).(*Principal)
	return p, ok && p != nil
}

// IdentityFrom returns the authenticated identity.
func IdentityFrom(c echo.Context) (access.Identity, bool) {
	p, ok := PrincipalFrom(c)
	if !ok {
		return access.Identity{}, false
	}
	return p.Identity, true
}
