package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"hotelbooking/internal/access"
	apperrors "hotelbooking/internal/errors"
	"hotelbooking/internal/middleware"
	"hotelbooking/internal/model"
)

// Response is the success envelope shared by every endpoint.
type Response struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message,omitempty"`
	Data         interface{}       `json:"data,omitempty"`
	Token        string            `json:"token,omitempty"`
	RefreshToken string            `json:"refreshToken,omitempty"`
	Pagination   *model.Pagination `json:"pagination,omitempty"`
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Response{Success: true, Data: data})
}

func message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: msg})
}

func paged[T any](c echo.Context, page *model.Page[T]) error {
	return c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       page.Items,
		Pagination: &page.Pagination,
	})
}

// bind decodes the request into dst and runs tag validation.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return bindError(err)
	}
	return c.Validate(dst)
}

func bindError(err error) error {
	var be *echo.BindingError
	if errors.As(err, &be) && be.Field != "" {
		return apperrors.Validation(apperrors.FieldError{Field: be.Field, Reason: "valeur invalide"})
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperrors.Validation(apperrors.FieldError{Field: typeErr.Field, Reason: "type invalide"})
	}
	return apperrors.Validation(apperrors.FieldError{Field: "body", Reason: "corps de requête invalide"})
}

func identity(c echo.Context) (access.Identity, error) {
	id, found := middleware.IdentityFrom(c)
	if !found {
		return access.Identity{}, apperrors.ErrMissingToken
	}
	return id, nil
}
