package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hotelbooking/internal/model"
	"hotelbooking/internal/service"
)

// UserHandler exposes the user directory.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// ProfileRequest updates the caller's own profile.
type ProfileRequest struct {
	Email    *string `json:"email"`
	Pseudo   *string `json:"pseudo"`
	Password *string `json:"password"`
}

func (r ProfileRequest) patch() model.UserPatch {
	return model.UserPatch{Email: r.Email, Pseudo: r.Pseudo, Password: r.Password}
}

// AdminUserRequest updates any account, including its role.
type AdminUserRequest struct {
	ProfileRequest
	Role *model.Role `json:"role"`
}

// CreateUserRequest provisions an account.
type CreateUserRequest struct {
	Email    string     `json:"email" validate:"required"`
	Pseudo   string     `json:"pseudo" validate:"required"`
	Password string     `json:"password" validate:"required"`
	Role     model.Role `json:"role"`
}

// Me godoc
// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=model.User}
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	me, err := identity(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetByID(c.Request().Context(), me.ID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update current user profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProfileRequest true "Profile fields"
// @Success 200 {object} Response{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	me, err := identity(c)
	if err != nil {
		return err
	}
	var req ProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.svc.UpdateByID(c.Request().Context(), me.ID, req.patch())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, user)
}

// DeleteMe godoc
// @Summary Delete current user account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	me, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteByID(c.Request().Context(), me.ID); err != nil {
		return err
	}
	return message(c, "Compte supprimé")
}

// ListUsers godoc
// @Summary List or search users
// @Description Without search the caller must be admin; with search employee or admin.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param search query string false "Email or pseudo fragment"
// @Success 200 {object} Response{data=[]model.User}
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	me, err := identity(c)
	if err != nil {
		return err
	}

	var users []model.User
	if term, found := lookupQuery(c, "search"); found {
		users, err = h.svc.Search(c.Request().Context(), me, term)
	} else {
		users, err = h.svc.ListAll(c.Request().Context(), me)
	}
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, users)
}

// CreateUser godoc
// @Summary Provision a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "User payload"
// @Success 201 {object} Response{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	me, err := identity(c)
	if err != nil {
		return err
	}
	var req CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.svc.Provision(c.Request().Context(), me, service.ProvisionInput{
		Email:    req.Email,
		Pseudo:   req.Pseudo,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, user)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} Response{data=model.User}
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.svc.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update any user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body AdminUserRequest true "User fields"
// @Success 200 {object} Response{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	var req AdminUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	patch := req.patch()
	patch.Role = req.Role
	user, err := h.svc.UpdateByID(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete any user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	if err := h.svc.DeleteByID(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return message(c, "Utilisateur supprimé")
}

func lookupQuery(c echo.Context, name string) (string, bool) {
	values, found := c.QueryParams()[name]
	if !found || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
