// Package access is the single place where bearer tokens become identities
// and where role and ownership rules are decided.
package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotelbooking/internal/auth"
	apperrors "hotelbooking/internal/errors"
	"hotelbooking/internal/model"
	"hotelbooking/internal/repository"
)

// Identity is the authenticated caller. Role is read from the directory on
// every request, never trusted from the token.
type Identity struct {
	ID   string     `json:"id"`
	Role model.Role `json:"role"`
}

// HasRole reports whether the identity holds one of roles.
func (i Identity) HasRole(roles ...model.Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// Privileged are the staff roles allowed to act on any booking.
var Privileged = []model.Role{model.RoleEmployee, model.RoleAdmin}

// TokenValidator validates access tokens.
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// Revocations reports logged-out access tokens.
type Revocations interface {
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// Controller authenticates callers and authorizes their actions.
type Controller interface {
	Authenticate(ctx context.Context, token string) (Identity, *auth.Claims, error)
	RequireRole(identity Identity, allowed ...model.Role) error
	RequireOwnerOrRole(identity Identity, ownerID string, allowed ...model.Role) error
}

type controller struct {
	tokens  TokenValidator
	revoked Revocations
	users   repository.UserRepository
}

// NewController builds the access controller.
func NewController(tokens TokenValidator, revoked Revocations, users repository.UserRepository) Controller {
	return &controller{tokens: tokens, revoked: revoked, users: users}
}

// Authenticate resolves a bearer token to the identity stored in the directory.
func (c *controller) Authenticate(ctx context.Context, token string) (Identity, *auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, nil, apperrors.ErrMissingToken
	}

	claims, err := c.tokens.ValidateAccessToken(token)
	if err != nil {
		return Identity{}, nil, apperrors.ErrInvalidToken
	}

	if c.revoked != nil {
		if revoked, _ := c.revoked.IsAccessTokenBlacklisted(ctx, claims.ID); revoked {
			return Identity{}, nil, apperrors.ErrInvalidToken
		}
	}

	user, err := c.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return Identity{}, nil, apperrors.ErrInvalidToken
	}
	if err != nil {
		return Identity{}, nil, apperrors.Unexpected(fmt.Errorf("load identity: %w", err))
	}

	return Identity{ID: user.ID, Role: user.Role}, claims, nil
}

// RequireRole fails with Forbidden unless the identity holds an allowed role.
func (c *controller) RequireRole(identity Identity, allowed ...model.Role) error {
	return RequireRole(identity, allowed...)
}

// RequireOwnerOrRole passes owners and holders of an allowed role.
func (c *controller) RequireOwnerOrRole(identity Identity, ownerID string, allowed ...model.Role) error {
	return RequireOwnerOrRole(identity, ownerID, allowed...)
}

// RequireRole fails with Forbidden unless the identity holds an allowed role.
func RequireRole(identity Identity, allowed ...model.Role) error {
	if identity.HasRole(allowed...) {
		return nil
	}
	return apperrors.ErrForbidden
}

// RequireOwnerOrRole passes owners and holders of an allowed role. Ids are
// compared trimmed and case-insensitively.
func RequireOwnerOrRole(identity Identity, ownerID string, allowed ...model.Role) error {
	if identity.HasRole(allowed...) {
		return nil
	}
	if IsOwner(identity, ownerID) {
		return nil
	}
	return apperrors.ErrForbidden
}

// IsOwner reports whether identity owns the resource.
func IsOwner(identity Identity, ownerID string) bool {
	id := strings.TrimSpace(identity.ID)
	return id != "" && strings.EqualFold(id, strings.TrimSpace(ownerID))
}
