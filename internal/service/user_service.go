package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"hotelbooking/internal/access"
	apperrors "hotelbooking/internal/errors"
	"hotelbooking/internal/model"
	"hotelbooking/internal/repository"
)

// ProvisionInput carries an admin-created account.
type ProvisionInput struct {
	Email    string
	Pseudo   string
	Password string
	Role     model.Role
}

// UserService manages the user directory.
type UserService interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateByID(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	DeleteByID(ctx context.Context, id string) error
	Search(ctx context.Context, requester access.Identity, term string) ([]model.User, error)
	ListAll(ctx context.Context, requester access.Identity) ([]model.User, error)
	Provision(ctx context.Context, requester access.Identity, in ProvisionInput) (*model.User, error)
}

type userService struct {
	repo   repository.UserRepository
	access access.Controller
}

// NewUserService builds a UserService. Identities are never cached.
func NewUserService(repo repository.UserRepository, ac access.Controller) UserService {
	return &userService{repo: repo, access: ac}
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("find user: %w", err))
	}
	return user, nil
}

// UpdateByID applies patch. A new password is re-hashed and a new email must
// still be unique.
func (s *userService) UpdateByID(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return user, nil
	}

	var errs fieldErrors
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		checkEmail(&errs, email)
		patch.Email = &email
	}
	if patch.Pseudo != nil {
		pseudo := strings.TrimSpace(*patch.Pseudo)
		checkPseudo(&errs, pseudo)
		patch.Pseudo = &pseudo
	}
	if patch.Password != nil {
		checkPassword(&errs, *patch.Password)
	}
	if patch.Role != nil {
		checkRole(&errs, *patch.Role)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != user.Email {
		existing, err := s.repo.FindByEmail(ctx, *patch.Email)
		if err == nil && existing != nil && existing.ID != user.ID {
			return nil, apperrors.ErrEmailTaken
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unexpected(fmt.Errorf("check email: %w", err))
		}
		user.Email = *patch.Email
	}
	if patch.Pseudo != nil {
		user.Pseudo = *patch.Pseudo
	}
	if patch.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcryptCost)
		if err != nil {
			return nil, apperrors.Unexpected(fmt.Errorf("hash password: %w", err))
		}
		user.PasswordHash = string(hashed)
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, apperrors.Unexpected(fmt.Errorf("update user: %w", err))
	}
	return user, nil
}

func (s *userService) DeleteByID(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrUserNotFound
	}
	if err != nil {
		return apperrors.Unexpected(fmt.Errorf("delete user: %w", err))
	}
	return nil
}

// Search is open to employees and admins.
func (s *userService) Search(ctx context.Context, requester access.Identity, term string) ([]model.User, error) {
	if err := s.access.RequireRole(requester, access.Privileged...); err != nil {
		return nil, err
	}
	users, err := s.repo.Search(ctx, strings.TrimSpace(term))
	if err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("search users: %w", err))
	}
	return users, nil
}

func (s *userService) ListAll(ctx context.Context, requester access.Identity) ([]model.User, error) {
	if err := s.access.RequireRole(requester, model.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("list users: %w", err))
	}
	return users, nil
}

// Provision lets an admin create an account with any role.
func (s *userService) Provision(ctx context.Context, requester access.Identity, in ProvisionInput) (*model.User, error) {
	if err := s.access.RequireRole(requester, model.RoleAdmin); err != nil {
		return nil, err
	}

	email := normalizeEmail(in.Email)
	pseudo := strings.TrimSpace(in.Pseudo)
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}

	var errs fieldErrors
	checkEmail(&errs, email)
	checkPseudo(&errs, pseudo)
	checkPassword(&errs, in.Password)
	checkRole(&errs, role)
	if err := errs.err(); err != nil {
		return nil, err
	}

	return createUser(ctx, s.repo, email, pseudo, in.Password, role)
}
