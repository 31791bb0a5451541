package service

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	apperrors "hotelbooking/internal/errors"
	"hotelbooking/internal/model"
)

const (
	pseudoMinLength   = 3
	pseudoMaxLength   = 30
	passwordMinLength = 6
	// bcrypt only hashes the first 72 bytes.
	passwordMaxBytes = 72
)

var fieldValidator = validator.New()

// fieldErrors collects rejected fields in order.
type fieldErrors []apperrors.FieldError

func (f *fieldErrors) add(field, reason string) {
	*f = append(*f, apperrors.FieldError{Field: field, Reason: reason})
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.Validation(f...)
}

// normalizeEmail trims and lowercases an address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkEmail(errs *fieldErrors, email string) {
	if email == "" {
		errs.add("email", "L'email est obligatoire")
		return
	}
	if fieldValidator.Var(email, "email") != nil {
		errs.add("email", "Format d'email invalide")
	}
}

func checkPseudo(errs *fieldErrors, pseudo string) {
	n := utf8.RuneCountInString(pseudo)
	if n < pseudoMinLength || n > pseudoMaxLength {
		errs.add("pseudo", "Le pseudo doit contenir entre 3 et 30 caractères")
	}
}

func checkPassword(errs *fieldErrors, password string) {
	if utf8.RuneCountInString(password) < passwordMinLength {
		errs.add("password", "Le mot de passe doit contenir au moins 6 caractères")
		return
	}
	if len(password) > passwordMaxBytes {
		errs.add("password", "Le mot de passe ne doit pas dépasser 72 octets")
	}
}

func checkRole(errs *fieldErrors, role model.Role) {
	if !role.Valid() {
		errs.add("role", "Rôle invalide")
	}
}

// checkPage validates paging parameters and applies defaults.
func checkPage(errs *fieldErrors, page, limit int) (int, int) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = model.DefaultPageSize
	}
	if page < 1 {
		errs.add("page", "La page doit être supérieure ou égale à 1")
	}
	if limit < 1 || limit > maxPageSize {
		errs.add("limit", "La limite doit être comprise entre 1 et 100")
	}
	return page, limit
}

const maxPageSize = 100

func checkOrder(errs *fieldErrors, order string) model.SortOrder {
	switch model.SortOrder(strings.ToLower(order)) {
	case "", model.SortDesc:
		return model.SortDesc
	case model.SortAsc:
		return model.SortAsc
	}
	errs.add("order", "L'ordre doit être asc ou desc")
	return model.SortDesc
}
