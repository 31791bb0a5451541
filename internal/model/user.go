package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role grants access levels; employee and admin share privileged reads.
type Role string

const (
	RoleUser     Role = "user"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

// User represents an account in the directory.
type User struct {
	ID           string    `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Pseudo       string    `json:"pseudo" gorm:"size:30;not null"`
	PasswordHash string    `json:"-" gorm:"column:password;size:255;not null"` // Never expose in JSON
	Role         Role      `json:"role" gorm:"size:20;not null;default:'user';index"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// UserPatch lists the mutable profile fields. Nil means untouched.
type UserPatch struct {
	Email    *string
	Pseudo   *string
	Password *string
	Role     *Role
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Pseudo == nil && p.Password == nil && p.Role == nil
}
