// Package model defines database models
package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleStaff
}

type Account struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         Role   `gorm:"not null;default:'user'"`
	IsVerified   bool   `gorm:"default:false"`

	// Set only while a password reset is in flight
	VerificationCode       *string
	VerificationCodeExpiry *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicAccount is the part of an account that may leave the server
type PublicAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		Role:     a.Role,
	}
}

// NormalizeEmail lowercases and trims an email address the same way
// it is stored in the accounts table
func NormalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
