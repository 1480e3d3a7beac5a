// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered account in the system.
// It contains authentication credentials and metadata for user management.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey" json:"id"`

	// Username is the public handle chosen at signup.
	// It must be unique across all users, active or not.
	Username string `gorm:"uniqueIndex;size:50;not null" json:"username"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users, active or not.
	Email string `gorm:"uniqueIndex;size:100;not null" json:"email"`

	// HashedPassword is the bcrypt hash of the user's password.
	// This must never store or expose plaintext passwords.
	HashedPassword string `gorm:"size:256;not null" json:"-"`

	// IsActive reports whether the account is enabled.
	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// Role is an open-ended tag such as "user", "admin" or "doctor".
	Role string `gorm:"size:20;not null;default:user" json:"role"`

	// CreatedAt is the timestamp when the user was created.
	// Rows are never updated or deleted by any exposed operation.
	CreatedAt time.Time `json:"created_at"`
}

// TableName fixes the table name regardless of GORM pluralization rules.
func (User) TableName() string { return "users" }
