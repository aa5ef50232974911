package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// AuthSource represents the authentication source for a user account.
// It indicates how the user authenticates (local database or Active Directory).
type AuthSource string

const (
	// AuthSourceLocal indicates the user authenticates with a local database password.
	AuthSourceLocal AuthSource = "local"
	// AuthSourceActiveDirectory indicates the user authenticates against Active Directory.
	// Such accounts carry no local password; credentials are validated live.
	AuthSourceActiveDirectory AuthSource = "ad"
)

// User represents a user account in the system.
// Accounts are either created locally by an administrator or synchronized
// from Active Directory groups. AD-sourced accounts are never hard-deleted
// by the synchronization; they are flagged inactive instead.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Active indicates whether the user account is active and can log in.
	Active bool
	// Username is the unique username for login.
	Username string `gorm:"unique;size:100;not null"`
	// Email is the user's email address.
	Email string `gorm:"size:255;not null"`
	// DisplayName is the user's display name, refreshed from AD for synced accounts.
	DisplayName string `gorm:"size:200"`
	// Password is the Argon2id hashed password (only used for local authentication).
	Password string `gorm:"size:255"`
	// Role is the single application role assigned to this user.
	Role Role `gorm:"type:varchar(50);not null;default:'User'"`
	// AuthSource indicates how this user authenticates (local or ad).
	AuthSource AuthSource `gorm:"type:varchar(20);not null;default:'local'"`
	// SamAccountName is the stable directory identity key for AD-sourced users.
	// Empty for local accounts. Once set it is never cleared by the sync.
	SamAccountName string `gorm:"size:256;index"`
	// MustChangePassword forces a password change at next login. Local accounts only.
	MustChangePassword bool
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
	// DeletedAt is the soft delete timestamp (nil if not deleted, managed by GORM).
	DeletedAt *time.Time
}

// IsDirectorySourced reports whether the account originates from Active Directory.
func (u *User) IsDirectorySourced() bool {
	return u.AuthSource == AuthSourceActiveDirectory
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating local user passwords.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
// Returns true if the password matches, false otherwise.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
