package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when the username or password is wrong.
	// Deliberately covers both cases so login responses cannot be used to
	// enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidOldPassword is returned when the provided old password does not match the user's current password.
	ErrInvalidOldPassword = errors.New("invalid old password")

	// ErrUserNameExists is returned when attempting to create a user with a username that already exists.
	ErrUserNameExists = errors.New("user with this username already exists")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrDirectoryUnavailable is returned when an AD-sourced user tries to log
	// in while directory integration is disabled.
	ErrDirectoryUnavailable = errors.New("directory authentication is not available")

	// ErrNotLocalAccount is returned for password operations on directory-sourced
	// accounts, whose passwords live in Active Directory.
	ErrNotLocalAccount = errors.New("passwords of directory accounts are managed in Active Directory")
)
