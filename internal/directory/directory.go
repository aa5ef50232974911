// Package directory provides read-only access to the Active Directory
// server: group membership resolution for user synchronization and live
// credential validation at login time.
package directory

import "errors"

var (
	// ErrDisabled is returned when directory integration is disabled via configuration.
	ErrDisabled = errors.New("directory integration is disabled")

	// ErrGroupNotFound is returned when a group cannot be found in the directory.
	ErrGroupNotFound = errors.New("group not found in directory")

	// ErrUserNotFound is returned when a user cannot be found in the directory.
	ErrUserNotFound = errors.New("user not found in directory")

	// ErrMultipleUsersFound is returned when a lookup expected one user but found several.
	// This typically indicates duplicate entries under the search base.
	ErrMultipleUsersFound = errors.New("multiple users found in directory")
)

// Member is one group member as reported by the directory. Transient: it
// exists only for the duration of one synchronization pass and holds plain
// data with no directory handles attached.
type Member struct {
	// SamAccountName is the stable identity key of the account.
	SamAccountName string
	// DisplayName is the account's display name.
	DisplayName string
	// Email is the account's mail attribute, may be empty.
	Email string
}

// Provider resolves group membership. Implementations return the full
// member list of a group in one call; ErrGroupNotFound signals a missing
// group, any other error a provider failure.
type Provider interface {
	GroupMembers(groupName string) ([]Member, error)
}

// CredentialValidator checks a username/password pair against the
// directory. It never returns an error: disabled integration, unreachable
// servers, rejected credentials and unexpected failures are all reported
// as false, distinguishable only via logging. Credentials are never stored.
type CredentialValidator interface {
	ValidateCredentials(username, password string) bool
}
