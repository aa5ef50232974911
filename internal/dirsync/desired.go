package dirsync

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	"github.com/lostandfound-admin/lostandfound-admin/internal/directory"
)

// desiredEntry is the target state for one directory identity after all
// mapped groups have been resolved.
type desiredEntry struct {
	// SamAccountName keeps the directory's original casing for account creation.
	SamAccountName string
	// Role is the highest-priority role among all mapped groups the
	// identity is a member of.
	Role models.Role
	// DisplayName and Email are the directory attributes.
	DisplayName string
	Email       string
}

// desiredState is keyed by lower-cased sAMAccountName; directory identity
// keys are case-insensitive.
type desiredState map[string]desiredEntry

// identityKey canonicalizes a sAMAccountName for accumulator lookups.
func identityKey(sam string) string {
	return strings.ToLower(sam)
}

// buildDesiredState resolves every active mapping against the directory
// and accumulates the target user state. It performs no writes.
//
// A group that cannot be resolved records an error and sets groupFailure;
// the remaining mappings are still processed. When one identity appears in
// several mapped groups, the entry with the higher-priority role is kept.
func buildDesiredState(provider directory.Provider, mappings []models.ADGroupMapping) (desiredState, []string, bool) {
	var (
		desired      = make(desiredState)
		errs         []string
		groupFailure bool
	)

	for _, mapping := range mappings {
		members, err := provider.GroupMembers(mapping.GroupName)
		if err != nil {
			groupFailure = true

			if errors.Is(err, directory.ErrGroupNotFound) {
				errs = append(errs, fmt.Sprintf("AD group %q not found in directory", mapping.GroupName))
			} else {
				errs = append(errs, fmt.Sprintf("error processing AD group %q: %v", mapping.GroupName, err))
			}

			continue
		}

		for _, member := range members {
			if member.SamAccountName == "" {
				continue
			}

			key := identityKey(member.SamAccountName)

			if existing, ok := desired[key]; ok && !mapping.MappedRole.Outranks(existing.Role) {
				continue
			}

			desired[key] = desiredEntry{
				SamAccountName: member.SamAccountName,
				Role:           mapping.MappedRole,
				DisplayName:    member.DisplayName,
				Email:          member.Email,
			}
		}
	}

	return desired, errs, groupFailure
}
