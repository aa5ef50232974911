// Package dirsync reconciles local user accounts against Active Directory
// group membership. One pass resolves every active group mapping, builds
// the desired user/role state in memory, and applies the minimal set of
// create/update/deactivate operations to the local user store.
//
// The pass never takes a destructive action under uncertain information:
// if any group fails to resolve, deactivation is skipped for the whole
// run, because members of the unreachable group would otherwise appear to
// have left the directory.
package dirsync

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	"github.com/lostandfound-admin/lostandfound-admin/internal/directory"
)

// Reconciler runs synchronization passes. Safe for concurrent use: a run
// that starts while another is active fails fast instead of interleaving
// writes over the same user store.
type Reconciler struct {
	enabled       bool
	provider      directory.Provider
	mappings      MappingSource
	users         UserStore
	fallbackEmail func(samAccountName string) string

	mu sync.Mutex
}

// NewReconciler creates a reconciler. fallbackEmail derives an address for
// directory accounts without a mail attribute and may be nil.
func NewReconciler(
	enabled bool,
	provider directory.Provider,
	mappings MappingSource,
	users UserStore,
	fallbackEmail func(samAccountName string) string,
) *Reconciler {
	if fallbackEmail == nil {
		fallbackEmail = func(string) string { return "" }
	}

	return &Reconciler{
		enabled:       enabled,
		provider:      provider,
		mappings:      mappings,
		users:         users,
		fallbackEmail: fallbackEmail,
	}
}

// Run executes one reconciliation pass and returns its summary. All
// failures are folded into the result; nothing is returned as an error.
//
// Running twice in a row against unchanged directory state is a no-op on
// the second pass.
func (r *Reconciler) Run() *Result {
	result := &Result{}

	if !r.mu.TryLock() {
		result.addErrorf("a synchronization run is already active")
		return result
	}
	defer r.mu.Unlock()

	if !r.enabled {
		result.addErrorf("Active Directory integration is disabled")
		return result
	}

	mappings, err := r.mappings.ListActiveMappings()
	if err != nil {
		result.addErrorf("AD sync failed: %v", err)
		return result
	}

	if len(mappings) == 0 {
		result.addErrorf("no active AD group mappings configured for synchronization")
		return result
	}

	desired, groupErrs, groupFailure := buildDesiredState(r.provider, mappings)
	result.Errors = append(result.Errors, groupErrs...)

	r.applyDesired(desired, result)

	if groupFailure {
		log.Warn().Msg("AD sync: skipping deactivation, at least one group failed to resolve")
	} else if !r.deactivateMissing(desired, result) {
		return result
	}

	result.Success = true

	log.Info().
		Int("created", result.UsersCreated).
		Int("updated", result.UsersUpdated).
		Int("deactivated", result.UsersDeactivated).
		Int("roles_changed", result.RolesChanged).
		Int("errors", len(result.Errors)).
		Msg("AD sync completed")

	return result
}

// applyDesired advances every accumulated identity towards its desired
// state. Per-user failures are recorded and skipped; they never abort the
// pass.
func (r *Reconciler) applyDesired(desired desiredState, result *Result) {
	for _, entry := range desired {
		user, err := r.users.FindBySamAccountName(entry.SamAccountName)
		if err != nil {
			result.addErrorf("%v", err)
			continue
		}

		if user == nil {
			r.createUser(entry, result)
			continue
		}

		r.updateUser(user, entry, result)
	}
}

// createUser provisions a new directory-sourced account: active, mapped
// role, no local password.
func (r *Reconciler) createUser(entry desiredEntry, result *Result) {
	email := entry.Email
	if email == "" {
		email = r.fallbackEmail(entry.SamAccountName)
	}

	displayName := entry.DisplayName
	if displayName == "" {
		displayName = entry.SamAccountName
	}

	user := models.User{
		Active:         true,
		Username:       entry.SamAccountName,
		Email:          email,
		DisplayName:    displayName,
		Role:           entry.Role,
		AuthSource:     models.AuthSourceActiveDirectory,
		SamAccountName: entry.SamAccountName,
	}

	if err := r.users.Create(&user); err != nil {
		result.addErrorf("%v", err)
		return
	}

	result.UsersCreated++
}

// updateUser refreshes attributes, reactivates, and aligns the role. The
// updated count increments at most once per user per run, however many of
// the three triggers fired.
func (r *Reconciler) updateUser(user *models.User, entry desiredEntry, result *Result) {
	attrsChanged := false

	if entry.DisplayName != "" && user.DisplayName != entry.DisplayName {
		user.DisplayName = entry.DisplayName
		attrsChanged = true
	}

	if entry.Email != "" && user.Email != entry.Email {
		user.Email = entry.Email
		attrsChanged = true
	}

	if !user.Active {
		user.Active = true
		attrsChanged = true
	}

	if attrsChanged {
		if err := r.users.Update(user); err != nil {
			result.addErrorf("%v", err)
			return
		}
	}

	roleChanged := user.Role != entry.Role
	if roleChanged {
		if err := r.users.SetRole(user, entry.Role); err != nil {
			result.addErrorf("%v", err)
			return
		}

		result.RolesChanged++
	}

	if attrsChanged || roleChanged {
		result.UsersUpdated++
	}
}

// deactivateMissing flags every active directory-sourced user whose
// identity was not seen this run as inactive. Accounts are never deleted.
// Returns false on a fatal store failure.
func (r *Reconciler) deactivateMissing(desired desiredState, result *Result) bool {
	adUsers, err := r.users.ListActiveDirectoryUsers()
	if err != nil {
		result.addErrorf("AD sync failed: %v", err)
		return false
	}

	for i := range adUsers {
		user := &adUsers[i]

		if user.SamAccountName == "" {
			continue
		}

		if _, seen := desired[identityKey(user.SamAccountName)]; seen {
			continue
		}

		user.Active = false

		if err := r.users.Update(user); err != nil {
			result.addErrorf("%v", err)
			continue
		}

		result.UsersDeactivated++
	}

	return true
}
