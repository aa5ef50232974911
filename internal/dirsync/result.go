package dirsync

import (
	"fmt"
	"strings"
)

// Result summarizes one synchronization pass. Counts cover committed
// changes only; Errors collects every soft failure in the order it was
// encountered. Success stays true when only per-group or per-user soft
// failures occurred; configuration guards and fatal failures clear it.
type Result struct {
	Success          bool
	UsersCreated     int
	UsersUpdated     int
	UsersDeactivated int
	RolesChanged     int
	Errors           []string
}

// addErrorf records a soft failure.
func (r *Result) addErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary renders the result as a single human-readable line, suitable for
// the activity log and the sync command output.
func (r *Result) Summary() string {
	state := "failed"
	if r.Success {
		state = "completed"
	}

	s := fmt.Sprintf("Sync %s. Created: %d, Updated: %d, Deactivated: %d, Roles changed: %d.",
		state, r.UsersCreated, r.UsersUpdated, r.UsersDeactivated, r.RolesChanged)

	if len(r.Errors) > 0 {
		s += " Errors: " + strings.Join(r.Errors, "; ")
	}

	return s
}
