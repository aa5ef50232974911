package models

import "testing"

func TestRolePriorityOrder(t *testing.T) {
	if !RoleSuperAdmin.Outranks(RoleSupervisor) {
		t.Error("SuperAdmin should outrank Supervisor")
	}

	if !RoleSupervisor.Outranks(RoleUser) {
		t.Error("Supervisor should outrank User")
	}

	if !RoleSuperAdmin.Outranks(RoleUser) {
		t.Error("SuperAdmin should outrank User")
	}

	if RoleUser.Outranks(RoleSuperAdmin) {
		t.Error("User should not outrank SuperAdmin")
	}

	if RoleUser.Outranks(RoleUser) {
		t.Error("a role should not outrank itself")
	}
}

func TestRoleRankIsTotal(t *testing.T) {
	seen := make(map[int]Role)

	for _, r := range AllRoles() {
		rank := r.Rank()
		if rank == 0 {
			t.Errorf("role %s has no rank", r)
		}

		if prev, dup := seen[rank]; dup {
			t.Errorf("roles %s and %s share rank %d", prev, r, rank)
		}

		seen[rank] = r
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Role
		wantErr bool
	}{
		{"superadmin", "SuperAdmin", RoleSuperAdmin, false},
		{"supervisor", "Supervisor", RoleSupervisor, false},
		{"user", "User", RoleUser, false},
		{"unknown", "Wizard", "", true},
		{"empty", "", "", true},
		{"wrong case", "superadmin", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRole(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}

			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
