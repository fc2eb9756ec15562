package authz

import (
	"errors"
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed RoleSet
		wantErr error
	}{
		{name: "member of set", role: "ADMIN", allowed: Roles("ADMIN", "SUBADMIN"), wantErr: nil},
		{name: "second member of set", role: "SUBADMIN", allowed: Roles("ADMIN", "SUBADMIN"), wantErr: nil},
		{name: "not a member", role: "USER", allowed: Roles("ADMIN", "SUBADMIN"), wantErr: ErrForbidden},
		{name: "single-role set rejects others", role: "SUBADMIN", allowed: Roles("ADMIN"), wantErr: ErrForbidden},
		{name: "empty set allows anyone", role: "USER", allowed: Roles(), wantErr: nil},
		{name: "nil set allows anyone", role: "USER", allowed: nil, wantErr: nil},
		{name: "empty role against non-empty set", role: "", allowed: Roles("ADMIN"), wantErr: ErrForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Check(tc.role, tc.allowed)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Check(%q) err = %v, want %v", tc.role, err, tc.wantErr)
			}
		})
	}
}
