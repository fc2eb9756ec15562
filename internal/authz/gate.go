// Package authz decides whether an already-authenticated identity may use
// an operation. Role requirements are declared explicitly where routes are
// registered and passed in; the gate never inspects or verifies tokens.
package authz

import "errors"

var ErrForbidden = errors.New("role not permitted for this operation")

// RoleSet is the set of roles an operation admits. An empty set means the
// operation is unrestricted.
type RoleSet map[string]struct{}

func Roles(roles ...string) RoleSet {
	set := make(RoleSet, len(roles))

	for _, r := range roles {
		set[r] = struct{}{}
	}

	return set
}

// Check allows when allowed is empty or role is a member; otherwise it
// reports ErrForbidden.
func Check(role string, allowed RoleSet) error {
	if len(allowed) == 0 {
		return nil
	}

	if _, ok := allowed[role]; ok {
		return nil
	}

	return ErrForbidden
}
