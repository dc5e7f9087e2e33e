// Package access derives what a principal may do at each level of the
// vault / collection / asset hierarchy. Everything here is a pure function
// of the normalized role and node-specific flags, so callers can resolve
// capabilities synchronously on every render without touching the network.
package access

import "strings"

// Role is a canonicalized role token.
type Role string

// The four recognized ranks, ordered reviewer < editor < manager < owner.
const (
	RoleNone     Role = ""
	RoleReviewer Role = "reviewer"
	RoleEditor   Role = "editor"
	RoleManager  Role = "manager"
	RoleOwner    Role = "owner"
)

// Normalize canonicalizes a free-form role token. "viewer" is a legacy alias
// for reviewer. Unrecognized non-empty tokens pass through lower-cased as an
// escape hatch; the resolver grants them no elevated capability. Total; never
// fails.
func Normalize(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return RoleNone
	case "viewer", "reviewer":
		return RoleReviewer
	case "editor":
		return RoleEditor
	case "manager":
		return RoleManager
	case "owner":
		return RoleOwner
	default:
		return Role(strings.ToLower(strings.TrimSpace(raw)))
	}
}

// rank maps a role to its ordinal. Unrecognized roles rank as none.
func (r Role) rank() int {
	switch r {
	case RoleReviewer:
		return 1
	case RoleEditor:
		return 2
	case RoleManager:
		return 3
	case RoleOwner:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether r ranks at or above other.
func (r Role) AtLeast(other Role) bool { return r.rank() >= other.rank() }
