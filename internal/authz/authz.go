// Package authz is the pure allow/deny decision shared by every guarded
// route. Callers decide what a Deny turns into; in this app it is always a
// redirect to the login page.
package authz

import "minimart/internal/domain"

type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

type reqKind int

const (
	reqPublic reqKind = iota
	reqAnyAuthenticated
	reqExactRole
)

// Requirement describes what a route demands of the caller.
type Requirement struct {
	kind reqKind
	role domain.Role
}

// Public places no demand at all; even an anonymous caller is allowed.
func Public() Requirement { return Requirement{kind: reqPublic} }

// AnyAuthenticated demands a resolved user of any role.
func AnyAuthenticated() Requirement { return Requirement{kind: reqAnyAuthenticated} }

// ExactRole demands a resolved user whose role equals r exactly. An admin is
// not a superset of a user: product creation is user-only in the labs.
func ExactRole(r domain.Role) Requirement { return Requirement{kind: reqExactRole, role: r} }

// Authorize maps (user, requirement) to a decision. user may be nil for
// anonymous callers.
func Authorize(user *domain.User, req Requirement) Decision {
	switch req.kind {
	case reqPublic:
		return Allow
	case reqAnyAuthenticated:
		if user == nil {
			return Deny
		}
		return Allow
	case reqExactRole:
		if user == nil || user.Role != req.role {
			return Deny
		}
		return Allow
	}
	return Deny
}
