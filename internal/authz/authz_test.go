package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"minimart/internal/authz"
	"minimart/internal/domain"
)

func TestAuthorize(t *testing.T) {
	admin := &domain.User{ID: 1, Name: "admin", Role: domain.RoleAdmin}
	user := &domain.User{ID: 2, Name: "alice", Role: domain.RoleUser}

	cases := []struct {
		name string
		user *domain.User
		req  authz.Requirement
		want authz.Decision
	}{
		{"public allows anonymous", nil, authz.Public(), authz.Allow},
		{"public allows anyone", admin, authz.Public(), authz.Allow},
		{"any-authenticated denies anonymous", nil, authz.AnyAuthenticated(), authz.Deny},
		{"any-authenticated allows user", user, authz.AnyAuthenticated(), authz.Allow},
		{"any-authenticated allows admin", admin, authz.AnyAuthenticated(), authz.Allow},
		{"exact-role denies anonymous", nil, authz.ExactRole(domain.RoleUser), authz.Deny},
		{"admin is not a user", admin, authz.ExactRole(domain.RoleUser), authz.Deny},
		{"user is not an admin", user, authz.ExactRole(domain.RoleAdmin), authz.Deny},
		{"admin matches admin", admin, authz.ExactRole(domain.RoleAdmin), authz.Allow},
		{"user matches user", user, authz.ExactRole(domain.RoleUser), authz.Allow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, authz.Authorize(tc.user, tc.req))
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "allow", authz.Allow.String())
	assert.Equal(t, "deny", authz.Deny.String())
}
