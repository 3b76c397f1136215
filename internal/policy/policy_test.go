package policy_test

import (
	"fmt"
	"net/http"
	"testing"

	"yamdb/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expectation struct {
	resource policy.Resource
	method   policy.MethodClass
	role     policy.Role
	owner    bool
	want     bool
}

// authenticatedTable enumerates role x method class x resource x ownership for
// authenticated requesters.
var authenticatedTable = []expectation{
	{policy.Catalog, policy.Safe, policy.RoleUser, false, true},
	{policy.Catalog, policy.Safe, policy.RoleModerator, false, true},
	{policy.Catalog, policy.Safe, policy.RoleAdmin, false, true},
	{policy.Catalog, policy.Unsafe, policy.RoleUser, false, false},
	{policy.Catalog, policy.Unsafe, policy.RoleModerator, false, false},
	{policy.Catalog, policy.Unsafe, policy.RoleAdmin, false, true},

	{policy.Content, policy.Safe, policy.RoleUser, false, true},
	{policy.Content, policy.Safe, policy.RoleModerator, false, true},
	{policy.Content, policy.Safe, policy.RoleAdmin, false, true},
	{policy.Content, policy.Unsafe, policy.RoleUser, false, false},
	{policy.Content, policy.Unsafe, policy.RoleUser, true, true},
	{policy.Content, policy.Unsafe, policy.RoleModerator, false, true},
	{policy.Content, policy.Unsafe, policy.RoleModerator, true, true},
	{policy.Content, policy.Unsafe, policy.RoleAdmin, false, true},
	{policy.Content, policy.Unsafe, policy.RoleAdmin, true, true},

	{policy.Profile, policy.Safe, policy.RoleUser, false, false},
	{policy.Profile, policy.Safe, policy.RoleUser, true, true},
	{policy.Profile, policy.Safe, policy.RoleModerator, false, false},
	{policy.Profile, policy.Safe, policy.RoleModerator, true, true},
	{policy.Profile, policy.Safe, policy.RoleAdmin, false, true},
	{policy.Profile, policy.Unsafe, policy.RoleUser, false, false},
	{policy.Profile, policy.Unsafe, policy.RoleUser, true, true},
	{policy.Profile, policy.Unsafe, policy.RoleModerator, false, false},
	{policy.Profile, policy.Unsafe, policy.RoleModerator, true, true},
	{policy.Profile, policy.Unsafe, policy.RoleAdmin, false, true},
}

func TestAllowed_Authenticated(t *testing.T) {
	for _, e := range authenticatedTable {
		name := fmt.Sprintf("%s/%s/%s/owner=%t", e.resource, e.method, e.role, e.owner)
		t.Run(name, func(t *testing.T) {
			got := policy.Allowed(policy.Request{
				Resource: e.resource,
				Method:   e.method,
				Subject:  policy.Subject{Role: e.role, Authenticated: true},
				Owner:    e.owner,
			})
			assert.Equal(t, e.want, got)
		})
	}
}

func TestAllowed_CoversCrossProduct(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range authenticatedTable {
		if !e.owner {
			seen[fmt.Sprintf("%s/%s/%s", e.resource, e.method, e.role)] = true
		}
	}
	for _, res := range []policy.Resource{policy.Catalog, policy.Content, policy.Profile} {
		for _, m := range []policy.MethodClass{policy.Safe, policy.Unsafe} {
			for _, r := range policy.Roles {
				key := fmt.Sprintf("%s/%s/%s", res, m, r)
				assert.True(t, seen[key], "missing combination %s", key)
			}
		}
	}
}

func TestAllowed_Anonymous(t *testing.T) {
	cases := []struct {
		resource policy.Resource
		method   policy.MethodClass
		owner    bool
		want     bool
	}{
		{policy.Catalog, policy.Safe, false, true},
		{policy.Catalog, policy.Unsafe, false, false},
		{policy.Content, policy.Safe, false, true},
		{policy.Content, policy.Unsafe, false, false},
		// Ownership never grants writes to anonymous requesters.
		{policy.Content, policy.Unsafe, true, false},
		{policy.Profile, policy.Safe, true, false},
		{policy.Profile, policy.Unsafe, true, false},
	}
	for _, tc := range cases {
		got := policy.Allowed(policy.Request{
			Resource: tc.resource,
			Method:   tc.method,
			Subject:  policy.Anonymous,
			Owner:    tc.owner,
		})
		assert.Equal(t, tc.want, got, "%s/%s/owner=%t", tc.resource, tc.method, tc.owner)
	}
}

func TestAllowed_RoleWithoutAuthenticationIsIgnored(t *testing.T) {
	s := policy.Subject{Role: policy.RoleAdmin}
	assert.False(t, policy.Allowed(policy.Request{Resource: policy.Catalog, Method: policy.Unsafe, Subject: s}))
	assert.False(t, policy.Allowed(policy.Request{Resource: policy.Content, Method: policy.Unsafe, Subject: s}))
}

func TestCanAssignRole(t *testing.T) {
	assert.False(t, policy.CanAssignRole(policy.Anonymous))
	assert.False(t, policy.CanAssignRole(policy.Subject{Role: policy.RoleUser, Authenticated: true}))
	assert.False(t, policy.CanAssignRole(policy.Subject{Role: policy.RoleModerator, Authenticated: true}))
	assert.True(t, policy.CanAssignRole(policy.Subject{Role: policy.RoleAdmin, Authenticated: true}))
}

func TestClassOf(t *testing.T) {
	assert.Equal(t, policy.Safe, policy.ClassOf(http.MethodGet))
	assert.Equal(t, policy.Safe, policy.ClassOf(http.MethodHead))
	assert.Equal(t, policy.Safe, policy.ClassOf(http.MethodOptions))
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.Equal(t, policy.Unsafe, policy.ClassOf(m), m)
	}
}

func TestParseRole(t *testing.T) {
	r, err := policy.ParseRole("moderator")
	require.NoError(t, err)
	assert.Equal(t, policy.RoleModerator, r)

	_, err = policy.ParseRole("superuser")
	assert.Error(t, err)
}
