package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, seeded bool) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	svc, err := NewService(db)
	require.NoError(t, err)
	if seeded {
		require.NoError(t, svc.BootstrapBuiltinRoles())
	}
	return svc
}

func allowed(t *testing.T, svc *Service, adminID uint, obj, act string) bool {
	t.Helper()
	ok, err := svc.EnforceAdmin(adminID, obj, act)
	require.NoError(t, err)
	return ok
}

func TestEnforceAdminMatchesRouteTemplate(t *testing.T) {
	svc := newTestService(t, false)
	require.NoError(t, svc.GrantRolePolicy("ops", "/admin/cpm-rates/:code/quote", "GET"))
	require.NoError(t, svc.SetAdminRoles(1, []string{"ops"}))

	assert.True(t, allowed(t, svc, 1, "/api/v1/admin/cpm-rates/US/quote", "get"))
	assert.False(t, allowed(t, svc, 1, "/api/v1/admin/cpm-rates/US/quote", "POST"))
	assert.False(t, allowed(t, svc, 2, "/api/v1/admin/cpm-rates/US/quote", "GET"))
}

func TestSetAdminRolesReplacesPrevious(t *testing.T) {
	svc := newTestService(t, false)
	require.NoError(t, svc.GrantRolePolicy("ops", "/admin/visits", "GET"))
	require.NoError(t, svc.GrantRolePolicy("finance", "/admin/payouts", "GET"))

	require.NoError(t, svc.SetAdminRoles(2, []string{"ops"}))
	roles, err := svc.GetAdminRoles(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"role:ops"}, roles)

	require.NoError(t, svc.SetAdminRoles(2, []string{"finance"}))
	roles, err = svc.GetAdminRoles(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"role:finance"}, roles)

	assert.False(t, allowed(t, svc, 2, "/admin/visits", "GET"))
	assert.True(t, allowed(t, svc, 2, "/admin/payouts", "GET"))
}

func TestNormalizeObject(t *testing.T) {
	cases := map[string]string{
		"/api/v1/admin/payouts/:id": "/admin/payouts/:id",
		"/admin/payouts/:id":        "/admin/payouts/:id",
		"admin/payouts":             "/admin/payouts",
		"/api/v1/admin/links/":      "/admin/links",
		"/api/v1":                   "/",
		"":                          "/",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeObject(in), "input %q", in)
	}
}

func TestBuiltinRolePermissions(t *testing.T) {
	svc := newTestService(t, true)

	roles, err := svc.ListRoles()
	require.NoError(t, err)
	assert.Subset(t, roles, []string{"role:readonly_auditor", "role:rates_manager", "role:fraud_reviewer", "role:finance"})

	cases := []struct {
		role  string
		obj   string
		act   string
		allow bool
	}{
		{"readonly_auditor", "/api/v1/admin/visits", "GET", true},
		{"readonly_auditor", "/api/v1/admin/cpm-rates/US", "PUT", false},
		{"rates_manager", "/admin/settings/referral", "GET", true},
		{"rates_manager", "/admin/settings/referral", "PUT", false},
		{"rates_manager", "/api/v1/admin/cpm-rates/US", "PUT", true},
		{"rates_manager", "/api/v1/admin/cpm-rates/US/status", "PATCH", true},
		{"fraud_reviewer", "/api/v1/admin/referrals/4/resolve", "POST", true},
		{"fraud_reviewer", "/api/v1/admin/payouts/4/complete", "POST", false},
		{"finance", "/api/v1/admin/payouts/9/complete", "POST", true},
		{"finance", "/admin/settings/referral", "PUT", true},
		{"finance", "/api/v1/admin/cpm-rates/US", "PUT", false},
	}
	for i, tc := range cases {
		adminID := uint(100 + i)
		require.NoError(t, svc.SetAdminRoles(adminID, []string{tc.role}))
		assert.Equal(t, tc.allow, allowed(t, svc, adminID, tc.obj, tc.act), "%s %s %s", tc.role, tc.act, tc.obj)
	}
}

func TestBootstrapBuiltinRolesIsIdempotent(t *testing.T) {
	svc := newTestService(t, true)
	before, err := svc.GetRolePolicies("finance")
	require.NoError(t, err)
	require.NoError(t, svc.BootstrapBuiltinRoles())
	after, err := svc.GetRolePolicies("finance")
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestRevokeAndDeleteCustomRole(t *testing.T) {
	svc := newTestService(t, false)
	require.NoError(t, svc.GrantRolePolicy("temp", "/admin/links", "GET"))
	require.NoError(t, svc.RevokeRolePolicy("temp", "/admin/links", "GET"))

	policies, err := svc.GetRolePolicies("temp")
	require.NoError(t, err)
	assert.Empty(t, policies)

	require.NoError(t, svc.DeleteRole("temp"))
	roles, err := svc.ListRoles()
	require.NoError(t, err)
	assert.NotContains(t, roles, "role:temp")
}

func TestBuiltinRolesAreImmutable(t *testing.T) {
	assert.True(t, IsImmutableRole("finance"))
	assert.True(t, IsImmutableRole("role:readonly_auditor"))
	assert.False(t, IsImmutableRole("custom_ops"))

	svc := newTestService(t, true)
	assert.ErrorIs(t, svc.DeleteRole("fraud_reviewer"), ErrImmutableRole)
	policies, err := svc.GetRolePolicies("fraud_reviewer")
	require.NoError(t, err)
	assert.Len(t, policies, 4)
}

func TestNormalizeRole(t *testing.T) {
	got, err := NormalizeRole("Finance")
	require.NoError(t, err)
	assert.Equal(t, "role:finance", got)

	got, err = NormalizeRole(" role:rates manager ")
	require.NoError(t, err)
	assert.Equal(t, "role:rates_manager", got)

	_, err = NormalizeRole("role:")
	assert.ErrorIs(t, err, ErrRoleRequired)
	_, err = NormalizeRole("__anchor__")
	assert.ErrorIs(t, err, ErrReservedRole)
}

func TestGetAdminPoliciesIncludesInherited(t *testing.T) {
	svc := newTestService(t, true)
	require.NoError(t, svc.SetAdminRoles(5, []string{"fraud_reviewer"}))

	policies, err := svc.GetAdminPolicies(5)
	require.NoError(t, err)
	assert.Contains(t, policies, Policy{Subject: "role:readonly_auditor", Object: "/admin/*", Action: "GET"})
	assert.Contains(t, policies, Policy{Subject: "role:fraud_reviewer", Object: "/admin/referrals/:id/resolve", Action: "POST"})

	_, err = svc.GetAdminPolicies(0)
	assert.ErrorIs(t, err, ErrAdminRequired)
}
