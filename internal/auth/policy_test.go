package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/pacsgate/internal/models"
)

func unit(id int64) *int64 { return &id }

func principal(role models.Role, unitID *int64) *Principal {
	return &Principal{UserID: 1, Role: role, UnitID: unitID, Active: true}
}

func TestAuthorizeTenantRead(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		target    int64
		expected  Decision
	}{
		{
			name:      "master reads any unit",
			principal: principal(models.RoleAdminMaster, nil),
			target:    7,
			expected:  Allow,
		},
		{
			name:      "radiologist reads own unit",
			principal: principal(models.RoleRadiologist, unit(5)),
			target:    5,
			expected:  Allow,
		},
		{
			name:      "radiologist denied other unit",
			principal: principal(models.RoleRadiologist, unit(5)),
			target:    6,
			expected:  Deny,
		},
		{
			name:      "unassigned referring doctor denied",
			principal: principal(models.RoleReferringDoctor, nil),
			target:    5,
			expected:  Deny,
		},
		{
			name:      "inactive master denied",
			principal: &Principal{Role: models.RoleAdminMaster},
			target:    5,
			expected:  Deny,
		},
		{
			name:      "nil principal denied",
			principal: nil,
			target:    5,
			expected:  Deny,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, AuthorizeTenantRead(tt.principal, tt.target))
			require.Equal(t, tt.expected, AuthorizeTenantWrite(tt.principal, tt.target))
		})
	}
}

func TestAuthorizeUnitLifecycle(t *testing.T) {
	require.True(t, AuthorizeUnitLifecycle(principal(models.RoleAdminMaster, nil)).Allowed())

	for _, role := range []models.Role{models.RoleAdminUnit, models.RoleRadiologist, models.RoleReferringDoctor} {
		t.Run(string(role), func(t *testing.T) {
			require.Equal(t, Deny, AuthorizeUnitLifecycle(principal(role, unit(1))))
		})
	}
}

func TestAuthorizeGlobalResource(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		isGlobal  bool
		expected  Decision
	}{
		{"master creates global", principal(models.RoleAdminMaster, nil), true, Allow},
		{"unit admin cannot create global", principal(models.RoleAdminUnit, unit(2)), true, Deny},
		{"radiologist cannot create global", principal(models.RoleRadiologist, unit(2)), true, Deny},
		{"radiologist creates unit template", principal(models.RoleRadiologist, unit(2)), false, Allow},
		{"unassigned cannot create unit template", principal(models.RoleRadiologist, nil), false, Deny},
		{"master without unit cannot create unit template", principal(models.RoleAdminMaster, nil), false, Deny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, AuthorizeGlobalResource(tt.principal, tt.isGlobal))
		})
	}
}

func TestAuthorizeUnitAdmin(t *testing.T) {
	require.Equal(t, Allow, AuthorizeUnitAdmin(principal(models.RoleAdminMaster, nil), 7))
	require.Equal(t, Allow, AuthorizeUnitAdmin(principal(models.RoleAdminUnit, unit(2)), 2))
	require.Equal(t, Deny, AuthorizeUnitAdmin(principal(models.RoleAdminUnit, unit(2)), 7))
	require.Equal(t, Deny, AuthorizeUnitAdmin(principal(models.RoleRadiologist, unit(2)), 2))
}

func TestResolveScope(t *testing.T) {
	require.Equal(t, Scope{Kind: ScopeAll}, ResolveScope(principal(models.RoleAdminMaster, nil)))
	require.Equal(t, Scope{Kind: ScopeUnit, UnitID: 5}, ResolveScope(principal(models.RoleRadiologist, unit(5))))
	require.True(t, ResolveScope(principal(models.RoleReferringDoctor, nil)).Empty())
	require.True(t, ResolveScope(nil).Empty())

	require.Nil(t, ResolveScope(principal(models.RoleAdminMaster, nil)).UnitFilter())
	require.Equal(t, int64(5), *ResolveScope(principal(models.RoleAdminUnit, unit(5))).UnitFilter())
}

func TestCheckEntity(t *testing.T) {
	radiologist := principal(models.RoleRadiologist, unit(5))

	require.Equal(t, AccessNotFound, CheckEntity(radiologist, unit(5), false))
	require.Equal(t, AccessGranted, CheckEntity(radiologist, unit(5), true))
	require.Equal(t, AccessForbidden, CheckEntity(radiologist, unit(6), true))
	require.Equal(t, AccessGranted, CheckEntity(radiologist, nil, true))
	require.Equal(t, AccessGranted, CheckEntity(principal(models.RoleAdminMaster, nil), unit(6), true))
	require.Equal(t, AccessForbidden, CheckEntity(nil, nil, true))
}
