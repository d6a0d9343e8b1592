package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/models"
)

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name      string
		principal *auth.Principal
		input     UserInput
		wantErr   error
	}{
		{
			name:      "master creates master",
			principal: master(),
			input:     UserInput{Name: "Root", Email: "root@example.com", Role: models.RoleAdminMaster},
		},
		{
			name:      "master creates radiologist anywhere",
			principal: master(),
			input:     UserInput{Name: "Rad", Email: "rad@example.com", Role: models.RoleRadiologist, UnitID: ptr(int64(2))},
		},
		{
			name:      "admin_unit creates in own unit",
			principal: member(models.RoleAdminUnit, 1),
			input:     UserInput{Name: "Doc", Email: "doc@example.com", Role: models.RoleReferringDoctor, UnitID: ptr(int64(1))},
		},
		{
			name:      "admin_unit creates in other unit",
			principal: member(models.RoleAdminUnit, 1),
			input:     UserInput{Name: "Doc", Email: "doc@example.com", Role: models.RoleRadiologist, UnitID: ptr(int64(2))},
			wantErr:   ErrForbidden,
		},
		{
			name:      "admin_unit creates master",
			principal: member(models.RoleAdminUnit, 1),
			input:     UserInput{Name: "Root", Email: "root@example.com", Role: models.RoleAdminMaster},
			wantErr:   ErrForbidden,
		},
		{
			name:      "radiologist creates user",
			principal: member(models.RoleRadiologist, 1),
			input:     UserInput{Name: "Doc", Email: "doc@example.com", Role: models.RoleRadiologist, UnitID: ptr(int64(1))},
			wantErr:   ErrForbidden,
		},
		{
			name:      "master with unit",
			principal: master(),
			input:     UserInput{Name: "Root", Email: "root@example.com", Role: models.RoleAdminMaster, UnitID: ptr(int64(1))},
			wantErr:   ErrInvalidArgument,
		},
		{
			name:      "radiologist without unit",
			principal: master(),
			input:     UserInput{Name: "Rad", Email: "rad@example.com", Role: models.RoleRadiologist},
			wantErr:   ErrInvalidArgument,
		},
		{
			name:      "unknown role",
			principal: master(),
			input:     UserInput{Name: "X", Email: "x@example.com", Role: "nurse", UnitID: ptr(int64(1))},
			wantErr:   ErrInvalidArgument,
		},
		{
			name:      "bad email",
			principal: master(),
			input:     UserInput{Name: "X", Email: "not-an-email", Role: models.RoleRadiologist, UnitID: ptr(int64(1))},
			wantErr:   ErrInvalidArgument,
		},
		{
			name:      "unknown unit",
			principal: master(),
			input:     UserInput{Name: "X", Email: "x@example.com", Role: models.RoleRadiologist, UnitID: ptr(int64(40))},
			wantErr:   ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedUnits(t, 2)

			user, err := f.svc.CreateUser(context.Background(), tt.principal, tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, f.entries())
				return
			}
			require.NoError(t, err)
			require.True(t, user.IsActive)
			require.Equal(t, tt.input.UnitID, user.UnitID)

			entries := f.entries()
			require.Len(t, entries, 1)
			require.Equal(t, models.AuditCreateUser, entries[0].Action)
			require.Equal(t, string(tt.input.Role), entries[0].Metadata["role"])
		})
	}
}

func TestCreateUser_duplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.seedUnits(t, 1)
	f.seedUser(t, models.RoleRadiologist, ptr(int64(1)), "rad@example.com")

	_, err := f.svc.CreateUser(context.Background(), master(), UserInput{
		Name: "Rad Two", Email: "RAD@example.com", Role: models.RoleRadiologist, UnitID: ptr(int64(1)),
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	f.seedUnits(t, 2)
	rad := f.seedUser(t, models.RoleRadiologist, ptr(int64(1)), "rad@example.com")
	other := f.seedUser(t, models.RoleRadiologist, ptr(int64(2)), "other@example.com")
	ctx := context.Background()
	admin := member(models.RoleAdminUnit, 1)

	updated, err := f.svc.UpdateUser(ctx, admin, rad.ID, UserPatch{Name: ptr("Dr Rad"), Role: ptr(models.RoleReferringDoctor)})
	require.NoError(t, err)
	require.Equal(t, "Dr Rad", updated.Name)
	require.Equal(t, models.RoleReferringDoctor, updated.Role)

	// moving a user out of the admin's unit
	_, err = f.svc.UpdateUser(ctx, admin, rad.ID, UserPatch{UnitID: ptr(int64(2))})
	require.ErrorIs(t, err, ErrForbidden)

	// promoting to master
	_, err = f.svc.UpdateUser(ctx, admin, rad.ID, UserPatch{Role: ptr(models.RoleAdminMaster), Unassign: true})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdateUser(ctx, admin, other.ID, UserPatch{Name: ptr("x")})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdateUser(ctx, master(), other.ID, UserPatch{Unassign: true})
	require.ErrorIs(t, err, ErrInvalidArgument)

	moved, err := f.svc.UpdateUser(ctx, master(), other.ID, UserPatch{UnitID: ptr(int64(1))})
	require.NoError(t, err)
	require.Equal(t, ptr(int64(1)), moved.UnitID)

	_, err = f.svc.UpdateUser(ctx, master(), 404, UserPatch{})
	require.ErrorIs(t, err, ErrNotFound)

	entries := f.entries()
	require.Len(t, entries, 2)
	require.Equal(t, models.AuditUpdateUser, entries[0].Action)
	require.Equal(t, []string{"name", "role"}, entries[0].Metadata["fields"])
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	f.seedUnits(t, 1)
	adminUser := f.seedUser(t, models.RoleAdminUnit, ptr(int64(1)), "admin@example.com")
	rad := f.seedUser(t, models.RoleRadiologist, ptr(int64(1)), "rad@example.com")
	ctx := context.Background()

	admin := auth.PrincipalFromUser(adminUser)

	require.ErrorIs(t, f.svc.DeleteUser(ctx, admin, adminUser.ID), ErrPreconditionFailed)
	require.ErrorIs(t, f.svc.DeleteUser(ctx, member(models.RoleRadiologist, 1), rad.ID), ErrForbidden)

	require.NoError(t, f.svc.DeleteUser(ctx, admin, rad.ID))

	got, err := f.stores.Users.Get(ctx, rad.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	entries := f.entries()
	require.Len(t, entries, 1)
	require.Equal(t, models.AuditDeleteUser, entries[0].Action)
	require.Equal(t, adminUser.ID, entries[0].UserID)
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	f.seedUnits(t, 2)
	f.seedUser(t, models.RoleAdminMaster, nil, "root@example.com")
	f.seedUser(t, models.RoleRadiologist, ptr(int64(1)), "a@example.com")
	f.seedUser(t, models.RoleRadiologist, ptr(int64(2)), "b@example.com")
	ctx := context.Background()

	all, err := f.svc.ListUsers(ctx, master())
	require.NoError(t, err)
	require.Len(t, all, 3)

	own, err := f.svc.ListUsers(ctx, member(models.RoleReferringDoctor, 2))
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, "b@example.com", own[0].Email)
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	f.seedUnits(t, 1)
	user := f.seedUser(t, models.RoleRadiologist, ptr(int64(1)), "rad@example.com")

	got, err := f.svc.Me(context.Background(), auth.PrincipalFromUser(user))
	require.NoError(t, err)
	require.Equal(t, user.Email, got.Email)

	_, err = f.svc.Me(context.Background(), nil)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSignInAndOut(t *testing.T) {
	f := newFixture(t)
	f.seedUnits(t, 1)
	user := f.seedUser(t, models.RoleRadiologist, ptr(int64(1)), "rad@example.com")
	inactive := f.seedUser(t, models.RoleRadiologist, ptr(int64(1)), "gone@example.com")
	inactive.IsActive = false
	require.NoError(t, f.stores.Users.Update(context.Background(), inactive))

	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	ctx := context.Background()

	signedIn, err := f.svc.SignIn(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, signedIn.LastSignedIn)
	require.True(t, now.Equal(*signedIn.LastSignedIn))

	_, err = f.svc.SignIn(ctx, inactive.ID)
	require.ErrorIs(t, err, ErrPreconditionFailed)

	_, err = f.svc.SignIn(ctx, 404)
	require.ErrorIs(t, err, ErrNotFound)

	f.svc.SignOut(ctx, auth.PrincipalFromUser(user))

	entries := f.entries()
	require.Len(t, entries, 2)
	require.Equal(t, models.AuditLogin, entries[0].Action)
	require.Equal(t, models.AuditLogout, entries[1].Action)
	require.Equal(t, user.ID, entries[1].UserID)
}
