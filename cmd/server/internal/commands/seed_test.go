package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
	"github.com/wolfeidau/pacsgate/internal/store/memory"
)

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()

	master, err := seedDemo(ctx, stores, defaultMasterEmail)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdminMaster, master.Role)
	require.Nil(t, master.UnitID)

	units, err := stores.Units.List(ctx)
	require.NoError(t, err)
	require.Len(t, units, 2)

	templates, err := stores.Templates.List(ctx, store.TemplateFilter{IncludeGlobal: true})
	require.NoError(t, err)
	require.Len(t, templates, 3)
	for _, tmpl := range templates {
		require.True(t, tmpl.IsGlobal)
		require.Nil(t, tmpl.UnitID)
	}

	_, total, err := stores.Studies.List(ctx, store.StudyFilter{Page: store.Page{Limit: 100}})
	require.NoError(t, err)
	require.Equal(t, 5, total)

	users, err := stores.Users.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, users, 3)

	// Seeding twice returns the existing master and adds nothing.
	again, err := seedDemo(ctx, stores, defaultMasterEmail)
	require.NoError(t, err)
	require.Equal(t, master.ID, again.ID)

	units, err = stores.Units.List(ctx)
	require.NoError(t, err)
	require.Len(t, units, 2)
}

func TestFindUserByEmail(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()
	_, err := seedDemo(ctx, stores, "root@example.com")
	require.NoError(t, err)

	u, err := findUserByEmail(ctx, stores.Users, "root@example.com")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdminMaster, u.Role)

	_, err = findUserByEmail(ctx, stores.Users, "nobody@example.com")
	require.Error(t, err)
}

func TestFlagValidation(t *testing.T) {
	tests := []struct {
		name    string
		flags   interface{ Validate() error }
		wantErr bool
	}{
		{name: "token secret missing", flags: &TokenFlags{}, wantErr: true},
		{name: "token secret short", flags: &TokenFlags{Secret: "short"}, wantErr: true},
		{name: "token secret ok", flags: &TokenFlags{Secret: "0123456789abcdef0123456789abcdef"}},
		{name: "postgres conn missing", flags: &PostgresStoreFlags{MaxConns: 20}, wantErr: true},
		{name: "postgres min over max", flags: &PostgresStoreFlags{ConnString: "postgres://x", MinConns: 5, MaxConns: 2}, wantErr: true},
		{name: "postgres ok", flags: &PostgresStoreFlags{ConnString: "postgres://x", MinConns: 2, MaxConns: 20}},
		{name: "pacs disabled", flags: &PACSFlags{}},
		{name: "pacs move without cache", flags: &PACSFlags{QueryCommand: "q", MoveCommand: "m", QueryTimeout: 1, MoveTimeout: 1}, wantErr: true},
		{name: "pacs ok", flags: &PACSFlags{QueryCommand: "q", QueryTimeout: 1, MoveTimeout: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.flags.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
