package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/pacsgate/internal/store"
)

func TestMapPostgresError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "slug conflict",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "units_slug_key"},
			expected: store.ErrUnitSlugTaken,
		},
		{
			name:     "email conflict",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"},
			expected: store.ErrUserEmailTaken,
		},
		{
			name:     "second revision of the same report",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "reports_previous_version_key"},
			expected: store.ErrReportAlreadyRevised,
		},
		{
			name:     "missing unit",
			err:      &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "studies_cache_unit_id_fkey"},
			expected: store.ErrUnitNotFound,
		},
		{
			name:     "missing study",
			err:      &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "reports_study_id_fkey"},
			expected: store.ErrStudyNotFound,
		},
		{
			name:     "server shutting down",
			err:      &pgconn.PgError{Code: pgerrcode.AdminShutdown},
			expected: store.ErrUnavailable,
		},
		{
			name:     "too many connections",
			err:      &pgconn.PgError{Code: pgerrcode.TooManyConnections},
			expected: store.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, mapPostgresError(tt.err), tt.expected)
		})
	}
}

func TestMapPostgresError_passthrough(t *testing.T) {
	require.NoError(t, mapPostgresError(nil))

	plain := errors.New("boom")
	require.Equal(t, plain, mapPostgresError(plain))

	mapped := mapPostgresError(&pgconn.PgError{Code: pgerrcode.SyntaxError, Message: "syntax error"})
	require.Error(t, mapped)
	require.NotErrorIs(t, mapped, store.ErrUnavailable)
	require.Contains(t, mapped.Error(), pgerrcode.SyntaxError)
}

func TestPoolConfig_ApplyDefaults(t *testing.T) {
	cfg := &PoolConfig{ConnString: "postgres://localhost/pacsgate"}
	cfg.ApplyDefaults()

	require.NoError(t, cfg.Validate())
	require.Equal(t, int32(20), cfg.MaxConns)
	require.Equal(t, int32(5), cfg.MinConns)
	require.Equal(t, int32(10), cfg.ConnectTimeout)

	require.Error(t, (&PoolConfig{}).Validate())
}
