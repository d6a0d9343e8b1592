package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/pacsgate/internal/models"
)

// AuditStore implements store.AuditStore using PostgreSQL.
// A trigger on audit_log rejects UPDATE and DELETE.
type AuditStore struct {
	pool *pgxpool.Pool
}

// NewAuditStore creates a new PostgreSQL-backed audit log.
func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

// Append inserts an audit entry.
func (s *AuditStore) Append(ctx context.Context, entry *models.AuditEntry) error {
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	query := `
		INSERT INTO audit_log (
			user_id, unit_id, action, target_type, target_id, ip_address, user_agent, metadata, timestamp
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query,
		entry.UserID,
		entry.UnitID,
		string(entry.Action),
		string(entry.TargetType),
		entry.TargetID,
		entry.IPAddress,
		entry.UserAgent,
		metadata,
		entry.Timestamp,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", mapPostgresError(err))
	}

	return nil
}
