package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

const unitColumns = `id, name, slug, is_active, orthanc_base_url, orthanc_user, orthanc_password,
	logo_url, pacs_host, pacs_port, pacs_ae_title, pacs_local_ae_title, created_at, updated_at`

// UnitStore implements store.UnitStore using PostgreSQL.
type UnitStore struct {
	pool *pgxpool.Pool
}

// NewUnitStore creates a new PostgreSQL-backed unit store.
func NewUnitStore(pool *pgxpool.Pool) *UnitStore {
	return &UnitStore{pool: pool}
}

// Create inserts a unit and fills in its generated ID and timestamps.
func (s *UnitStore) Create(ctx context.Context, unit *models.Unit) error {
	query := `
		INSERT INTO units (
			name, slug, is_active, orthanc_base_url, orthanc_user, orthanc_password,
			logo_url, pacs_host, pacs_port, pacs_ae_title, pacs_local_ae_title
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		RETURNING id, created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		unit.Name,
		unit.Slug,
		unit.IsActive,
		unit.OrthancBaseURL,
		unit.OrthancUser,
		unit.OrthancPassword,
		unit.LogoURL,
		unit.PACSHost,
		unit.PACSPort,
		unit.PACSAETitle,
		unit.PACSLocalAETitle,
	).Scan(&unit.ID, &unit.CreatedAt, &unit.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create unit: %w", mapPostgresError(err))
	}

	log.Debug().
		Int64("unit_id", unit.ID).
		Str("slug", unit.Slug).
		Msg("Created unit")

	return nil
}

// Get retrieves a unit by ID.
func (s *UnitStore) Get(ctx context.Context, id int64) (*models.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE id = $1`

	unit, err := scanUnit(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUnitNotFound
		}
		return nil, fmt.Errorf("failed to get unit: %w", mapPostgresError(err))
	}

	return unit, nil
}

// List returns all units ordered by name.
func (s *UnitStore) List(ctx context.Context) ([]*models.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units ORDER BY name, id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var units []*models.Unit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, unit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating units: %w", mapPostgresError(err))
	}

	return units, nil
}

// Update updates an existing unit.
func (s *UnitStore) Update(ctx context.Context, unit *models.Unit) error {
	query := `
		UPDATE units SET
			name = $2,
			slug = $3,
			is_active = $4,
			orthanc_base_url = $5,
			orthanc_user = $6,
			orthanc_password = $7,
			logo_url = $8,
			pacs_host = $9,
			pacs_port = $10,
			pacs_ae_title = $11,
			pacs_local_ae_title = $12,
			updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		unit.ID,
		unit.Name,
		unit.Slug,
		unit.IsActive,
		unit.OrthancBaseURL,
		unit.OrthancUser,
		unit.OrthancPassword,
		unit.LogoURL,
		unit.PACSHost,
		unit.PACSPort,
		unit.PACSAETitle,
		unit.PACSLocalAETitle,
	).Scan(&unit.CreatedAt, &unit.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrUnitNotFound
		}
		return fmt.Errorf("failed to update unit: %w", mapPostgresError(err))
	}

	log.Debug().
		Int64("unit_id", unit.ID).
		Msg("Updated unit")

	return nil
}

// Delete deletes a unit by ID.
// Studies, templates and reports cascade via FK constraints; users are unassigned.
func (s *UnitStore) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM units WHERE id = $1`

	result, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete unit: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrUnitNotFound
	}

	log.Info().
		Int64("unit_id", id).
		Msg("Deleted unit (and cascade-deleted studies, templates and reports)")

	return nil
}

func scanUnit(row pgx.Row) (*models.Unit, error) {
	var unit models.Unit
	err := row.Scan(
		&unit.ID,
		&unit.Name,
		&unit.Slug,
		&unit.IsActive,
		&unit.OrthancBaseURL,
		&unit.OrthancUser,
		&unit.OrthancPassword,
		&unit.LogoURL,
		&unit.PACSHost,
		&unit.PACSPort,
		&unit.PACSAETitle,
		&unit.PACSLocalAETitle,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &unit, nil
}
