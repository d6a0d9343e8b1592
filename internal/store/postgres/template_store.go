package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

const templateColumns = `id, unit_id, name, modality, body, fields, is_global, is_active, created_by, created_at, updated_at`

// TemplateStore implements store.TemplateStore using PostgreSQL.
type TemplateStore struct {
	pool *pgxpool.Pool
}

// NewTemplateStore creates a new PostgreSQL-backed template store.
func NewTemplateStore(pool *pgxpool.Pool) *TemplateStore {
	return &TemplateStore{pool: pool}
}

// Create inserts a template and fills in its generated ID and timestamps.
func (s *TemplateStore) Create(ctx context.Context, tmpl *models.Template) error {
	query := `
		INSERT INTO templates (
			unit_id, name, modality, body, fields, is_global, is_active, created_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING id, created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		tmpl.UnitID,
		tmpl.Name,
		tmpl.Modality,
		tmpl.Body,
		fieldsOrEmpty(tmpl.Fields),
		tmpl.IsGlobal,
		tmpl.IsActive,
		tmpl.CreatedBy,
	).Scan(&tmpl.ID, &tmpl.CreatedAt, &tmpl.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", mapPostgresError(err))
	}

	log.Debug().
		Int64("template_id", tmpl.ID).
		Bool("global", tmpl.IsGlobal).
		Msg("Created template")

	return nil
}

// Get retrieves a template by ID.
func (s *TemplateStore) Get(ctx context.Context, id int64) (*models.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = $1`

	tmpl, err := scanTemplate(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", mapPostgresError(err))
	}

	return tmpl, nil
}

// List returns active templates of a unit and optionally the global ones.
func (s *TemplateStore) List(ctx context.Context, filter store.TemplateFilter) ([]*models.Template, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM templates
		WHERE is_active
		  AND ((unit_id = $1) OR ($2 AND is_global))
		ORDER BY name, id
	`

	rows, err := s.pool.Query(ctx, query, filter.UnitID, filter.IncludeGlobal)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var templates []*models.Template
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, tmpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", mapPostgresError(err))
	}

	return templates, nil
}

// Update updates an existing template.
func (s *TemplateStore) Update(ctx context.Context, tmpl *models.Template) error {
	query := `
		UPDATE templates SET
			name = $2,
			modality = $3,
			body = $4,
			fields = $5,
			is_active = $6,
			updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		tmpl.ID,
		tmpl.Name,
		tmpl.Modality,
		tmpl.Body,
		fieldsOrEmpty(tmpl.Fields),
		tmpl.IsActive,
	).Scan(&tmpl.CreatedAt, &tmpl.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrTemplateNotFound
		}
		return fmt.Errorf("failed to update template: %w", mapPostgresError(err))
	}

	log.Debug().
		Int64("template_id", tmpl.ID).
		Msg("Updated template")

	return nil
}

// Delete deletes a template by ID.
func (s *TemplateStore) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM templates WHERE id = $1`

	result, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrTemplateNotFound
	}

	log.Debug().
		Int64("template_id", id).
		Msg("Deleted template")

	return nil
}

func fieldsOrEmpty(fields json.RawMessage) json.RawMessage {
	if len(fields) == 0 {
		return json.RawMessage(`[]`)
	}
	return fields
}

func scanTemplate(row pgx.Row) (*models.Template, error) {
	var tmpl models.Template
	err := row.Scan(
		&tmpl.ID,
		&tmpl.UnitID,
		&tmpl.Name,
		&tmpl.Modality,
		&tmpl.Body,
		&tmpl.Fields,
		&tmpl.IsGlobal,
		&tmpl.IsActive,
		&tmpl.CreatedBy,
		&tmpl.CreatedAt,
		&tmpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}
