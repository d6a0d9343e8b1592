package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

const studyColumns = `id, unit_id, orthanc_study_id, study_instance_uid, patient_name, patient_id,
	accession_number, study_date, modality, description, metadata, created_at, updated_at`

// StudyStore implements store.StudyStore using PostgreSQL.
type StudyStore struct {
	pool *pgxpool.Pool
}

// NewStudyStore creates a new PostgreSQL-backed study cache store.
func NewStudyStore(pool *pgxpool.Pool) *StudyStore {
	return &StudyStore{pool: pool}
}

// Get retrieves a study by ID.
func (s *StudyStore) Get(ctx context.Context, id int64) (*models.Study, error) {
	query := `SELECT ` + studyColumns + ` FROM studies_cache WHERE id = $1`

	study, err := scanStudy(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrStudyNotFound
		}
		return nil, fmt.Errorf("failed to get study: %w", mapPostgresError(err))
	}

	return study, nil
}

// List returns a page of studies matching the filter and the total match count.
func (s *StudyStore) List(ctx context.Context, filter store.StudyFilter) ([]*models.Study, int, error) {
	where, args := studyWhere(filter)

	var total int
	countQuery := `SELECT count(*) FROM studies_cache` + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count studies: %w", mapPostgresError(err))
	}

	query := `SELECT ` + studyColumns + ` FROM studies_cache` + where + ` ORDER BY study_date DESC, id DESC`
	if filter.Page.Limit > 0 {
		args = append(args, filter.Page.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Page.Offset > 0 {
		args = append(args, filter.Page.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list studies: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var studies []*models.Study
	for rows.Next() {
		study, err := scanStudy(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan study: %w", err)
		}
		studies = append(studies, study)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating studies: %w", mapPostgresError(err))
	}

	return studies, total, nil
}

// Upsert inserts a study or refreshes the cached row with the same unit and StudyInstanceUID.
func (s *StudyStore) Upsert(ctx context.Context, study *models.Study) error {
	if study.Metadata == nil {
		study.Metadata = map[string]any{}
	}

	query := `
		INSERT INTO studies_cache (
			unit_id, orthanc_study_id, study_instance_uid, patient_name, patient_id,
			accession_number, study_date, modality, description, metadata
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		ON CONFLICT (unit_id, study_instance_uid) DO UPDATE SET
			orthanc_study_id = EXCLUDED.orthanc_study_id,
			patient_name = EXCLUDED.patient_name,
			patient_id = EXCLUDED.patient_id,
			accession_number = EXCLUDED.accession_number,
			study_date = EXCLUDED.study_date,
			modality = EXCLUDED.modality,
			description = EXCLUDED.description,
			metadata = EXCLUDED.metadata,
			updated_at = now()
		RETURNING id, created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		study.UnitID,
		study.OrthancStudyID,
		study.StudyInstanceUID,
		study.PatientName,
		study.PatientID,
		study.AccessionNumber,
		study.StudyDate,
		study.Modality,
		study.Description,
		study.Metadata,
	).Scan(&study.ID, &study.CreatedAt, &study.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert study: %w", mapPostgresError(err))
	}

	log.Debug().
		Int64("study_id", study.ID).
		Int64("unit_id", study.UnitID).
		Str("study_instance_uid", study.StudyInstanceUID).
		Msg("Upserted study")

	return nil
}

// studyWhere builds the WHERE clause shared by the count and page queries.
func studyWhere(f store.StudyFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.UnitID != nil {
		add("unit_id = $%d", *f.UnitID)
	}
	if f.PatientName != "" {
		add(`patient_name ILIKE '%%' || $%d || '%%'`, escapeLike(f.PatientName))
	}
	if f.Modality != "" {
		add("modality = $%d", f.Modality)
	}
	if f.StudyDate != "" {
		add("study_date = $%d", f.StudyDate)
	}
	if f.AccessionNumber != "" {
		add(`accession_number LIKE '%%' || $%d || '%%'`, escapeLike(f.AccessionNumber))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanStudy(row pgx.Row) (*models.Study, error) {
	var study models.Study
	err := row.Scan(
		&study.ID,
		&study.UnitID,
		&study.OrthancStudyID,
		&study.StudyInstanceUID,
		&study.PatientName,
		&study.PatientID,
		&study.AccessionNumber,
		&study.StudyDate,
		&study.Modality,
		&study.Description,
		&study.Metadata,
		&study.CreatedAt,
		&study.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &study, nil
}
