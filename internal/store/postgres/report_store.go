package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

const reportColumns = `id, unit_id, study_id, study_instance_uid, template_id, author_user_id, body, status,
	version, previous_version_id, signed_at, signed_by, created_at, updated_at`

// ReportStore implements store.ReportStore using PostgreSQL.
type ReportStore struct {
	pool *pgxpool.Pool
}

// NewReportStore creates a new PostgreSQL-backed report store.
func NewReportStore(pool *pgxpool.Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

// Create inserts a report version and fills in its generated ID and timestamps.
func (s *ReportStore) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (
			unit_id, study_id, study_instance_uid, template_id, author_user_id, body,
			status, version, previous_version_id, signed_at, signed_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		RETURNING id, created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		report.UnitID,
		report.StudyID,
		report.StudyInstanceUID,
		report.TemplateID,
		report.AuthorUserID,
		report.Body,
		string(report.Status),
		report.Version,
		report.PreviousVersionID,
		report.SignedAt,
		report.SignedBy,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", mapPostgresError(err))
	}

	log.Debug().
		Int64("report_id", report.ID).
		Int64("study_id", report.StudyID).
		Int("version", report.Version).
		Msg("Created report")

	return nil
}

// Get retrieves a report by ID.
func (s *ReportStore) Get(ctx context.Context, id int64) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	return s.queryOne(ctx, "get report", query, id)
}

// LatestForStudy returns the highest version report of a study.
func (s *ReportStore) LatestForStudy(ctx context.Context, studyID int64) (*models.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE study_id = $1
		ORDER BY version DESC, id DESC
		LIMIT 1
	`
	return s.queryOne(ctx, "get latest report", query, studyID)
}

// Successor returns the report that revises the given one.
func (s *ReportStore) Successor(ctx context.Context, id int64) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE previous_version_id = $1`
	return s.queryOne(ctx, "get report successor", query, id)
}

// UpdateBody changes the body of a draft or revised report.
func (s *ReportStore) UpdateBody(ctx context.Context, id int64, body string) (*models.Report, error) {
	query := `
		UPDATE reports SET
			body = $2,
			updated_at = now()
		WHERE id = $1 AND status IN ('draft', 'revised')
		RETURNING ` + reportColumns

	report, err := scanReport(s.pool.QueryRow(ctx, query, id, body))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.conditionFailed(ctx, id, store.ErrReportNotEditable)
		}
		return nil, fmt.Errorf("failed to update report: %w", mapPostgresError(err))
	}

	log.Debug().
		Int64("report_id", id).
		Msg("Updated report body")

	return report, nil
}

// Sign marks a draft or revised report as signed. The status guard in the
// WHERE clause makes concurrent signing attempts race safely.
func (s *ReportStore) Sign(ctx context.Context, id int64, userID int64, at time.Time) (*models.Report, error) {
	query := `
		UPDATE reports SET
			status = 'signed',
			signed_at = $3,
			signed_by = $2,
			updated_at = now()
		WHERE id = $1 AND status IN ('draft', 'revised')
		RETURNING ` + reportColumns

	report, err := scanReport(s.pool.QueryRow(ctx, query, id, userID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.conditionFailed(ctx, id, store.ErrReportNotSignable)
		}
		return nil, fmt.Errorf("failed to sign report: %w", mapPostgresError(err))
	}

	log.Info().
		Int64("report_id", id).
		Int64("signed_by", userID).
		Msg("Signed report")

	return report, nil
}

// conditionFailed distinguishes a missing report from one in the wrong state.
func (s *ReportStore) conditionFailed(ctx context.Context, id int64, stateErr error) error {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reports WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check report: %w", mapPostgresError(err))
	}
	if !exists {
		return store.ErrReportNotFound
	}
	return stateErr
}

func (s *ReportStore) queryOne(ctx context.Context, op, query string, arg int64) (*models.Report, error) {
	report, err := scanReport(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to %s: %w", op, mapPostgresError(err))
	}
	return report, nil
}

func scanReport(row pgx.Row) (*models.Report, error) {
	var (
		report models.Report
		status string
	)
	err := row.Scan(
		&report.ID,
		&report.UnitID,
		&report.StudyID,
		&report.StudyInstanceUID,
		&report.TemplateID,
		&report.AuthorUserID,
		&report.Body,
		&status,
		&report.Version,
		&report.PreviousVersionID,
		&report.SignedAt,
		&report.SignedBy,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	report.Status = models.ReportStatus(status)
	return &report, nil
}
