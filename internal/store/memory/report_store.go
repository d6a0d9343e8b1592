package memory

import (
	"context"
	"time"

	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

// ReportStore implements store.ReportStore using in-memory storage.
type ReportStore struct {
	db *db
}

// Create creates a new report version in memory.
func (s *ReportStore) Create(ctx context.Context, report *models.Report) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.studies[report.StudyID]; !exists {
		return store.ErrStudyNotFound
	}
	if report.PreviousVersionID != nil && s.successor(*report.PreviousVersionID) != nil {
		return store.ErrReportAlreadyRevised
	}

	now := s.db.now()
	report.ID = s.db.id("reports")
	report.CreatedAt = now
	report.UpdatedAt = now
	s.db.reports[report.ID] = cloneReport(report)

	return nil
}

// Get retrieves a report by ID.
func (s *ReportStore) Get(ctx context.Context, id int64) (*models.Report, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	report, exists := s.db.reports[id]
	if !exists {
		return nil, store.ErrReportNotFound
	}

	return cloneReport(report), nil
}

// LatestForStudy returns the highest version report of a study.
func (s *ReportStore) LatestForStudy(ctx context.Context, studyID int64) (*models.Report, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var latest *models.Report
	for _, report := range s.db.reports {
		if report.StudyID != studyID {
			continue
		}
		if latest == nil || report.Version > latest.Version ||
			(report.Version == latest.Version && report.ID > latest.ID) {
			latest = report
		}
	}

	if latest == nil {
		return nil, store.ErrReportNotFound
	}

	return cloneReport(latest), nil
}

// Successor returns the next version of a report.
func (s *ReportStore) Successor(ctx context.Context, id int64) (*models.Report, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	next := s.successor(id)
	if next == nil {
		return nil, store.ErrReportNotFound
	}

	return cloneReport(next), nil
}

// UpdateBody changes the body of an editable report.
func (s *ReportStore) UpdateBody(ctx context.Context, id int64, body string) (*models.Report, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	report, exists := s.db.reports[id]
	if !exists {
		return nil, store.ErrReportNotFound
	}
	if !report.Editable() {
		return nil, store.ErrReportNotEditable
	}

	report.Body = body
	report.UpdatedAt = s.db.now()

	return cloneReport(report), nil
}

// Sign marks an editable report as signed.
func (s *ReportStore) Sign(ctx context.Context, id int64, userID int64, at time.Time) (*models.Report, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	report, exists := s.db.reports[id]
	if !exists {
		return nil, store.ErrReportNotFound
	}
	if !report.Editable() {
		return nil, store.ErrReportNotSignable
	}

	report.Status = models.ReportStatusSigned
	report.SignedAt = &at
	report.SignedBy = &userID
	report.UpdatedAt = s.db.now()

	return cloneReport(report), nil
}

func (s *ReportStore) successor(id int64) *models.Report {
	for _, report := range s.db.reports {
		if equalUnit(report.PreviousVersionID, id) {
			return report
		}
	}
	return nil
}

func cloneReport(r *models.Report) *models.Report {
	clone := *r
	clone.TemplateID = cloneInt64(r.TemplateID)
	clone.PreviousVersionID = cloneInt64(r.PreviousVersionID)
	clone.SignedAt = cloneTime(r.SignedAt)
	clone.SignedBy = cloneInt64(r.SignedBy)
	return &clone
}
