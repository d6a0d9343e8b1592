package gateway

import (
	"context"
	"errors"

	"github.com/wolfeidau/pacsgate/internal/audit"
	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

// ReportInput holds the fields of a new report.
type ReportInput struct {
	StudyID    int64
	TemplateID *int64
	Body       string // defaults to the template body when empty
}

// GetReportForStudy returns the latest report version of a study within the principal's scope.
func (s *Service) GetReportForStudy(ctx context.Context, p *auth.Principal, studyID int64) (*models.Report, error) {
	if _, err := s.visibleStudy(ctx, p, studyID, "reports.getByStudy"); err != nil {
		return nil, err
	}

	report, err := s.stores.Reports.LatestForStudy(ctx, studyID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return report, nil
}

// GetReport returns a report version within the principal's scope.
func (s *Service) GetReport(ctx context.Context, p *auth.Principal, id int64) (*models.Report, error) {
	report, err := s.stores.Reports.Get(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if !auth.AuthorizeTenantRead(p, report.UnitID).Allowed() {
		return nil, s.denied(ctx, "reports.get", newError(ErrNotFound, "report %d", id))
	}
	return report, nil
}

// CreateReport starts a draft report for a study of the principal's unit.
func (s *Service) CreateReport(ctx context.Context, p *auth.Principal, in ReportInput) (*models.Report, error) {
	if p == nil || !p.Active || p.UnitID == nil {
		return nil, s.denied(ctx, "reports.create", newError(ErrForbidden, "reports can only be created by unit members"))
	}
	if err := requireReportAuthor(p); err != nil {
		return nil, s.denied(ctx, "reports.create", err)
	}

	study, err := s.stores.Studies.Get(ctx, in.StudyID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if study.UnitID != *p.UnitID {
		return nil, s.denied(ctx, "reports.create", newError(ErrNotFound, "study %d", in.StudyID))
	}

	if _, err := s.stores.Reports.LatestForStudy(ctx, study.ID); err == nil {
		return nil, newError(ErrPreconditionFailed, "study %d already has a report, revise it instead", study.ID)
	} else if !errors.Is(err, store.ErrReportNotFound) {
		return nil, translateStoreError(err)
	}

	body := in.Body
	if in.TemplateID != nil {
		tmpl, err := s.GetTemplate(ctx, p, *in.TemplateID)
		if err != nil {
			return nil, err
		}
		if body == "" {
			body = tmpl.Body
		}
	}

	report := &models.Report{
		UnitID:           study.UnitID,
		StudyID:          study.ID,
		StudyInstanceUID: study.StudyInstanceUID,
		TemplateID:       in.TemplateID,
		AuthorUserID:     p.UserID,
		Body:             body,
		Status:           models.ReportStatusDraft,
		Version:          1,
	}
	if err := s.stores.Reports.Create(ctx, report); err != nil {
		return nil, translateStoreError(err)
	}

	metadata := map[string]any{
		"studyId":          study.ID,
		"studyInstanceUid": study.StudyInstanceUID,
	}
	if in.TemplateID != nil {
		metadata["templateId"] = *in.TemplateID
	}
	s.audit.Record(ctx, p, &report.UnitID, models.AuditCreateReport, audit.TargetOf(models.TargetReport, report.ID), metadata)

	return report, nil
}

// UpdateReport replaces the body of a draft or revised report.
func (s *Service) UpdateReport(ctx context.Context, p *auth.Principal, id int64, body string) (*models.Report, error) {
	report, err := s.writableReport(ctx, p, id, "reports.update")
	if err != nil {
		return nil, err
	}
	if !report.Editable() {
		return nil, newError(ErrPreconditionFailed, "report %d is %s", id, report.Status)
	}

	updated, err := s.stores.Reports.UpdateBody(ctx, id, body)
	if err != nil {
		return nil, translateStoreError(err)
	}

	s.audit.Record(ctx, p, &updated.UnitID, models.AuditUpdateReport, audit.TargetOf(models.TargetReport, updated.ID), map[string]any{
		"version": updated.Version,
	})

	return updated, nil
}

// SignReport signs a draft or revised report. Signing an already signed report is rejected
// and leaves the original signature untouched.
func (s *Service) SignReport(ctx context.Context, p *auth.Principal, id int64) (*models.Report, error) {
	report, err := s.writableReport(ctx, p, id, "reports.sign")
	if err != nil {
		return nil, err
	}
	if report.Status == models.ReportStatusSigned {
		return nil, newError(ErrPreconditionFailed, "report %d is already signed", id)
	}

	signed, err := s.stores.Reports.Sign(ctx, id, p.UserID, s.now().UTC())
	if err != nil {
		return nil, translateStoreError(err)
	}

	s.audit.Record(ctx, p, &signed.UnitID, models.AuditSignReport, audit.TargetOf(models.TargetReport, signed.ID), map[string]any{
		"version":          signed.Version,
		"studyInstanceUid": signed.StudyInstanceUID,
	})

	return signed, nil
}

// ReviseReport creates the next version of a signed report. The signed version is kept unchanged.
func (s *Service) ReviseReport(ctx context.Context, p *auth.Principal, id int64, body string) (*models.Report, error) {
	prev, err := s.writableReport(ctx, p, id, "reports.revise")
	if err != nil {
		return nil, err
	}
	if prev.Status != models.ReportStatusSigned {
		return nil, newError(ErrPreconditionFailed, "only signed reports can be revised, report %d is %s", id, prev.Status)
	}

	if _, err := s.stores.Reports.Successor(ctx, id); err == nil {
		return nil, newError(ErrPreconditionFailed, "report %d already has a newer version", id)
	} else if !errors.Is(err, store.ErrReportNotFound) {
		return nil, translateStoreError(err)
	}

	if body == "" {
		body = prev.Body
	}
	previousID := prev.ID
	next := &models.Report{
		UnitID:            prev.UnitID,
		StudyID:           prev.StudyID,
		StudyInstanceUID:  prev.StudyInstanceUID,
		TemplateID:        prev.TemplateID,
		AuthorUserID:      p.UserID,
		Body:              body,
		Status:            models.ReportStatusRevised,
		Version:           prev.Version + 1,
		PreviousVersionID: &previousID,
	}
	if err := s.stores.Reports.Create(ctx, next); err != nil {
		return nil, translateStoreError(err)
	}

	s.audit.Record(ctx, p, &next.UnitID, models.AuditReviseReport, audit.TargetOf(models.TargetReport, next.ID), map[string]any{
		"previousVersionId": previousID,
		"version":           next.Version,
	})

	return next, nil
}

// writableReport loads a report the principal may change. Reports outside the
// principal's scope are reported as not found.
func (s *Service) writableReport(ctx context.Context, p *auth.Principal, id int64, operation string) (*models.Report, error) {
	report, err := s.stores.Reports.Get(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if !auth.AuthorizeTenantWrite(p, report.UnitID).Allowed() {
		return nil, s.denied(ctx, operation, newError(ErrNotFound, "report %d", id))
	}
	if err := requireReportAuthor(p); err != nil {
		return nil, s.denied(ctx, operation, err)
	}
	return report, nil
}

// requireReportAuthor rejects roles with read only access to reports.
func requireReportAuthor(p *auth.Principal) error {
	if p.Role == models.RoleReferringDoctor {
		return newError(ErrForbidden, "referring doctors cannot write reports")
	}
	return nil
}
