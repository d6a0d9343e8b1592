package models

import "time"

// ReportStatus is the lifecycle state of a report version.
type ReportStatus string

const (
	ReportStatusDraft   ReportStatus = "draft"
	ReportStatusSigned  ReportStatus = "signed"
	ReportStatusRevised ReportStatus = "revised" // new version of a signed report, not yet signed
)

// Report is one version of a radiology report for a study.
type Report struct {
	ID                int64
	UnitID            int64
	StudyID           int64
	StudyInstanceUID  string
	TemplateID        *int64
	AuthorUserID      int64
	Body              string
	Status            ReportStatus
	Version           int
	PreviousVersionID *int64
	SignedAt          *time.Time
	SignedBy          *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Editable reports whether the body of the report may still change.
func (r *Report) Editable() bool {
	return r.Status == ReportStatusDraft || r.Status == ReportStatusRevised
}
