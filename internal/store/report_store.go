package store

import (
	"context"
	"errors"
	"time"

	"github.com/wolfeidau/pacsgate/internal/models"
)

// Sentinel errors for report store operations
var (
	ErrReportNotFound       = errors.New("report not found")
	ErrReportNotEditable    = errors.New("report is not editable")
	ErrReportNotSignable    = errors.New("report is already signed")
	ErrReportAlreadyRevised = errors.New("report already has a newer version")
)

// ReportStore defines the interface for report storage operations.
// Status transitions are conditional updates so concurrent callers cannot sign twice.
type ReportStore interface {
	// Create inserts a report version and assigns its ID and timestamps.
	// Returns ErrReportAlreadyRevised if PreviousVersionID already has a successor.
	Create(ctx context.Context, report *models.Report) error

	// Get retrieves a report by ID.
	// Returns ErrReportNotFound if the report doesn't exist.
	Get(ctx context.Context, id int64) (*models.Report, error)

	// LatestForStudy returns the highest version report of a study.
	// Returns ErrReportNotFound if the study has no report.
	LatestForStudy(ctx context.Context, studyID int64) (*models.Report, error)

	// Successor returns the report whose PreviousVersionID is id.
	// Returns ErrReportNotFound if there is none.
	Successor(ctx context.Context, id int64) (*models.Report, error)

	// UpdateBody changes the body of a draft or revised report.
	// Returns ErrReportNotFound or ErrReportNotEditable.
	UpdateBody(ctx context.Context, id int64, body string) (*models.Report, error)

	// Sign marks a draft or revised report as signed by userID at the given time.
	// Returns ErrReportNotFound or ErrReportNotSignable.
	Sign(ctx context.Context, id int64, userID int64, at time.Time) (*models.Report, error)
}
