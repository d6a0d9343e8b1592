package store

import (
	"context"
	"errors"

	"github.com/wolfeidau/pacsgate/internal/models"
)

// ErrStudyNotFound is returned when a study is missing from the cache.
var ErrStudyNotFound = errors.New("study not found")

// StudyFilter narrows a study listing. Empty fields are ignored.
type StudyFilter struct {
	UnitID          *int64 // nil lists every unit
	PatientName     string // case insensitive substring
	Modality        string // exact
	StudyDate       string // exact, YYYYMMDD
	AccessionNumber string // substring
	Page            Page
}

// StudyStore defines the interface for the study metadata cache.
type StudyStore interface {
	// Get retrieves a study by ID.
	// Returns ErrStudyNotFound if the study doesn't exist.
	Get(ctx context.Context, id int64) (*models.Study, error)

	// List returns one page of studies matching the filter, newest study date first,
	// together with the total number of matches.
	List(ctx context.Context, filter StudyFilter) ([]*models.Study, int, error)

	// Upsert inserts a study or refreshes the cached metadata of the study with the
	// same unit and StudyInstanceUID. The study ID is set on return.
	Upsert(ctx context.Context, study *models.Study) error
}
