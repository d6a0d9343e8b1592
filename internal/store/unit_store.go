package store

import (
	"context"
	"errors"

	"github.com/wolfeidau/pacsgate/internal/models"
)

// Sentinel errors for unit store operations
var (
	ErrUnitNotFound  = errors.New("unit not found")
	ErrUnitSlugTaken = errors.New("unit slug already in use")
)

// UnitStore defines the interface for unit (tenant) storage operations.
type UnitStore interface {
	// Create inserts a unit and assigns its ID and timestamps.
	// Returns ErrUnitSlugTaken if another unit already uses the slug.
	Create(ctx context.Context, unit *models.Unit) error

	// Get retrieves a unit by ID.
	// Returns ErrUnitNotFound if the unit doesn't exist.
	Get(ctx context.Context, id int64) (*models.Unit, error)

	// List returns all units ordered by name.
	List(ctx context.Context) ([]*models.Unit, error)

	// Update replaces the mutable fields of a unit.
	// Returns ErrUnitNotFound if the unit doesn't exist, ErrUnitSlugTaken on slug conflict.
	Update(ctx context.Context, unit *models.Unit) error

	// Delete removes a unit together with its studies, templates and reports.
	// Users of the unit become unassigned. Audit entries are left untouched.
	// Returns ErrUnitNotFound if the unit doesn't exist.
	Delete(ctx context.Context, id int64) error
}
