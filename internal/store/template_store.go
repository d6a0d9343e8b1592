package store

import (
	"context"
	"errors"

	"github.com/wolfeidau/pacsgate/internal/models"
)

// ErrTemplateNotFound is returned when a template doesn't exist.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateFilter selects the templates of one unit and optionally the global ones.
// A nil UnitID with IncludeGlobal lists only global templates.
type TemplateFilter struct {
	UnitID        *int64
	IncludeGlobal bool
}

// TemplateStore defines the interface for report template storage operations.
type TemplateStore interface {
	// Create inserts a template and assigns its ID and timestamps.
	Create(ctx context.Context, tmpl *models.Template) error

	// Get retrieves a template by ID.
	// Returns ErrTemplateNotFound if the template doesn't exist.
	Get(ctx context.Context, id int64) (*models.Template, error)

	// List returns active templates matching the filter ordered by name.
	List(ctx context.Context, filter TemplateFilter) ([]*models.Template, error)

	// Update replaces the mutable fields of a template.
	// Returns ErrTemplateNotFound if the template doesn't exist.
	Update(ctx context.Context, tmpl *models.Template) error

	// Delete removes a template. Reports created from it keep their body and lose the reference.
	// Returns ErrTemplateNotFound if the template doesn't exist.
	Delete(ctx context.Context, id int64) error
}
