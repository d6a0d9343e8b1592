package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

// TemplateStore implements store.TemplateStore using in-memory storage.
type TemplateStore struct {
	db *db
}

// Create creates a new template in memory.
func (s *TemplateStore) Create(ctx context.Context, tmpl *models.Template) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if tmpl.UnitID != nil {
		if _, exists := s.db.units[*tmpl.UnitID]; !exists {
			return store.ErrUnitNotFound
		}
	}

	now := s.db.now()
	tmpl.ID = s.db.id("templates")
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now
	s.db.templates[tmpl.ID] = cloneTemplate(tmpl)

	return nil
}

// Get retrieves a template by ID.
func (s *TemplateStore) Get(ctx context.Context, id int64) (*models.Template, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	tmpl, exists := s.db.templates[id]
	if !exists {
		return nil, store.ErrTemplateNotFound
	}

	return cloneTemplate(tmpl), nil
}

// List returns active templates of a unit and, if requested, the global templates.
func (s *TemplateStore) List(ctx context.Context, filter store.TemplateFilter) ([]*models.Template, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var result []*models.Template
	for _, tmpl := range s.db.templates {
		if !tmpl.IsActive {
			continue
		}
		own := filter.UnitID != nil && equalUnit(tmpl.UnitID, *filter.UnitID)
		global := filter.IncludeGlobal && tmpl.IsGlobal
		if own || global {
			result = append(result, cloneTemplate(tmpl))
		}
	}

	slices.SortFunc(result, func(a, b *models.Template) int {
		return strings.Compare(a.Name, b.Name)
	})

	return result, nil
}

// Update updates an existing template.
func (s *TemplateStore) Update(ctx context.Context, tmpl *models.Template) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, exists := s.db.templates[tmpl.ID]
	if !exists {
		return store.ErrTemplateNotFound
	}

	tmpl.CreatedAt = existing.CreatedAt
	tmpl.UpdatedAt = s.db.now()
	s.db.templates[tmpl.ID] = cloneTemplate(tmpl)

	return nil
}

// Delete deletes a template and clears references from reports.
func (s *TemplateStore) Delete(ctx context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.templates[id]; !exists {
		return store.ErrTemplateNotFound
	}

	delete(s.db.templates, id)
	for _, report := range s.db.reports {
		if equalUnit(report.TemplateID, id) {
			report.TemplateID = nil
		}
	}

	return nil
}

func cloneTemplate(t *models.Template) *models.Template {
	clone := *t
	clone.UnitID = cloneInt64(t.UnitID)
	clone.Fields = slices.Clone(t.Fields)
	return &clone
}
