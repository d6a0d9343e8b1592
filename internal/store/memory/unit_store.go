package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

// UnitStore implements store.UnitStore using in-memory storage.
type UnitStore struct {
	db *db
}

// Create creates a new unit in memory.
func (s *UnitStore) Create(ctx context.Context, unit *models.Unit) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.slugTaken(unit.Slug, 0) {
		return store.ErrUnitSlugTaken
	}

	now := s.db.now()
	unit.ID = s.db.id("units")
	unit.CreatedAt = now
	unit.UpdatedAt = now

	// Clone to avoid external modifications
	clone := *unit
	s.db.units[unit.ID] = &clone

	return nil
}

// Get retrieves a unit by ID.
func (s *UnitStore) Get(ctx context.Context, id int64) (*models.Unit, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	unit, exists := s.db.units[id]
	if !exists {
		return nil, store.ErrUnitNotFound
	}

	clone := *unit
	return &clone, nil
}

// List returns all units ordered by name.
func (s *UnitStore) List(ctx context.Context) ([]*models.Unit, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	result := make([]*models.Unit, 0, len(s.db.units))
	for _, unit := range s.db.units {
		clone := *unit
		result = append(result, &clone)
	}

	slices.SortFunc(result, func(a, b *models.Unit) int {
		return strings.Compare(a.Name, b.Name)
	})

	return result, nil
}

// Update updates an existing unit.
func (s *UnitStore) Update(ctx context.Context, unit *models.Unit) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, exists := s.db.units[unit.ID]
	if !exists {
		return store.ErrUnitNotFound
	}
	if s.slugTaken(unit.Slug, unit.ID) {
		return store.ErrUnitSlugTaken
	}

	unit.CreatedAt = existing.CreatedAt
	unit.UpdatedAt = s.db.now()

	clone := *unit
	s.db.units[unit.ID] = &clone

	return nil
}

// Delete deletes a unit and cascades to its studies, templates and reports.
func (s *UnitStore) Delete(ctx context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.units[id]; !exists {
		return store.ErrUnitNotFound
	}

	delete(s.db.units, id)

	for studyID, study := range s.db.studies {
		if study.UnitID == id {
			delete(s.db.studies, studyID)
		}
	}
	for tmplID, tmpl := range s.db.templates {
		if equalUnit(tmpl.UnitID, id) {
			delete(s.db.templates, tmplID)
		}
	}
	for reportID, report := range s.db.reports {
		if report.UnitID == id {
			delete(s.db.reports, reportID)
		}
	}
	for _, user := range s.db.users {
		if equalUnit(user.UnitID, id) {
			user.UnitID = nil
		}
	}

	return nil
}

// slugTaken must be called with the lock held.
func (s *UnitStore) slugTaken(slug string, exceptID int64) bool {
	for _, u := range s.db.units {
		if u.Slug == slug && u.ID != exceptID {
			return true
		}
	}
	return false
}
