package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

// StudyStore implements store.StudyStore using in-memory storage.
type StudyStore struct {
	db *db
}

// Get retrieves a study by ID.
func (s *StudyStore) Get(ctx context.Context, id int64) (*models.Study, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	study, exists := s.db.studies[id]
	if !exists {
		return nil, store.ErrStudyNotFound
	}

	return cloneStudy(study), nil
}

// List returns a page of studies matching the filter and the total match count.
func (s *StudyStore) List(ctx context.Context, filter store.StudyFilter) ([]*models.Study, int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var matched []*models.Study
	for _, study := range s.db.studies {
		if matchStudy(study, filter) {
			matched = append(matched, study)
		}
	}

	slices.SortFunc(matched, func(a, b *models.Study) int {
		if c := strings.Compare(b.StudyDate, a.StudyDate); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})

	total := len(matched)
	start := min(max(filter.Page.Offset, 0), total)
	end := total
	if filter.Page.Limit > 0 {
		end = min(start+filter.Page.Limit, total)
	}

	result := make([]*models.Study, 0, end-start)
	for _, study := range matched[start:end] {
		result = append(result, cloneStudy(study))
	}

	return result, total, nil
}

// Upsert inserts a study or refreshes the one with the same unit and StudyInstanceUID.
func (s *StudyStore) Upsert(ctx context.Context, study *models.Study) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.units[study.UnitID]; !exists {
		return store.ErrUnitNotFound
	}

	now := s.db.now()
	for _, existing := range s.db.studies {
		if existing.UnitID == study.UnitID && existing.StudyInstanceUID == study.StudyInstanceUID {
			study.ID = existing.ID
			study.CreatedAt = existing.CreatedAt
			study.UpdatedAt = now
			s.db.studies[study.ID] = cloneStudy(study)
			return nil
		}
	}

	study.ID = s.db.id("studies")
	study.CreatedAt = now
	study.UpdatedAt = now
	s.db.studies[study.ID] = cloneStudy(study)

	return nil
}

func matchStudy(study *models.Study, f store.StudyFilter) bool {
	if f.UnitID != nil && study.UnitID != *f.UnitID {
		return false
	}
	if f.PatientName != "" && !strings.Contains(strings.ToLower(study.PatientName), strings.ToLower(f.PatientName)) {
		return false
	}
	if f.Modality != "" && study.Modality != f.Modality {
		return false
	}
	if f.StudyDate != "" && study.StudyDate != f.StudyDate {
		return false
	}
	if f.AccessionNumber != "" && !strings.Contains(study.AccessionNumber, f.AccessionNumber) {
		return false
	}
	return true
}

func cloneStudy(s *models.Study) *models.Study {
	clone := *s
	clone.Metadata = cloneMap(s.Metadata)
	return &clone
}
