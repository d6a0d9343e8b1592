// Package memory provides in-memory implementations of the store interfaces.
// This implementation is for testing and local development only - data is lost on restart.
package memory

import (
	"maps"
	"sync"
	"time"

	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

// db holds every table behind one lock so cascading deletes stay consistent.
type db struct {
	mu sync.RWMutex

	sequences map[string]int64 // table -> last assigned ID

	units     map[int64]*models.Unit
	users     map[int64]*models.User
	studies   map[int64]*models.Study
	templates map[int64]*models.Template
	reports   map[int64]*models.Report
	audit     []*models.AuditEntry

	now func() time.Time
}

func (d *db) id(table string) int64 {
	d.sequences[table]++
	return d.sequences[table]
}

// NewStores creates a fresh in-memory database and returns its entity stores.
func NewStores() store.Stores {
	d := &db{
		sequences: make(map[string]int64),
		units:     make(map[int64]*models.Unit),
		users:     make(map[int64]*models.User),
		studies:   make(map[int64]*models.Study),
		templates: make(map[int64]*models.Template),
		reports:   make(map[int64]*models.Report),
		now:       time.Now,
	}

	return store.Stores{
		Units:     &UnitStore{db: d},
		Users:     &UserStore{db: d},
		Studies:   &StudyStore{db: d},
		Templates: &TemplateStore{db: d},
		Reports:   &ReportStore{db: d},
		Audit:     &AuditStore{db: d},
	}
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}

func equalUnit(a *int64, b int64) bool {
	return a != nil && *a == b
}
