package memory

import (
	"context"

	"github.com/wolfeidau/pacsgate/internal/models"
)

// AuditStore implements store.AuditStore using in-memory storage.
type AuditStore struct {
	db *db
}

// Append stores a copy of the entry.
func (s *AuditStore) Append(ctx context.Context, entry *models.AuditEntry) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	entry.ID = s.db.id("audit_log")
	clone := *entry
	clone.UnitID = cloneInt64(entry.UnitID)
	clone.Metadata = cloneMap(entry.Metadata)
	s.db.audit = append(s.db.audit, &clone)

	return nil
}

// Entries returns a copy of every entry in append order.
func (s *AuditStore) Entries() []models.AuditEntry {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	result := make([]models.AuditEntry, 0, len(s.db.audit))
	for _, entry := range s.db.audit {
		result = append(result, *entry)
	}
	return result
}
