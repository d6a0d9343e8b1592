package store

import (
	"context"

	"github.com/wolfeidau/pacsgate/internal/models"
)

// AuditStore is the append-only audit log. Entries cannot be updated or deleted.
type AuditStore interface {
	// Append stores an entry and assigns its ID.
	Append(ctx context.Context, entry *models.AuditEntry) error
}
