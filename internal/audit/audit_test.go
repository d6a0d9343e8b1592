package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/pacsgate/internal/auth"
	httpmiddleware "github.com/wolfeidau/pacsgate/internal/http"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
	"github.com/wolfeidau/pacsgate/internal/store/memory"
)

type failingAudit struct{ calls int }

func (f *failingAudit) Append(ctx context.Context, entry *models.AuditEntry) error {
	f.calls++
	return errors.New("disk on fire")
}

var _ store.AuditStore = (*failingAudit)(nil)

func TestNewEntry(t *testing.T) {
	unitID := int64(3)
	actor := &auth.Principal{UserID: 7, Role: models.RoleAdminMaster, Active: true}
	metadata := map[string]any{"reason": "cleanup"}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("BRT", -3*3600))

	entry := NewEntry(actor, &unitID, models.AuditDeleteUnit, TargetOf(models.TargetUnit, 3),
		Client{IPAddress: "10.0.0.1", UserAgent: "pacsctl"}, metadata, at)

	require.Equal(t, int64(7), entry.UserID)
	require.Equal(t, int64(3), *entry.UnitID)
	require.Equal(t, models.AuditDeleteUnit, entry.Action)
	require.Equal(t, models.TargetUnit, entry.TargetType)
	require.Equal(t, "3", entry.TargetID)
	require.Equal(t, "10.0.0.1", entry.IPAddress)
	require.Equal(t, "pacsctl", entry.UserAgent)
	require.Equal(t, time.UTC, entry.Timestamp.Location())
	require.True(t, at.Equal(entry.Timestamp))

	// the entry owns its own copies
	metadata["reason"] = "changed"
	unitID = 4
	require.Equal(t, "cleanup", entry.Metadata["reason"])
	require.Equal(t, int64(3), *entry.UnitID)
}

func TestNewEntry_emptyMetadata(t *testing.T) {
	entry := NewEntry(nil, nil, models.AuditViewStudy, TargetOf(models.TargetStudy, 1), Client{}, nil, time.Now())
	require.NotNil(t, entry.Metadata)
	require.Nil(t, entry.UnitID)
	require.Zero(t, entry.UserID)
}

func TestRecorder_Record(t *testing.T) {
	stores := memory.NewStores()
	rec := NewRecorder(stores.Audit)

	ctx := httpmiddleware.WithClientMetadata(context.Background(), "203.0.113.9", "browser")
	actor := &auth.Principal{UserID: 2, Role: models.RoleRadiologist, Active: true}
	unitID := int64(5)

	rec.Record(ctx, actor, &unitID, models.AuditViewStudy, TargetOf(models.TargetStudy, 11), nil)

	entries := stores.Audit.(*memory.AuditStore).Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "203.0.113.9", entries[0].IPAddress)
	require.Equal(t, "browser", entries[0].UserAgent)
	require.Equal(t, "11", entries[0].TargetID)
}

func TestRecorder_failureIsSwallowed(t *testing.T) {
	failing := &failingAudit{}
	rec := NewRecorder(failing)

	require.NotPanics(t, func() {
		rec.Record(context.Background(), &auth.Principal{UserID: 1}, nil, models.AuditCreateUnit,
			TargetOf(models.TargetUnit, 1), nil)
	})
	require.Equal(t, 1, failing.calls)
}
