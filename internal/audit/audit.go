// Package audit builds and records audit log entries.
//
// Recording is best effort: a failed append is logged and counted but never
// fails the operation that triggered it.
package audit

import (
	"context"
	"maps"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wolfeidau/pacsgate/internal/auth"
	httpmiddleware "github.com/wolfeidau/pacsgate/internal/http"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
	"github.com/wolfeidau/pacsgate/internal/telemetry"
)

// Target names the entity an action applied to.
type Target struct {
	Type models.TargetType
	ID   string
}

// TargetOf builds a target from a numeric entity ID.
func TargetOf(t models.TargetType, id int64) Target {
	return Target{Type: t, ID: strconv.FormatInt(id, 10)}
}

// Client is the network origin of a request.
type Client struct {
	IPAddress string
	UserAgent string
}

// ClientFromContext reads the client metadata captured by the HTTP middleware.
func ClientFromContext(ctx context.Context) Client {
	return Client{
		IPAddress: httpmiddleware.ClientIPFromContext(ctx),
		UserAgent: httpmiddleware.UserAgentFromContext(ctx),
	}
}

// NewEntry constructs an audit entry. Metadata is copied so later changes by the caller
// do not leak into the record.
func NewEntry(
	actor *auth.Principal,
	unitID *int64,
	action models.AuditAction,
	target Target,
	client Client,
	metadata map[string]any,
	at time.Time,
) *models.AuditEntry {
	entry := &models.AuditEntry{
		Action:     action,
		TargetType: target.Type,
		TargetID:   target.ID,
		IPAddress:  client.IPAddress,
		UserAgent:  client.UserAgent,
		Metadata:   map[string]any{},
		Timestamp:  at.UTC(),
	}
	if actor != nil {
		entry.UserID = actor.UserID
	}
	if unitID != nil {
		id := *unitID
		entry.UnitID = &id
	}
	if metadata != nil {
		entry.Metadata = maps.Clone(metadata)
	}
	return entry
}

// Recorder appends audit entries to the audit store.
type Recorder struct {
	store   store.AuditStore
	metrics *telemetry.Metrics
	now     func() time.Time
}

// NewRecorder creates a recorder writing to s.
func NewRecorder(s store.AuditStore) *Recorder {
	return &Recorder{
		store:   s,
		metrics: telemetry.GetMetrics(),
		now:     time.Now,
	}
}

// Record appends one entry. Errors are logged at warn level and swallowed.
func (r *Recorder) Record(
	ctx context.Context,
	actor *auth.Principal,
	unitID *int64,
	action models.AuditAction,
	target Target,
	metadata map[string]any,
) {
	entry := NewEntry(actor, unitID, action, target, ClientFromContext(ctx), metadata, r.now())
	attrs := metric.WithAttributes(attribute.String("action", string(action)))

	if err := r.store.Append(ctx, entry); err != nil {
		r.metrics.AuditFailuresTotal.Add(ctx, 1, attrs)
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Int64("user_id", entry.UserID).
			Str("action", string(action)).
			Str("target_type", string(target.Type)).
			Str("target_id", target.ID).
			Msg("Failed to record audit entry")
		return
	}

	r.metrics.AuditRecordsTotal.Add(ctx, 1, attrs)
}
