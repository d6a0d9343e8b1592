// Package gateway implements the pacsgate operations.
//
// Every operation receives the request principal explicitly, applies the
// tenant policy from the auth package, performs the store work and records
// an audit entry for each authorized mutation and for sensitive reads.
package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wolfeidau/pacsgate/internal/audit"
	"github.com/wolfeidau/pacsgate/internal/pacs"
	"github.com/wolfeidau/pacsgate/internal/store"
	"github.com/wolfeidau/pacsgate/internal/telemetry"
)

// PACSClient runs C-FIND and C-MOVE against a remote PACS.
type PACSClient interface {
	Query(ctx context.Context, ep pacs.Endpoint, filters pacs.Filters) (*pacs.QueryResult, error)
	Move(ctx context.Context, ep pacs.Endpoint, studyUID string) (*pacs.MoveResult, error)
}

// StudyIndexer summarises the DICOM files of retrieved studies.
type StudyIndexer interface {
	Index(ctx context.Context, dir string) ([]pacs.StudySummary, error)
}

// Service exposes the gateway operations.
type Service struct {
	stores  store.Stores
	audit   *audit.Recorder
	pacs    PACSClient
	indexer StudyIndexer
	metrics *telemetry.Metrics
	now     func() time.Time
}

// New creates a gateway over the given stores. The stores are owned by the caller.
func New(stores store.Stores, recorder *audit.Recorder) *Service {
	return &Service{
		stores:  stores,
		audit:   recorder,
		metrics: telemetry.GetMetrics(),
		now:     time.Now,
	}
}

// WithPACS enables the PACS operations.
func (s *Service) WithPACS(client PACSClient, indexer StudyIndexer) *Service {
	s.pacs = client
	s.indexer = indexer
	return s
}

// denied counts a policy rejection and returns err unchanged.
func (s *Service) denied(ctx context.Context, operation string, err error) error {
	s.metrics.AccessDeniedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
	zerolog.Ctx(ctx).Debug().Str("operation", operation).Err(err).Msg("Access denied")
	return err
}
