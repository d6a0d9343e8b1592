package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/pacsgate"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Audit trail
	AuditRecordsTotal  metric.Int64Counter
	AuditFailuresTotal metric.Int64Counter

	// Access control
	AccessDeniedTotal metric.Int64Counter

	// PACS bridge
	PACSQueriesTotal       metric.Int64Counter
	PACSQueryFailuresTotal metric.Int64Counter
	PACSQueryDuration      metric.Float64Histogram
	PACSDownloadsTotal     metric.Int64Counter
	StudiesIndexedTotal    metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary.
// Instruments bind to the global meter provider, which is a no-op until InitTelemetry runs.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.AuditRecordsTotal, _ = meter.Int64Counter(
		"pacsgate.audit.records.total",
		metric.WithDescription("Total number of audit entries written"),
		metric.WithUnit("{entry}"),
	)

	m.AuditFailuresTotal, _ = meter.Int64Counter(
		"pacsgate.audit.failures.total",
		metric.WithDescription("Total number of audit entries that could not be written"),
		metric.WithUnit("{entry}"),
	)

	m.AccessDeniedTotal, _ = meter.Int64Counter(
		"pacsgate.access.denied.total",
		metric.WithDescription("Total number of operations rejected by tenant policy"),
		metric.WithUnit("{request}"),
	)

	m.PACSQueriesTotal, _ = meter.Int64Counter(
		"pacsgate.pacs.queries.total",
		metric.WithDescription("Total number of PACS C-FIND queries"),
		metric.WithUnit("{query}"),
	)

	m.PACSQueryFailuresTotal, _ = meter.Int64Counter(
		"pacsgate.pacs.queries.failures.total",
		metric.WithDescription("Total number of failed PACS queries"),
		metric.WithUnit("{query}"),
	)

	m.PACSQueryDuration, _ = meter.Float64Histogram(
		"pacsgate.pacs.queries.duration",
		metric.WithDescription("Duration of PACS query processes"),
		metric.WithUnit("ms"),
	)

	m.PACSDownloadsTotal, _ = meter.Int64Counter(
		"pacsgate.pacs.downloads.total",
		metric.WithDescription("Total number of PACS C-MOVE retrievals"),
		metric.WithUnit("{download}"),
	)

	m.StudiesIndexedTotal, _ = meter.Int64Counter(
		"pacsgate.studies.indexed.total",
		metric.WithDescription("Total number of studies written to the cache from retrieved files"),
		metric.WithUnit("{study}"),
	)

	return m
}
