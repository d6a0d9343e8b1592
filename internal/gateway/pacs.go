package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wolfeidau/pacsgate/internal/audit"
	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/pacs"
)

// PACSQueryResult is the outcome of a C-FIND query.
type PACSQueryResult struct {
	UnitID  int64
	Studies []pacs.StudyRecord
}

// PACSDownloadResult is the outcome of a C-MOVE retrieval.
type PACSDownloadResult struct {
	UnitID           int64
	StudyInstanceUID string
	FileCount        int
	Studies          []*models.Study // cache entries written from the retrieved files
}

// QueryPACS searches the PACS of a unit. Non master principals always query their own unit;
// admin_master must name one.
func (s *Service) QueryPACS(ctx context.Context, p *auth.Principal, unitID *int64, filters pacs.Filters) (*PACSQueryResult, error) {
	unit, err := s.pacsUnit(ctx, p, unitID, "pacs.query")
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Int64("unit_id", unit.ID).Str("pacs_host", unit.PACSHost).Logger()
	metadata := filtersMetadata(filters)
	target := audit.TargetOf(models.TargetPACS, unit.ID)

	started := time.Now()
	res, err := s.pacs.Query(ctx, pacs.EndpointForUnit(unit), filters)
	elapsed := float64(time.Since(started).Milliseconds())

	s.metrics.PACSQueriesTotal.Add(ctx, 1)
	s.metrics.PACSQueryDuration.Record(ctx, elapsed)

	if err != nil {
		s.metrics.PACSQueryFailuresTotal.Add(ctx, 1)
		logger.Error().Err(err).Msg("PACS query failed")

		metadata["error"] = pacs.Reason(err)
		s.audit.Record(ctx, p, &unit.ID, models.AuditPACSQuery, target, metadata)

		return nil, newError(ErrUpstreamFailure, "PACS query failed")
	}

	metadata["pacsHost"] = unit.PACSHost
	metadata["resultsCount"] = len(res.Studies)
	s.audit.Record(ctx, p, &unit.ID, models.AuditPACSQuery, target, metadata)

	return &PACSQueryResult{UnitID: unit.ID, Studies: res.Studies}, nil
}

// DownloadStudy retrieves a study from the PACS of a unit and indexes the received
// files into the unit's study cache.
func (s *Service) DownloadStudy(ctx context.Context, p *auth.Principal, unitID *int64, studyUID string) (*PACSDownloadResult, error) {
	if !pacs.ValidStudyUID(studyUID) {
		return nil, newError(ErrInvalidArgument, "study instance UID %q is not valid", studyUID)
	}

	unit, err := s.pacsUnit(ctx, p, unitID, "pacs.download")
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().
		Int64("unit_id", unit.ID).
		Str("study_instance_uid", studyUID).
		Logger()
	target := audit.Target{Type: models.TargetPACS, ID: studyUID}

	res, err := s.pacs.Move(ctx, pacs.EndpointForUnit(unit), studyUID)
	if err != nil {
		s.metrics.PACSDownloadsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "failed")))
		logger.Error().Err(err).Msg("PACS download failed")

		s.audit.Record(ctx, p, &unit.ID, models.AuditPACSDownload, target, map[string]any{
			"studyInstanceUid": studyUID,
			"error":            pacs.Reason(err),
		})

		return nil, newError(ErrUpstreamFailure, "PACS download failed")
	}
	s.metrics.PACSDownloadsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "ok")))

	metadata := map[string]any{
		"studyInstanceUid": studyUID,
		"fileCount":        res.FileCount,
	}

	studies, err := s.indexStudies(ctx, unit.ID, res.Dir)
	if err != nil {
		logger.Error().Err(err).Str("dir", res.Dir).Msg("Failed to index retrieved study")
		metadata["indexError"] = err.Error()
	}
	metadata["indexed"] = len(studies)

	s.audit.Record(ctx, p, &unit.ID, models.AuditPACSDownload, target, metadata)

	return &PACSDownloadResult{
		UnitID:           unit.ID,
		StudyInstanceUID: studyUID,
		FileCount:        res.FileCount,
		Studies:          studies,
	}, nil
}

// indexStudies upserts a cache entry for every study found in dir. Entries written
// before a failure are returned along with the error.
func (s *Service) indexStudies(ctx context.Context, unitID int64, dir string) ([]*models.Study, error) {
	if s.indexer == nil {
		return []*models.Study{}, nil
	}

	summaries, err := s.indexer.Index(ctx, dir)
	if err != nil {
		return []*models.Study{}, err
	}

	studies := make([]*models.Study, 0, len(summaries))
	for _, sum := range summaries {
		study := &models.Study{
			UnitID:           unitID,
			StudyInstanceUID: sum.StudyInstanceUID,
			PatientName:      sum.PatientName,
			PatientID:        sum.PatientID,
			AccessionNumber:  sum.AccessionNumber,
			StudyDate:        sum.StudyDate,
			Modality:         sum.Modality,
			Description:      sum.Description,
			Metadata: map[string]any{
				"numberOfSeries":    sum.NumberOfSeries,
				"numberOfInstances": sum.NumberOfInstances,
				"source":            "pacs",
			},
		}
		if err := s.stores.Studies.Upsert(ctx, study); err != nil {
			return studies, translateStoreError(err)
		}
		studies = append(studies, study)
	}

	s.metrics.StudiesIndexedTotal.Add(ctx, int64(len(studies)))
	return studies, nil
}

// pacsUnit resolves the unit whose PACS the principal may use and checks it is reachable.
func (s *Service) pacsUnit(ctx context.Context, p *auth.Principal, requested *int64, operation string) (*models.Unit, error) {
	var unitID int64
	switch {
	case p.IsMaster():
		if requested == nil {
			return nil, newError(ErrInvalidArgument, "unitId is required for admin_master")
		}
		unitID = *requested
	case p == nil || !p.Active || p.UnitID == nil:
		return nil, s.denied(ctx, operation, newError(ErrNotFound, "no unit assigned"))
	case requested != nil && *requested != *p.UnitID:
		return nil, s.denied(ctx, operation, newError(ErrForbidden, "unit %d belongs to another tenant", *requested))
	default:
		unitID = *p.UnitID
	}

	unit, err := s.stores.Units.Get(ctx, unitID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if !unit.PACSConfigured() {
		return nil, newError(ErrPreconditionFailed, "unit %d has no PACS connection configured", unit.ID)
	}
	if s.pacs == nil {
		return nil, newError(ErrPreconditionFailed, "PACS bridge is not enabled")
	}
	return unit, nil
}

func filtersMetadata(f pacs.Filters) map[string]any {
	m := map[string]any{}
	add := func(key, v string) {
		if v != "" {
			m[key] = v
		}
	}
	add("patientName", f.PatientName)
	add("patientId", f.PatientID)
	add("modality", f.Modality)
	add("studyDate", f.StudyDate)
	add("accessionNumber", f.AccessionNumber)
	return m
}
