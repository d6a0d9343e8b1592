package gateway

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/wolfeidau/pacsgate/internal/audit"
	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var studyDatePattern = regexp.MustCompile(`^\d{8}$`)

// StudyQuery filters a study listing.
type StudyQuery struct {
	UnitID          *int64 // narrows admin_master listings; other units yield an empty page for everyone else
	PatientName     string
	Modality        string
	StudyDate       string // YYYY-MM-DD or YYYYMMDD
	AccessionNumber string
	Page            int // 1 based
	PageSize        int
}

// StudyPage is one page of a study listing.
type StudyPage struct {
	Studies  []*models.Study
	Total    int
	Page     int
	PageSize int
}

// ViewerLink locates a study in the browser viewer.
type ViewerLink struct {
	ViewerURL        string
	StudyInstanceUID string
	UnitSlug         string
}

func normalizeStudyDate(d string) (string, error) {
	if d == "" {
		return "", nil
	}
	compact := strings.ReplaceAll(d, "-", "")
	if !studyDatePattern.MatchString(compact) {
		return "", newError(ErrInvalidArgument, "study date %q must be YYYY-MM-DD", d)
	}
	return compact, nil
}

func pageBounds(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)
	// keep (page-1)*pageSize within int
	return min(page, math.MaxInt/pageSize), pageSize
}

// ListStudies returns one page of cached studies within the principal's scope.
func (s *Service) ListStudies(ctx context.Context, p *auth.Principal, q StudyQuery) (*StudyPage, error) {
	page, pageSize := pageBounds(q.Page, q.PageSize)
	empty := &StudyPage{Studies: []*models.Study{}, Page: page, PageSize: pageSize}

	studyDate, err := normalizeStudyDate(q.StudyDate)
	if err != nil {
		return nil, err
	}

	filter := store.StudyFilter{
		PatientName:     strings.TrimSpace(q.PatientName),
		Modality:        strings.TrimSpace(q.Modality),
		StudyDate:       studyDate,
		AccessionNumber: strings.TrimSpace(q.AccessionNumber),
		Page:            store.Page{Limit: pageSize, Offset: (page - 1) * pageSize},
	}

	scope := auth.ResolveScope(p)
	switch scope.Kind {
	case auth.ScopeAll:
		filter.UnitID = q.UnitID
	case auth.ScopeUnit:
		if q.UnitID != nil && *q.UnitID != scope.UnitID {
			return empty, nil
		}
		filter.UnitID = scope.UnitFilter()
	default:
		return empty, nil
	}

	studies, total, err := s.stores.Studies.List(ctx, filter)
	if err != nil {
		return nil, translateStoreError(err)
	}

	return &StudyPage{Studies: studies, Total: total, Page: page, PageSize: pageSize}, nil
}

// GetStudy returns a study and records the view.
func (s *Service) GetStudy(ctx context.Context, p *auth.Principal, id int64) (*models.Study, error) {
	study, err := s.visibleStudy(ctx, p, id, "studies.get")
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, p, &study.UnitID, models.AuditViewStudy, audit.TargetOf(models.TargetStudy, study.ID), map[string]any{
		"studyInstanceUid": study.StudyInstanceUID,
	})

	return study, nil
}

// OpenViewer returns the viewer location of a study and records the access.
func (s *Service) OpenViewer(ctx context.Context, p *auth.Principal, id int64) (*ViewerLink, error) {
	study, err := s.visibleStudy(ctx, p, id, "studies.openViewer")
	if err != nil {
		return nil, err
	}

	unit, err := s.stores.Units.Get(ctx, study.UnitID)
	if err != nil {
		return nil, translateStoreError(err)
	}

	s.audit.Record(ctx, p, &study.UnitID, models.AuditOpenViewer, audit.TargetOf(models.TargetStudy, study.ID), map[string]any{
		"studyInstanceUid": study.StudyInstanceUID,
	})

	return &ViewerLink{
		ViewerURL:        fmt.Sprintf("/viewer/%d", study.ID),
		StudyInstanceUID: study.StudyInstanceUID,
		UnitSlug:         unit.Slug,
	}, nil
}

// visibleStudy loads a study, reporting studies outside the principal's scope as not found.
func (s *Service) visibleStudy(ctx context.Context, p *auth.Principal, id int64, operation string) (*models.Study, error) {
	study, err := s.stores.Studies.Get(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if !auth.AuthorizeTenantRead(p, study.UnitID).Allowed() {
		return nil, s.denied(ctx, operation, newError(ErrNotFound, "study %d", id))
	}
	return study, nil
}
