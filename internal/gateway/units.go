package gateway

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/wolfeidau/pacsgate/internal/audit"
	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// UnitInput holds the fields of a new unit.
type UnitInput struct {
	Name             string
	Slug             string
	OrthancBaseURL   string
	OrthancUser      string
	OrthancPassword  string
	LogoURL          string
	PACSHost         string
	PACSPort         int
	PACSAETitle      string
	PACSLocalAETitle string
}

// UnitPatch holds the unit fields to change. Nil fields are left as they are.
type UnitPatch struct {
	Name             *string
	Slug             *string
	IsActive         *bool
	OrthancBaseURL   *string
	OrthancUser      *string
	OrthancPassword  *string
	LogoURL          *string
	PACSHost         *string
	PACSPort         *int
	PACSAETitle      *string
	PACSLocalAETitle *string
}

func (p UnitPatch) apply(u *models.Unit) []string {
	var changed []string
	set := func(name string, dst *string, v *string) {
		if v != nil {
			*dst = *v
			changed = append(changed, name)
		}
	}
	set("name", &u.Name, p.Name)
	set("slug", &u.Slug, p.Slug)
	set("orthancBaseUrl", &u.OrthancBaseURL, p.OrthancBaseURL)
	set("orthancUser", &u.OrthancUser, p.OrthancUser)
	set("orthancPassword", &u.OrthancPassword, p.OrthancPassword)
	set("logoUrl", &u.LogoURL, p.LogoURL)
	set("pacsHost", &u.PACSHost, p.PACSHost)
	set("pacsAeTitle", &u.PACSAETitle, p.PACSAETitle)
	set("pacsLocalAeTitle", &u.PACSLocalAETitle, p.PACSLocalAETitle)
	if p.PACSPort != nil {
		u.PACSPort = *p.PACSPort
		changed = append(changed, "pacsPort")
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
		changed = append(changed, "isActive")
	}
	return changed
}

func validateUnit(u *models.Unit) error {
	u.Name = strings.TrimSpace(u.Name)
	if u.Name == "" {
		return newError(ErrInvalidArgument, "unit name is required")
	}
	if !slugPattern.MatchString(u.Slug) {
		return newError(ErrInvalidArgument, "unit slug %q must be lower case words separated by hyphens", u.Slug)
	}
	if u.PACSPort < 0 || u.PACSPort > 65535 {
		return newError(ErrInvalidArgument, "pacs port %d out of range", u.PACSPort)
	}
	return nil
}

// ListUnits returns every unit for admin_master, the principal's own unit for assigned
// users and nothing for unassigned users.
func (s *Service) ListUnits(ctx context.Context, p *auth.Principal) ([]*models.Unit, error) {
	scope := auth.ResolveScope(p)
	switch scope.Kind {
	case auth.ScopeAll:
		units, err := s.stores.Units.List(ctx)
		if err != nil {
			return nil, translateStoreError(err)
		}
		return units, nil
	case auth.ScopeUnit:
		unit, err := s.stores.Units.Get(ctx, scope.UnitID)
		if errors.Is(err, store.ErrUnitNotFound) {
			return []*models.Unit{}, nil
		}
		if err != nil {
			return nil, translateStoreError(err)
		}
		return []*models.Unit{unit}, nil
	default:
		return []*models.Unit{}, nil
	}
}

// GetUnit returns a unit the principal may read.
func (s *Service) GetUnit(ctx context.Context, p *auth.Principal, id int64) (*models.Unit, error) {
	unit, err := s.stores.Units.Get(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if !auth.AuthorizeTenantRead(p, unit.ID).Allowed() {
		return nil, s.denied(ctx, "units.get", newError(ErrForbidden, "unit %d belongs to another tenant", id))
	}
	return unit, nil
}

// CreateUnit creates a unit. Only admin_master may create units.
func (s *Service) CreateUnit(ctx context.Context, p *auth.Principal, in UnitInput) (*models.Unit, error) {
	if !auth.AuthorizeUnitLifecycle(p).Allowed() {
		return nil, s.denied(ctx, "units.create", newError(ErrForbidden, "only admin_master may create units"))
	}

	unit := &models.Unit{
		Name:             in.Name,
		Slug:             in.Slug,
		IsActive:         true,
		OrthancBaseURL:   in.OrthancBaseURL,
		OrthancUser:      in.OrthancUser,
		OrthancPassword:  in.OrthancPassword,
		LogoURL:          in.LogoURL,
		PACSHost:         in.PACSHost,
		PACSPort:         in.PACSPort,
		PACSAETitle:      in.PACSAETitle,
		PACSLocalAETitle: in.PACSLocalAETitle,
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}

	if err := s.stores.Units.Create(ctx, unit); err != nil {
		return nil, translateStoreError(err)
	}

	s.audit.Record(ctx, p, &unit.ID, models.AuditCreateUnit, audit.TargetOf(models.TargetUnit, unit.ID), map[string]any{
		"name": unit.Name,
		"slug": unit.Slug,
	})

	return unit, nil
}

// UpdateUnit changes a unit. admin_master may update any unit and admin_unit only their own.
func (s *Service) UpdateUnit(ctx context.Context, p *auth.Principal, id int64, patch UnitPatch) (*models.Unit, error) {
	if !auth.AuthorizeTenantWrite(p, id).Allowed() {
		return nil, s.denied(ctx, "units.update", newError(ErrForbidden, "unit %d belongs to another tenant", id))
	}
	if !auth.AuthorizeUnitAdmin(p, id).Allowed() {
		return nil, s.denied(ctx, "units.update", newError(ErrForbidden, "role %s may not update units", p.Role))
	}

	unit, err := s.stores.Units.Get(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}

	changed := patch.apply(unit)
	if err := validateUnit(unit); err != nil {
		return nil, err
	}

	if err := s.stores.Units.Update(ctx, unit); err != nil {
		return nil, translateStoreError(err)
	}

	s.audit.Record(ctx, p, &unit.ID, models.AuditUpdateUnit, audit.TargetOf(models.TargetUnit, unit.ID), map[string]any{
		"fields": changed,
	})

	return unit, nil
}

// DeleteUnit removes a unit with its studies, templates and reports. Only admin_master may delete units.
func (s *Service) DeleteUnit(ctx context.Context, p *auth.Principal, id int64) error {
	if !auth.AuthorizeUnitLifecycle(p).Allowed() {
		return s.denied(ctx, "units.delete", newError(ErrForbidden, "only admin_master may delete units"))
	}

	unit, err := s.stores.Units.Get(ctx, id)
	if err != nil {
		return translateStoreError(err)
	}

	if err := s.stores.Units.Delete(ctx, id); err != nil {
		return translateStoreError(err)
	}

	s.audit.Record(ctx, p, &id, models.AuditDeleteUnit, audit.TargetOf(models.TargetUnit, id), map[string]any{
		"name": unit.Name,
		"slug": unit.Slug,
	})

	return nil
}
