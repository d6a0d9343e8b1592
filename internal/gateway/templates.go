package gateway

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/wolfeidau/pacsgate/internal/audit"
	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

// TemplateInput holds the fields of a new template.
type TemplateInput struct {
	Name     string
	Modality string
	Body     string
	Fields   json.RawMessage
	IsGlobal bool
}

// TemplatePatch holds the template fields to change. Nil fields are left as they are.
type TemplatePatch struct {
	Name     *string
	Modality *string
	Body     *string
	Fields   json.RawMessage
	IsActive *bool
}

func (p TemplatePatch) apply(t *models.Template) []string {
	var changed []string
	if p.Name != nil {
		t.Name = *p.Name
		changed = append(changed, "name")
	}
	if p.Modality != nil {
		t.Modality = *p.Modality
		changed = append(changed, "modality")
	}
	if p.Body != nil {
		t.Body = *p.Body
		changed = append(changed, "body")
	}
	if p.Fields != nil {
		t.Fields = p.Fields
		changed = append(changed, "fields")
	}
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
		changed = append(changed, "isActive")
	}
	return changed
}

func validateTemplate(t *models.Template) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return newError(ErrInvalidArgument, "template name is required")
	}
	if len(t.Fields) > 0 && !json.Valid(t.Fields) {
		return newError(ErrInvalidArgument, "template fields must be valid JSON")
	}
	return nil
}

// ListTemplates returns global templates for admin_master, own unit plus global templates
// for assigned users and nothing for unassigned users.
func (s *Service) ListTemplates(ctx context.Context, p *auth.Principal) ([]*models.Template, error) {
	scope := auth.ResolveScope(p)
	if scope.Empty() {
		return []*models.Template{}, nil
	}

	templates, err := s.stores.Templates.List(ctx, store.TemplateFilter{
		UnitID:        scope.UnitFilter(),
		IncludeGlobal: true,
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	return templates, nil
}

// GetTemplate returns a global template or a unit template the principal may read.
func (s *Service) GetTemplate(ctx context.Context, p *auth.Principal, id int64) (*models.Template, error) {
	tmpl, err := s.stores.Templates.Get(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}

	switch auth.CheckEntity(p, tmpl.UnitID, true) {
	case auth.AccessGranted:
		return tmpl, nil
	default:
		return nil, s.denied(ctx, "templates.get", newError(ErrForbidden, "template %d belongs to another tenant", id))
	}
}

// CreateTemplate creates a template. Unit templates are always assigned to the creator's unit.
func (s *Service) CreateTemplate(ctx context.Context, p *auth.Principal, in TemplateInput) (*models.Template, error) {
	if !auth.AuthorizeGlobalResource(p, in.IsGlobal).Allowed() {
		if in.IsGlobal {
			return nil, s.denied(ctx, "templates.create", newError(ErrForbidden, "only admin_master may create global templates"))
		}
		return nil, s.denied(ctx, "templates.create", newError(ErrForbidden, "unit templates require a unit assignment"))
	}

	tmpl := &models.Template{
		Name:      in.Name,
		Modality:  in.Modality,
		Body:      in.Body,
		Fields:    in.Fields,
		IsGlobal:  in.IsGlobal,
		IsActive:  true,
		CreatedBy: p.UserID,
	}
	if !in.IsGlobal {
		unitID := *p.UnitID
		tmpl.UnitID = &unitID
	}
	if err := validateTemplate(tmpl); err != nil {
		return nil, err
	}

	if err := s.stores.Templates.Create(ctx, tmpl); err != nil {
		return nil, translateStoreError(err)
	}

	s.audit.Record(ctx, p, tmpl.UnitID, models.AuditCreateTemplate, audit.TargetOf(models.TargetTemplate, tmpl.ID), map[string]any{
		"name":     tmpl.Name,
		"isGlobal": tmpl.IsGlobal,
	})

	return tmpl, nil
}

// UpdateTemplate changes a template.
func (s *Service) UpdateTemplate(ctx context.Context, p *auth.Principal, id int64, patch TemplatePatch) (*models.Template, error) {
	tmpl, err := s.writableTemplate(ctx, p, id, "templates.update")
	if err != nil {
		return nil, err
	}

	changed := patch.apply(tmpl)
	if err := validateTemplate(tmpl); err != nil {
		return nil, err
	}

	if err := s.stores.Templates.Update(ctx, tmpl); err != nil {
		return nil, translateStoreError(err)
	}

	s.audit.Record(ctx, p, tmpl.UnitID, models.AuditUpdateTemplate, audit.TargetOf(models.TargetTemplate, tmpl.ID), map[string]any{
		"fields": changed,
	})

	return tmpl, nil
}

// DeleteTemplate removes a template.
func (s *Service) DeleteTemplate(ctx context.Context, p *auth.Principal, id int64) error {
	tmpl, err := s.writableTemplate(ctx, p, id, "templates.delete")
	if err != nil {
		return err
	}

	if err := s.stores.Templates.Delete(ctx, id); err != nil {
		return translateStoreError(err)
	}

	s.audit.Record(ctx, p, tmpl.UnitID, models.AuditDeleteTemplate, audit.TargetOf(models.TargetTemplate, id), map[string]any{
		"name": tmpl.Name,
	})

	return nil
}

// writableTemplate loads a template the principal may change: global templates need
// admin_master, unit templates need tenant write access.
func (s *Service) writableTemplate(ctx context.Context, p *auth.Principal, id int64, operation string) (*models.Template, error) {
	tmpl, err := s.stores.Templates.Get(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}

	var decision auth.Decision
	if tmpl.UnitID == nil {
		decision = auth.AuthorizeGlobalResource(p, true)
	} else {
		decision = auth.AuthorizeTenantWrite(p, *tmpl.UnitID)
	}
	if !decision.Allowed() {
		return nil, s.denied(ctx, operation, newError(ErrForbidden, "may not change template %d", id))
	}
	return tmpl, nil
}
