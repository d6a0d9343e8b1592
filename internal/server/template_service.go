package server

import (
	"context"

	"github.com/wolfeidau/pacsgate/internal/api"
	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/gateway"
)

func (s *Server) registerTemplateService(r *registrar) {
	unary(r, api.TemplateServiceListTemplatesProcedure, s.listTemplates)
	unary(r, api.TemplateServiceGetTemplateProcedure, s.getTemplate)
	unary(r, api.TemplateServiceCreateTemplateProcedure, s.createTemplate)
	unary(r, api.TemplateServiceUpdateTemplateProcedure, s.updateTemplate)
	unary(r, api.TemplateServiceDeleteTemplateProcedure, s.deleteTemplate)
}

func (s *Server) listTemplates(ctx context.Context, p *auth.Principal, _ *api.Empty) (*api.ListTemplatesResponse, error) {
	templates, err := s.gateway.ListTemplates(ctx, p)
	if err != nil {
		return nil, err
	}

	resp := &api.ListTemplatesResponse{Templates: make([]api.Template, 0, len(templates))}
	for _, t := range templates {
		resp.Templates = append(resp.Templates, templateToAPI(t))
	}
	return resp, nil
}

func (s *Server) getTemplate(ctx context.Context, p *auth.Principal, req *api.IDRequest) (*api.TemplateResponse, error) {
	t, err := s.gateway.GetTemplate(ctx, p, req.ID)
	if err != nil {
		return nil, err
	}
	return &api.TemplateResponse{Template: templateToAPI(t)}, nil
}

func (s *Server) createTemplate(ctx context.Context, p *auth.Principal, req *api.CreateTemplateRequest) (*api.TemplateResponse, error) {
	t, err := s.gateway.CreateTemplate(ctx, p, gateway.TemplateInput{
		Name:     req.Name,
		Modality: req.Modality,
		Body:     req.Body,
		Fields:   req.Fields,
		IsGlobal: req.IsGlobal,
	})
	if err != nil {
		return nil, err
	}
	return &api.TemplateResponse{Template: templateToAPI(t)}, nil
}

func (s *Server) updateTemplate(ctx context.Context, p *auth.Principal, req *api.UpdateTemplateRequest) (*api.TemplateResponse, error) {
	t, err := s.gateway.UpdateTemplate(ctx, p, req.ID, gateway.TemplatePatch{
		Name:     req.Name,
		Modality: req.Modality,
		Body:     req.Body,
		Fields:   req.Fields,
		IsActive: req.IsActive,
	})
	if err != nil {
		return nil, err
	}
	return &api.TemplateResponse{Template: templateToAPI(t)}, nil
}

func (s *Server) deleteTemplate(ctx context.Context, p *auth.Principal, req *api.IDRequest) (*api.Empty, error) {
	if err := s.gateway.DeleteTemplate(ctx, p, req.ID); err != nil {
		return nil, err
	}
	return &api.Empty{}, nil
}
