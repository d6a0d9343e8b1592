package server

import (
	"context"

	"github.com/wolfeidau/pacsgate/internal/api"
	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/gateway"
)

func (s *Server) registerUnitService(r *registrar) {
	unary(r, api.UnitServiceListUnitsProcedure, s.listUnits)
	unary(r, api.UnitServiceGetUnitProcedure, s.getUnit)
	unary(r, api.UnitServiceCreateUnitProcedure, s.createUnit)
	unary(r, api.UnitServiceUpdateUnitProcedure, s.updateUnit)
	unary(r, api.UnitServiceDeleteUnitProcedure, s.deleteUnit)
}

func (s *Server) listUnits(ctx context.Context, p *auth.Principal, _ *api.Empty) (*api.ListUnitsResponse, error) {
	units, err := s.gateway.ListUnits(ctx, p)
	if err != nil {
		return nil, err
	}

	resp := &api.ListUnitsResponse{Units: make([]api.Unit, 0, len(units))}
	for _, u := range units {
		resp.Units = append(resp.Units, unitToAPI(u))
	}
	return resp, nil
}

func (s *Server) getUnit(ctx context.Context, p *auth.Principal, req *api.IDRequest) (*api.UnitResponse, error) {
	u, err := s.gateway.GetUnit(ctx, p, req.ID)
	if err != nil {
		return nil, err
	}
	return &api.UnitResponse{Unit: unitToAPI(u)}, nil
}

func (s *Server) createUnit(ctx context.Context, p *auth.Principal, req *api.CreateUnitRequest) (*api.UnitResponse, error) {
	u, err := s.gateway.CreateUnit(ctx, p, gateway.UnitInput{
		Name:             req.Name,
		Slug:             req.Slug,
		OrthancBaseURL:   req.OrthancBaseURL,
		OrthancUser:      req.OrthancUser,
		OrthancPassword:  req.OrthancPassword,
		LogoURL:          req.LogoURL,
		PACSHost:         req.PACSHost,
		PACSPort:         req.PACSPort,
		PACSAETitle:      req.PACSAETitle,
		PACSLocalAETitle: req.PACSLocalAETitle,
	})
	if err != nil {
		return nil, err
	}
	return &api.UnitResponse{Unit: unitToAPI(u)}, nil
}

func (s *Server) updateUnit(ctx context.Context, p *auth.Principal, req *api.UpdateUnitRequest) (*api.UnitResponse, error) {
	u, err := s.gateway.UpdateUnit(ctx, p, req.ID, gateway.UnitPatch{
		Name:             req.Name,
		Slug:             req.Slug,
		IsActive:         req.IsActive,
		OrthancBaseURL:   req.OrthancBaseURL,
		OrthancUser:      req.OrthancUser,
		OrthancPassword:  req.OrthancPassword,
		LogoURL:          req.LogoURL,
		PACSHost:         req.PACSHost,
		PACSPort:         req.PACSPort,
		PACSAETitle:      req.PACSAETitle,
		PACSLocalAETitle: req.PACSLocalAETitle,
	})
	if err != nil {
		return nil, err
	}
	return &api.UnitResponse{Unit: unitToAPI(u)}, nil
}

func (s *Server) deleteUnit(ctx context.Context, p *auth.Principal, req *api.IDRequest) (*api.Empty, error) {
	if err := s.gateway.DeleteUnit(ctx, p, req.ID); err != nil {
		return nil, err
	}
	return &api.Empty{}, nil
}
