package server

import (
	"context"

	"github.com/wolfeidau/pacsgate/internal/api"
	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/gateway"
)

func (s *Server) registerStudyService(r *registrar) {
	unary(r, api.StudyServiceListStudiesProcedure, s.listStudies)
	unary(r, api.StudyServiceGetStudyProcedure, s.getStudy)
	unary(r, api.StudyServiceOpenViewerProcedure, s.openViewer)
}

func (s *Server) listStudies(ctx context.Context, p *auth.Principal, req *api.ListStudiesRequest) (*api.ListStudiesResponse, error) {
	page, err := s.gateway.ListStudies(ctx, p, gateway.StudyQuery{
		UnitID:          req.UnitID,
		PatientName:     req.PatientName,
		Modality:        req.Modality,
		StudyDate:       req.StudyDate,
		AccessionNumber: req.AccessionNumber,
		Page:            req.Page,
		PageSize:        req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	return &api.ListStudiesResponse{
		Studies:  studiesToAPI(page.Studies),
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

func (s *Server) getStudy(ctx context.Context, p *auth.Principal, req *api.IDRequest) (*api.StudyResponse, error) {
	study, err := s.gateway.GetStudy(ctx, p, req.ID)
	if err != nil {
		return nil, err
	}
	return &api.StudyResponse{Study: studyToAPI(study)}, nil
}

func (s *Server) openViewer(ctx context.Context, p *auth.Principal, req *api.IDRequest) (*api.OpenViewerResponse, error) {
	link, err := s.gateway.OpenViewer(ctx, p, req.ID)
	if err != nil {
		return nil, err
	}
	return &api.OpenViewerResponse{
		ViewerURL:        link.ViewerURL,
		StudyInstanceUID: link.StudyInstanceUID,
		UnitSlug:         link.UnitSlug,
	}, nil
}
