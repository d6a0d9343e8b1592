package server

import (
	"context"

	"github.com/wolfeidau/pacsgate/internal/api"
	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/pacs"
)

func (s *Server) registerPacsService(r *registrar) {
	unary(r, api.PacsServiceQueryProcedure, s.queryPACS)
	unary(r, api.PacsServiceDownloadProcedure, s.downloadStudy)
}

func (s *Server) queryPACS(ctx context.Context, p *auth.Principal, req *api.PacsQueryRequest) (*api.PacsQueryResponse, error) {
	res, err := s.gateway.QueryPACS(ctx, p, req.UnitID, pacs.Filters{
		PatientName:     req.Filters.PatientName,
		PatientID:       req.Filters.PatientID,
		Modality:        req.Filters.Modality,
		StudyDate:       req.Filters.StudyDate,
		AccessionNumber: req.Filters.AccessionNumber,
	})
	if err != nil {
		return nil, err
	}

	resp := &api.PacsQueryResponse{
		UnitID:  res.UnitID,
		Studies: make([]api.PacsStudy, 0, len(res.Studies)),
		Count:   len(res.Studies),
	}
	for _, st := range res.Studies {
		resp.Studies = append(resp.Studies, pacsStudyToAPI(st))
	}
	return resp, nil
}

func (s *Server) downloadStudy(ctx context.Context, p *auth.Principal, req *api.PacsDownloadRequest) (*api.PacsDownloadResponse, error) {
	res, err := s.gateway.DownloadStudy(ctx, p, req.UnitID, req.StudyInstanceUID)
	if err != nil {
		return nil, err
	}

	return &api.PacsDownloadResponse{
		UnitID:           res.UnitID,
		StudyInstanceUID: res.StudyInstanceUID,
		FileCount:        res.FileCount,
		Studies:          studiesToAPI(res.Studies),
	}, nil
}
