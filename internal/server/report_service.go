package server

import (
	"context"

	"github.com/wolfeidau/pacsgate/internal/api"
	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/gateway"
	"github.com/wolfeidau/pacsgate/internal/models"
)

func (s *Server) registerReportService(r *registrar) {
	unary(r, api.ReportServiceGetReportByStudyProcedure, s.getReportByStudy)
	unary(r, api.ReportServiceGetReportProcedure, s.getReport)
	unary(r, api.ReportServiceCreateReportProcedure, s.createReport)
	unary(r, api.ReportServiceUpdateReportProcedure, s.updateReport)
	unary(r, api.ReportServiceSignReportProcedure, s.signReport)
	unary(r, api.ReportServiceReviseReportProcedure, s.reviseReport)
}

func reportResponse(r *models.Report, err error) (*api.ReportResponse, error) {
	if err != nil {
		return nil, err
	}
	return &api.ReportResponse{Report: reportToAPI(r)}, nil
}

func (s *Server) getReportByStudy(ctx context.Context, p *auth.Principal, req *api.GetReportByStudyRequest) (*api.ReportResponse, error) {
	return reportResponse(s.gateway.GetReportForStudy(ctx, p, req.StudyID))
}

func (s *Server) getReport(ctx context.Context, p *auth.Principal, req *api.IDRequest) (*api.ReportResponse, error) {
	return reportResponse(s.gateway.GetReport(ctx, p, req.ID))
}

func (s *Server) createReport(ctx context.Context, p *auth.Principal, req *api.CreateReportRequest) (*api.ReportResponse, error) {
	return reportResponse(s.gateway.CreateReport(ctx, p, gateway.ReportInput{
		StudyID:    req.StudyID,
		TemplateID: req.TemplateID,
		Body:       req.Body,
	}))
}

func (s *Server) updateReport(ctx context.Context, p *auth.Principal, req *api.UpdateReportRequest) (*api.ReportResponse, error) {
	return reportResponse(s.gateway.UpdateReport(ctx, p, req.ID, req.Body))
}

func (s *Server) signReport(ctx context.Context, p *auth.Principal, req *api.IDRequest) (*api.ReportResponse, error) {
	return reportResponse(s.gateway.SignReport(ctx, p, req.ID))
}

func (s *Server) reviseReport(ctx context.Context, p *auth.Principal, req *api.UpdateReportRequest) (*api.ReportResponse, error) {
	return reportResponse(s.gateway.ReviseReport(ctx, p, req.ID, req.Body))
}
