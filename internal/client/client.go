package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/wolfeidau/pacsgate/internal/api"
)

// Config holds common client configuration
type Config struct {
	ServerURL string
	Token     string
	Timeout   time.Duration
	Debug     bool
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		ServerURL: "http://localhost:8080",
		Timeout:   5 * time.Minute,
		Debug:     false,
	}
}

// Client calls the pacsgate procedures.
type Client struct {
	httpClient connect.HTTPClient
	baseURL    string
	opts       []connect.ClientOption
}

// New creates a client. Extra interceptors run after the bearer token is attached.
func New(config Config, interceptors ...connect.Interceptor) *Client {
	return NewWithHTTPClient(&http.Client{Timeout: config.Timeout}, config, interceptors...)
}

// NewWithHTTPClient creates a client using the given HTTP client.
func NewWithHTTPClient(httpClient connect.HTTPClient, config Config, interceptors ...connect.Interceptor) *Client {
	all := make([]connect.Interceptor, 0, len(interceptors)+1)
	if config.Token != "" {
		all = append(all, NewTokenInterceptor(config.Token))
	}
	all = append(all, interceptors...)

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(config.ServerURL, "/"),
		opts: []connect.ClientOption{
			connect.WithCodec(api.Codec{}),
			connect.WithInterceptors(all...),
		},
	}
}

func call[Req, Res any](ctx context.Context, c *Client, procedure string, req *Req) (*Res, error) {
	cl := connect.NewClient[Req, Res](c.httpClient, c.baseURL+procedure, c.opts...)
	resp, err := cl.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *Client) Me(ctx context.Context) (*api.User, error) {
	resp, err := call[api.Empty, api.MeResponse](ctx, c, api.AuthServiceMeProcedure, &api.Empty{})
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	_, err := call[api.Empty, api.Empty](ctx, c, api.AuthServiceSignOutProcedure, &api.Empty{})
	return err
}

func (c *Client) ListUnits(ctx context.Context) ([]api.Unit, error) {
	resp, err := call[api.Empty, api.ListUnitsResponse](ctx, c, api.UnitServiceListUnitsProcedure, &api.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Units, nil
}

func (c *Client) GetUnit(ctx context.Context, id int64) (*api.Unit, error) {
	resp, err := call[api.IDRequest, api.UnitResponse](ctx, c, api.UnitServiceGetUnitProcedure, &api.IDRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return &resp.Unit, nil
}

func (c *Client) CreateUnit(ctx context.Context, req *api.CreateUnitRequest) (*api.Unit, error) {
	resp, err := call[api.CreateUnitRequest, api.UnitResponse](ctx, c, api.UnitServiceCreateUnitProcedure, req)
	if err != nil {
		return nil, err
	}
	return &resp.Unit, nil
}

func (c *Client) UpdateUnit(ctx context.Context, req *api.UpdateUnitRequest) (*api.Unit, error) {
	resp, err := call[api.UpdateUnitRequest, api.UnitResponse](ctx, c, api.UnitServiceUpdateUnitProcedure, req)
	if err != nil {
		return nil, err
	}
	return &resp.Unit, nil
}

func (c *Client) DeleteUnit(ctx context.Context, id int64) error {
	_, err := call[api.IDRequest, api.Empty](ctx, c, api.UnitServiceDeleteUnitProcedure, &api.IDRequest{ID: id})
	return err
}

func (c *Client) ListUsers(ctx context.Context) ([]api.User, error) {
	resp, err := call[api.Empty, api.ListUsersResponse](ctx, c, api.UserServiceListUsersProcedure, &api.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *Client) CreateUser(ctx context.Context, req *api.CreateUserRequest) (*api.User, error) {
	resp, err := call[api.CreateUserRequest, api.UserResponse](ctx, c, api.UserServiceCreateUserProcedure, req)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) UpdateUser(ctx context.Context, req *api.UpdateUserRequest) (*api.User, error) {
	resp, err := call[api.UpdateUserRequest, api.UserResponse](ctx, c, api.UserServiceUpdateUserProcedure, req)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	_, err := call[api.IDRequest, api.Empty](ctx, c, api.UserServiceDeleteUserProcedure, &api.IDRequest{ID: id})
	return err
}

func (c *Client) ListStudies(ctx context.Context, req *api.ListStudiesRequest) (*api.ListStudiesResponse, error) {
	return call[api.ListStudiesRequest, api.ListStudiesResponse](ctx, c, api.StudyServiceListStudiesProcedure, req)
}

func (c *Client) GetStudy(ctx context.Context, id int64) (*api.Study, error) {
	resp, err := call[api.IDRequest, api.StudyResponse](ctx, c, api.StudyServiceGetStudyProcedure, &api.IDRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return &resp.Study, nil
}

func (c *Client) OpenViewer(ctx context.Context, id int64) (*api.OpenViewerResponse, error) {
	return call[api.IDRequest, api.OpenViewerResponse](ctx, c, api.StudyServiceOpenViewerProcedure, &api.IDRequest{ID: id})
}

func (c *Client) ListTemplates(ctx context.Context) ([]api.Template, error) {
	resp, err := call[api.Empty, api.ListTemplatesResponse](ctx, c, api.TemplateServiceListTemplatesProcedure, &api.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Templates, nil
}

func (c *Client) GetTemplate(ctx context.Context, id int64) (*api.Template, error) {
	resp, err := call[api.IDRequest, api.TemplateResponse](ctx, c, api.TemplateServiceGetTemplateProcedure, &api.IDRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return &resp.Template, nil
}

func (c *Client) CreateTemplate(ctx context.Context, req *api.CreateTemplateRequest) (*api.Template, error) {
	resp, err := call[api.CreateTemplateRequest, api.TemplateResponse](ctx, c, api.TemplateServiceCreateTemplateProcedure, req)
	if err != nil {
		return nil, err
	}
	return &resp.Template, nil
}

func (c *Client) UpdateTemplate(ctx context.Context, req *api.UpdateTemplateRequest) (*api.Template, error) {
	resp, err := call[api.UpdateTemplateRequest, api.TemplateResponse](ctx, c, api.TemplateServiceUpdateTemplateProcedure, req)
	if err != nil {
		return nil, err
	}
	return &resp.Template, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, id int64) error {
	_, err := call[api.IDRequest, api.Empty](ctx, c, api.TemplateServiceDeleteTemplateProcedure, &api.IDRequest{ID: id})
	return err
}

func (c *Client) GetReportByStudy(ctx context.Context, studyID int64) (*api.Report, error) {
	return c.report(ctx, api.ReportServiceGetReportByStudyProcedure, &api.GetReportByStudyRequest{StudyID: studyID})
}

func (c *Client) GetReport(ctx context.Context, id int64) (*api.Report, error) {
	return c.reportByID(ctx, api.ReportServiceGetReportProcedure, id)
}

func (c *Client) CreateReport(ctx context.Context, req *api.CreateReportRequest) (*api.Report, error) {
	resp, err := call[api.CreateReportRequest, api.ReportResponse](ctx, c, api.ReportServiceCreateReportProcedure, req)
	if err != nil {
		return nil, err
	}
	return &resp.Report, nil
}

func (c *Client) UpdateReport(ctx context.Context, id int64, body string) (*api.Report, error) {
	return c.reportBody(ctx, api.ReportServiceUpdateReportProcedure, id, body)
}

func (c *Client) SignReport(ctx context.Context, id int64) (*api.Report, error) {
	return c.reportByID(ctx, api.ReportServiceSignReportProcedure, id)
}

func (c *Client) ReviseReport(ctx context.Context, id int64, body string) (*api.Report, error) {
	return c.reportBody(ctx, api.ReportServiceReviseReportProcedure, id, body)
}

func (c *Client) report(ctx context.Context, procedure string, req *api.GetReportByStudyRequest) (*api.Report, error) {
	resp, err := call[api.GetReportByStudyRequest, api.ReportResponse](ctx, c, procedure, req)
	if err != nil {
		return nil, err
	}
	return &resp.Report, nil
}

func (c *Client) reportByID(ctx context.Context, procedure string, id int64) (*api.Report, error) {
	resp, err := call[api.IDRequest, api.ReportResponse](ctx, c, procedure, &api.IDRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return &resp.Report, nil
}

func (c *Client) reportBody(ctx context.Context, procedure string, id int64, body string) (*api.Report, error) {
	resp, err := call[api.UpdateReportRequest, api.ReportResponse](ctx, c, procedure, &api.UpdateReportRequest{ID: id, Body: body})
	if err != nil {
		return nil, err
	}
	return &resp.Report, nil
}

func (c *Client) QueryPACS(ctx context.Context, req *api.PacsQueryRequest) (*api.PacsQueryResponse, error) {
	return call[api.PacsQueryRequest, api.PacsQueryResponse](ctx, c, api.PacsServiceQueryProcedure, req)
}

func (c *Client) DownloadStudy(ctx context.Context, req *api.PacsDownloadRequest) (*api.PacsDownloadResponse, error) {
	return call[api.PacsDownloadRequest, api.PacsDownloadResponse](ctx, c, api.PacsServiceDownloadProcedure, req)
}
