package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/pacsgate/internal/api"
	"github.com/wolfeidau/pacsgate/internal/audit"
	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/client"
	"github.com/wolfeidau/pacsgate/internal/gateway"
	httpmiddleware "github.com/wolfeidau/pacsgate/internal/http"
	"github.com/wolfeidau/pacsgate/internal/logger"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/pacs"
	"github.com/wolfeidau/pacsgate/internal/store"
	"github.com/wolfeidau/pacsgate/internal/store/memory"
)

type stubPACS struct {
	queryErr error
}

func (s *stubPACS) Query(_ context.Context, ep pacs.Endpoint, _ pacs.Filters) (*pacs.QueryResult, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return &pacs.QueryResult{Studies: []pacs.StudyRecord{{StudyInstanceUID: "1.2.840.1", PatientName: "DOE^JOHN", Modality: "CT"}}}, nil
}

func (s *stubPACS) Move(_ context.Context, _ pacs.Endpoint, uid string) (*pacs.MoveResult, error) {
	return &pacs.MoveResult{StudyInstanceUID: uid, FileCount: 3, Dir: "/nonexistent"}, nil
}

type stubIndexer struct{}

func (stubIndexer) Index(context.Context, string) ([]pacs.StudySummary, error) {
	return nil, nil
}

type testEnv struct {
	url    string
	stores store.Stores
	tokens *auth.Tokens
	users  map[string]*models.User
	pacs   *stubPACS
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	stores := memory.NewStores()
	for _, u := range []*models.Unit{
		{Name: "Unidade Central", Slug: "central", IsActive: true, OrthancPassword: "s3cret", PACSHost: "10.0.0.1", PACSPort: 104, PACSAETitle: "CENTRAL"},
		{Name: "Unidade Norte", Slug: "norte", IsActive: true},
	} {
		require.NoError(t, stores.Units.Create(ctx, u))
	}

	unit1, unit2 := int64(1), int64(2)
	users := map[string]*models.User{
		"master":    {Name: "Master", Email: "master@example.com", Role: models.RoleAdminMaster, IsActive: true},
		"rad1":      {Name: "Rad One", Email: "rad1@example.com", Role: models.RoleRadiologist, UnitID: &unit1, IsActive: true},
		"referring": {Name: "Ref One", Email: "ref1@example.com", Role: models.RoleReferringDoctor, UnitID: &unit1, IsActive: true},
		"inactive":  {Name: "Gone", Email: "gone@example.com", Role: models.RoleRadiologist, UnitID: &unit1, IsActive: false},
	}
	for _, key := range []string{"master", "rad1", "referring", "inactive"} {
		require.NoError(t, stores.Users.Create(ctx, users[key]))
	}

	require.NoError(t, stores.Studies.Upsert(ctx, &models.Study{UnitID: unit1, StudyInstanceUID: "1.2.3.1", PatientName: "DOE^JANE", StudyDate: "20240105", Modality: "CT"}))
	require.NoError(t, stores.Studies.Upsert(ctx, &models.Study{UnitID: unit2, StudyInstanceUID: "1.2.3.2", PatientName: "ROE^RICHARD", StudyDate: "20240106", Modality: "MR"}))

	tokens, err := auth.NewTokens([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)

	stub := &stubPACS{}
	gw := gateway.New(stores, audit.NewRecorder(stores.Audit)).WithPACS(stub, stubIndexer{})

	handler := NewServer(gw).Handler(
		auth.Middleware(tokens, stores.Users),
		logger.NewConnectRequests(zerolog.Nop()),
	)
	ts := httptest.NewServer(httpmiddleware.ClientMetadataMiddleware(false)(handler))
	t.Cleanup(ts.Close)

	return &testEnv{url: ts.URL, stores: stores, tokens: tokens, users: users, pacs: stub}
}

func (e *testEnv) client(t *testing.T, user string) *client.Client {
	t.Helper()
	token := ""
	if u, ok := e.users[user]; ok {
		var err error
		token, err = e.tokens.Issue(u.ID)
		require.NoError(t, err)
	}
	return client.NewWithHTTPClient(http.DefaultClient, client.Config{ServerURL: e.url, Token: token})
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.url + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestAuthentication(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		client *client.Client
	}{
		{name: "no token", client: env.client(t, "")},
		{name: "inactive user", client: env.client(t, "inactive")},
		{name: "garbage token", client: client.NewWithHTTPClient(http.DefaultClient, client.Config{ServerURL: env.url, Token: "not-a-jwt"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.client.ListUnits(ctx)
			require.Error(t, err)
			require.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
		})
	}

	me, err := env.client(t, "rad1").Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "rad1@example.com", me.Email)
	require.Equal(t, "radiologist", me.Role)
}

func TestUnitsRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	units, err := env.client(t, "master").ListUnits(ctx)
	require.NoError(t, err)
	require.Len(t, units, 2)

	units, err = env.client(t, "rad1").ListUnits(ctx)
	require.NoError(t, err)
	require.Len(t, units, 1)
	require.Equal(t, "central", units[0].Slug)

	_, err = env.client(t, "rad1").GetUnit(ctx, 2)
	require.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	_, err = env.client(t, "rad1").CreateUnit(ctx, &api.CreateUnitRequest{Name: "Sul", Slug: "sul"})
	require.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	created, err := env.client(t, "master").CreateUnit(ctx, &api.CreateUnitRequest{Name: "Sul", Slug: "sul"})
	require.NoError(t, err)
	require.Equal(t, "sul", created.Slug)

	_, err = env.client(t, "master").CreateUnit(ctx, &api.CreateUnitRequest{Name: "Sul 2", Slug: "sul"})
	require.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

// The Orthanc password is write only.
func TestUnitPasswordNotReturned(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodPost, env.url+api.UnitServiceGetUnitProcedure, strings.NewReader(`{"id":1}`))
	require.NoError(t, err)
	token, err := env.tokens.Issue(env.users["master"].ID)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Contains(t, string(body), `"slug":"central"`)
	require.NotContains(t, string(body), "s3cret")
	require.NotEmpty(t, resp.Header.Get(logger.RequestIDHeader))
}

func TestStudiesRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rad := env.client(t, "rad1")

	page, err := rad.ListStudies(ctx, &api.ListStudiesRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, "1.2.3.1", page.Studies[0].StudyInstanceUID)

	page, err = env.client(t, "master").ListStudies(ctx, &api.ListStudiesRequest{})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)

	_, err = rad.ListStudies(ctx, &api.ListStudiesRequest{StudyDate: "Jan 5"})
	require.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = rad.GetStudy(ctx, 2)
	require.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	link, err := rad.OpenViewer(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "central", link.UnitSlug)

	entries := env.stores.Audit.(*memory.AuditStore).Entries()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	require.Equal(t, models.AuditOpenViewer, last.Action)
	require.Equal(t, "127.0.0.1", last.IPAddress)
	require.True(t, strings.HasPrefix(last.UserAgent, "connect-go/"), last.UserAgent)
}

func TestReportsRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rad := env.client(t, "rad1")

	_, err := env.client(t, "referring").CreateReport(ctx, &api.CreateReportRequest{StudyID: 1, Body: "x"})
	require.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	report, err := rad.CreateReport(ctx, &api.CreateReportRequest{StudyID: 1, Body: "Findings: none"})
	require.NoError(t, err)
	require.Equal(t, "draft", report.Status)

	signed, err := rad.SignReport(ctx, report.ID)
	require.NoError(t, err)
	require.Equal(t, "signed", signed.Status)
	require.NotNil(t, signed.SignedAt)

	_, err = rad.UpdateReport(ctx, report.ID, "changed")
	require.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	revised, err := rad.ReviseReport(ctx, report.ID, "Addendum")
	require.NoError(t, err)
	require.Equal(t, 2, revised.Version)
	require.Equal(t, &report.ID, revised.PreviousVersionID)

	latest, err := env.client(t, "referring").GetReportByStudy(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, revised.ID, latest.ID)
}

func TestUsersRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	unit := int64(2)

	_, err := env.client(t, "master").CreateUser(ctx, &api.CreateUserRequest{Name: "X", Email: "x@example.com", Role: "superuser", UnitID: &unit})
	require.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	u, err := env.client(t, "master").CreateUser(ctx, &api.CreateUserRequest{Name: "Admin Norte", Email: "admin@norte.example", Role: "admin_unit", UnitID: &unit})
	require.NoError(t, err)
	require.Equal(t, &unit, u.UnitID)

	_, err = env.client(t, "rad1").CreateUser(ctx, &api.CreateUserRequest{Name: "Y", Email: "y@example.com", Role: "radiologist", UnitID: &unit})
	require.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
}

func TestPacsRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.client(t, "rad1").QueryPACS(ctx, &api.PacsQueryRequest{Filters: api.PacsFilters{Modality: "CT"}})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.UnitID)
	require.Equal(t, 1, res.Count)
	require.Equal(t, "DOE^JOHN", res.Studies[0].PatientName)

	_, err = env.client(t, "master").QueryPACS(ctx, &api.PacsQueryRequest{})
	require.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	unit2 := int64(2)
	_, err = env.client(t, "master").QueryPACS(ctx, &api.PacsQueryRequest{UnitID: &unit2})
	require.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	env.pacs.queryErr = &pacs.ProcessError{Op: "query", Kind: pacs.ErrRemote, Reason: "Association rejected"}
	_, err = env.client(t, "rad1").QueryPACS(ctx, &api.PacsQueryRequest{})
	require.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr))
	require.NotContains(t, connectErr.Message(), "Association rejected")

	dl, err := env.client(t, "rad1").DownloadStudy(ctx, &api.PacsDownloadRequest{StudyInstanceUID: "1.2.840.99"})
	require.NoError(t, err)
	require.Equal(t, 3, dl.FileCount)

	_, err = env.client(t, "rad1").DownloadStudy(ctx, &api.PacsDownloadRequest{StudyInstanceUID: "../etc"})
	require.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestToConnectError(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		err  error
		want connect.Code
	}{
		{err: gateway.ErrForbidden, want: connect.CodePermissionDenied},
		{err: gateway.ErrNotFound, want: connect.CodeNotFound},
		{err: gateway.ErrPreconditionFailed, want: connect.CodeFailedPrecondition},
		{err: gateway.ErrInvalidArgument, want: connect.CodeInvalidArgument},
		{err: gateway.ErrUpstreamFailure, want: connect.CodeUnavailable},
		{err: gateway.ErrUnavailable, want: connect.CodeUnavailable},
		{err: context.DeadlineExceeded, want: connect.CodeDeadlineExceeded},
		{err: errors.New("boom"), want: connect.CodeInternal},
		{err: connect.NewError(connect.CodeAborted, errors.New("x")), want: connect.CodeAborted},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			require.Equal(t, tt.want, connect.CodeOf(toConnectError(ctx, tt.err)))
		})
	}

	var connectErr *connect.Error
	require.True(t, errors.As(toConnectError(ctx, errors.New("pq: relation users does not exist")), &connectErr))
	require.Equal(t, "internal error", connectErr.Message())
}
