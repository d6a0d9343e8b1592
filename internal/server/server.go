package server

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/wolfeidau/pacsgate/internal/api"
	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/gateway"
)

// Server exposes the gateway operations as Connect procedures.
type Server struct {
	gateway *gateway.Service
}

// NewServer creates a new server backed by the given gateway.
func NewServer(gw *gateway.Service) *Server {
	return &Server{gateway: gw}
}

// Handler returns the HTTP handler for the server. Every procedure is wrapped with
// authenticate, the health check is not.
func (s *Server) Handler(authenticate func(http.Handler) http.Handler, interceptors ...connect.Interceptor) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r := &registrar{
		mux:          mux,
		authenticate: authenticate,
		opts: []connect.HandlerOption{
			connect.WithCodec(api.Codec{}),
			connect.WithInterceptors(interceptors...),
		},
	}

	s.registerAuthService(r)
	s.registerUnitService(r)
	s.registerUserService(r)
	s.registerStudyService(r)
	s.registerTemplateService(r)
	s.registerReportService(r)
	s.registerPacsService(r)

	return mux
}

type registrar struct {
	mux          *http.ServeMux
	authenticate func(http.Handler) http.Handler
	opts         []connect.HandlerOption
}

// handlerFunc is a procedure implementation running on behalf of an authenticated principal.
type handlerFunc[Req, Res any] func(ctx context.Context, p *auth.Principal, req *Req) (*Res, error)

func unary[Req, Res any](r *registrar, procedure string, fn handlerFunc[Req, Res]) {
	var h http.Handler = connect.NewUnaryHandler(
		procedure,
		func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
			p := auth.PrincipalFromContext(ctx)
			if p == nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
			}

			res, err := fn(ctx, p, req.Msg)
			if err != nil {
				return nil, toConnectError(ctx, err)
			}

			return connect.NewResponse(res), nil
		},
		r.opts...,
	)

	if r.authenticate != nil {
		h = r.authenticate(h)
	}

	r.mux.Handle(procedure, h)
}
