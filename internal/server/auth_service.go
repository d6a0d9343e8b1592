package server

import (
	"context"

	"github.com/wolfeidau/pacsgate/internal/api"
	"github.com/wolfeidau/pacsgate/internal/auth"
)

func (s *Server) registerAuthService(r *registrar) {
	unary(r, api.AuthServiceMeProcedure, s.me)
	unary(r, api.AuthServiceSignOutProcedure, s.signOut)
}

func (s *Server) me(ctx context.Context, p *auth.Principal, _ *api.Empty) (*api.MeResponse, error) {
	user, err := s.gateway.Me(ctx, p)
	if err != nil {
		return nil, err
	}
	return &api.MeResponse{User: userToAPI(user)}, nil
}

// signOut only records the event; bearer tokens expire on their own.
func (s *Server) signOut(ctx context.Context, p *auth.Principal, _ *api.Empty) (*api.Empty, error) {
	s.gateway.SignOut(ctx, p)
	return &api.Empty{}, nil
}
