package server

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
	"github.com/wolfeidau/pacsgate/internal/api"
	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/gateway"
	"github.com/wolfeidau/pacsgate/internal/models"
)

func (s *Server) registerUserService(r *registrar) {
	unary(r, api.UserServiceListUsersProcedure, s.listUsers)
	unary(r, api.UserServiceCreateUserProcedure, s.createUser)
	unary(r, api.UserServiceUpdateUserProcedure, s.updateUser)
	unary(r, api.UserServiceDeleteUserProcedure, s.deleteUser)
}

func parseRole(s string) (models.Role, error) {
	role, err := models.ParseRole(s)
	if err != nil {
		return "", connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("role: %w", err))
	}
	return role, nil
}

func (s *Server) listUsers(ctx context.Context, p *auth.Principal, _ *api.Empty) (*api.ListUsersResponse, error) {
	users, err := s.gateway.ListUsers(ctx, p)
	if err != nil {
		return nil, err
	}

	resp := &api.ListUsersResponse{Users: make([]api.User, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, userToAPI(u))
	}
	return resp, nil
}

func (s *Server) createUser(ctx context.Context, p *auth.Principal, req *api.CreateUserRequest) (*api.UserResponse, error) {
	role, err := parseRole(req.Role)
	if err != nil {
		return nil, err
	}

	u, err := s.gateway.CreateUser(ctx, p, gateway.UserInput{
		Name:   req.Name,
		Email:  req.Email,
		Role:   role,
		UnitID: req.UnitID,
		OpenID: req.OpenID,
	})
	if err != nil {
		return nil, err
	}
	return &api.UserResponse{User: userToAPI(u)}, nil
}

func (s *Server) updateUser(ctx context.Context, p *auth.Principal, req *api.UpdateUserRequest) (*api.UserResponse, error) {
	patch := gateway.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		UnitID:   req.UnitID,
		Unassign: req.Unassign,
		IsActive: req.IsActive,
	}
	if req.Role != nil {
		role, err := parseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		patch.Role = &role
	}

	u, err := s.gateway.UpdateUser(ctx, p, req.ID, patch)
	if err != nil {
		return nil, err
	}
	return &api.UserResponse{User: userToAPI(u)}, nil
}

func (s *Server) deleteUser(ctx context.Context, p *auth.Principal, req *api.IDRequest) (*api.Empty, error) {
	if err := s.gateway.DeleteUser(ctx, p, req.ID); err != nil {
		return nil, err
	}
	return &api.Empty{}, nil
}
