package auth

import (
	"context"

	"connectrpc.com/authn"
	"github.com/wolfeidau/pacsgate/internal/models"
)

// Principal is the authenticated user a request runs on behalf of.
// It is resolved from the user store on every request so role and unit changes apply immediately.
type Principal struct {
	UserID int64
	Name   string
	Email  string
	Role   models.Role
	UnitID *int64 // nil when unassigned
	Active bool
}

// PrincipalFromUser builds a principal from a stored user.
func PrincipalFromUser(u *models.User) *Principal {
	p := &Principal{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Active: u.IsActive,
	}
	if u.UnitID != nil {
		unitID := *u.UnitID
		p.UnitID = &unitID
	}
	return p
}

// IsMaster reports whether the principal is a global administrator.
func (p *Principal) IsMaster() bool {
	return p != nil && p.Active && p.Role == models.RoleAdminMaster
}

// InUnit reports whether the principal is assigned to the given unit.
func (p *Principal) InUnit(unitID int64) bool {
	return p != nil && p.Active && p.UnitID != nil && *p.UnitID == unitID
}

// PrincipalFromContext extracts the authenticated principal from the request context.
// Returns nil if no principal is present (unauthenticated request).
func PrincipalFromContext(ctx context.Context) *Principal {
	principal, _ := authn.GetInfo(ctx).(*Principal)
	return principal
}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return authn.SetInfo(ctx, p)
}
