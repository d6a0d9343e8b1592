package gateway

import (
	"context"
	"strings"

	"github.com/wolfeidau/pacsgate/internal/audit"
	"github.com/wolfeidau/pacsgate/internal/auth"
	"github.com/wolfeidau/pacsgate/internal/models"
)

// UserInput holds the fields of a new user.
type UserInput struct {
	Name   string
	Email  string
	Role   models.Role
	UnitID *int64
	OpenID string
}

// UserPatch holds the user fields to change. Nil fields are left as they are.
// Unassign clears the unit and takes precedence over UnitID.
type UserPatch struct {
	Name     *string
	Email    *string
	Role     *models.Role
	UnitID   *int64
	Unassign bool
	IsActive *bool
}

func (p UserPatch) apply(u *models.User) []string {
	var changed []string
	if p.Name != nil {
		u.Name = *p.Name
		changed = append(changed, "name")
	}
	if p.Email != nil {
		u.Email = *p.Email
		changed = append(changed, "email")
	}
	if p.Role != nil {
		u.Role = *p.Role
		changed = append(changed, "role")
	}
	switch {
	case p.Unassign:
		u.UnitID = nil
		changed = append(changed, "unitId")
	case p.UnitID != nil:
		unitID := *p.UnitID
		u.UnitID = &unitID
		changed = append(changed, "unitId")
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
		changed = append(changed, "isActive")
	}
	return changed
}

func validateUser(u *models.User) error {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)
	switch {
	case u.Name == "":
		return newError(ErrInvalidArgument, "user name is required")
	case !strings.Contains(u.Email, "@"):
		return newError(ErrInvalidArgument, "user email %q is not valid", u.Email)
	case !u.Role.Valid():
		return newError(ErrInvalidArgument, "unknown role %q", u.Role)
	case u.Role == models.RoleAdminMaster && u.UnitID != nil:
		return newError(ErrInvalidArgument, "admin_master users cannot be assigned to a unit")
	case u.Role != models.RoleAdminMaster && u.UnitID == nil:
		return newError(ErrInvalidArgument, "role %s requires a unit", u.Role)
	}
	return nil
}

// canManageUser reports whether p may create or change a user with the given role and unit.
func canManageUser(p *auth.Principal, role models.Role, unitID *int64) bool {
	if p.IsMaster() {
		return true
	}
	if unitID == nil || role == models.RoleAdminMaster {
		return false
	}
	return auth.AuthorizeUnitAdmin(p, *unitID).Allowed()
}

// ListUsers returns the users within the principal's scope.
func (s *Service) ListUsers(ctx context.Context, p *auth.Principal) ([]*models.User, error) {
	scope := auth.ResolveScope(p)
	if scope.Empty() {
		return []*models.User{}, nil
	}

	users, err := s.stores.Users.List(ctx, scope.UnitFilter())
	if err != nil {
		return nil, translateStoreError(err)
	}
	return users, nil
}

// Me returns the stored user record of the principal.
func (s *Service) Me(ctx context.Context, p *auth.Principal) (*models.User, error) {
	if p == nil {
		return nil, newError(ErrForbidden, "no principal")
	}
	user, err := s.stores.Users.Get(ctx, p.UserID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return user, nil
}

// CreateUser creates a user. admin_master may create any user; admin_unit may create
// non master users in their own unit.
func (s *Service) CreateUser(ctx context.Context, p *auth.Principal, in UserInput) (*models.User, error) {
	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Role:     in.Role,
		OpenID:   in.OpenID,
		IsActive: true,
	}
	if in.UnitID != nil {
		unitID := *in.UnitID
		user.UnitID = &unitID
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}

	if !canManageUser(p, user.Role, user.UnitID) {
		return nil, s.denied(ctx, "users.create", newError(ErrForbidden, "may not create %s users in this unit", user.Role))
	}

	if err := s.ensureUnit(ctx, user.UnitID); err != nil {
		return nil, err
	}

	if err := s.stores.Users.Create(ctx, user); err != nil {
		return nil, translateStoreError(err)
	}

	s.audit.Record(ctx, p, user.UnitID, models.AuditCreateUser, audit.TargetOf(models.TargetUser, user.ID), map[string]any{
		"email": user.Email,
		"role":  string(user.Role),
	})

	return user, nil
}

// UpdateUser changes a user. The principal must be allowed to manage both the
// existing user and the result of the change.
func (s *Service) UpdateUser(ctx context.Context, p *auth.Principal, id int64, patch UserPatch) (*models.User, error) {
	user, err := s.stores.Users.Get(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if !canManageUser(p, user.Role, user.UnitID) {
		return nil, s.denied(ctx, "users.update", newError(ErrForbidden, "may not manage user %d", id))
	}

	changed := patch.apply(user)
	if err := validateUser(user); err != nil {
		return nil, err
	}
	if !canManageUser(p, user.Role, user.UnitID) {
		return nil, s.denied(ctx, "users.update", newError(ErrForbidden, "may not assign %s in this unit", user.Role))
	}
	if user.ID == p.UserID && !user.IsActive {
		return nil, newError(ErrPreconditionFailed, "cannot deactivate yourself")
	}

	if err := s.ensureUnit(ctx, user.UnitID); err != nil {
		return nil, err
	}

	if err := s.stores.Users.Update(ctx, user); err != nil {
		return nil, translateStoreError(err)
	}

	s.audit.Record(ctx, p, user.UnitID, models.AuditUpdateUser, audit.TargetOf(models.TargetUser, user.ID), map[string]any{
		"fields": changed,
	})

	return user, nil
}

// DeleteUser deactivates a user. Users are never removed so audit entries keep resolving.
func (s *Service) DeleteUser(ctx context.Context, p *auth.Principal, id int64) error {
	user, err := s.stores.Users.Get(ctx, id)
	if err != nil {
		return translateStoreError(err)
	}
	if !canManageUser(p, user.Role, user.UnitID) {
		return s.denied(ctx, "users.delete", newError(ErrForbidden, "may not manage user %d", id))
	}
	if user.ID == p.UserID {
		return newError(ErrPreconditionFailed, "cannot delete yourself")
	}

	user.IsActive = false
	if err := s.stores.Users.Update(ctx, user); err != nil {
		return translateStoreError(err)
	}

	s.audit.Record(ctx, p, user.UnitID, models.AuditDeleteUser, audit.TargetOf(models.TargetUser, user.ID), map[string]any{
		"email": user.Email,
	})

	return nil
}

// SignIn marks a user as signed in and records the login. Inactive users cannot sign in.
func (s *Service) SignIn(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.stores.Users.Get(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if !user.IsActive {
		return nil, newError(ErrPreconditionFailed, "user %d is not active", userID)
	}

	now := s.now().UTC()
	user.LastSignedIn = &now
	if err := s.stores.Users.Update(ctx, user); err != nil {
		return nil, translateStoreError(err)
	}

	s.audit.Record(ctx, auth.PrincipalFromUser(user), user.UnitID, models.AuditLogin, audit.TargetOf(models.TargetUser, user.ID), nil)

	return user, nil
}

// SignOut records a logout. Tokens are stateless so nothing else changes.
func (s *Service) SignOut(ctx context.Context, p *auth.Principal) {
	if p == nil {
		return
	}
	s.audit.Record(ctx, p, p.UnitID, models.AuditLogout, audit.TargetOf(models.TargetUser, p.UserID), nil)
}

func (s *Service) ensureUnit(ctx context.Context, unitID *int64) error {
	if unitID == nil {
		return nil
	}
	if _, err := s.stores.Units.Get(ctx, *unitID); err != nil {
		return translateStoreError(err)
	}
	return nil
}
