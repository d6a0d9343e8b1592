package auth

import "github.com/wolfeidau/pacsgate/internal/models"

// Decision is the outcome of a policy check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// Allowed reports whether the decision permits the action.
func (d Decision) Allowed() bool {
	return d == Allow
}

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

func decide(ok bool) Decision {
	if ok {
		return Allow
	}
	return Deny
}

// AuthorizeTenantRead allows admin_master everywhere and everyone else only inside their own unit.
func AuthorizeTenantRead(p *Principal, targetUnitID int64) Decision {
	return decide(p.IsMaster() || p.InUnit(targetUnitID))
}

// AuthorizeTenantWrite applies the tenant rule to updates of tenant owned entities.
// Role specific restrictions are layered on top by the caller.
func AuthorizeTenantWrite(p *Principal, targetUnitID int64) Decision {
	return decide(p.IsMaster() || p.InUnit(targetUnitID))
}

// AuthorizeUnitLifecycle guards creating and deleting units, which only admin_master may do.
func AuthorizeUnitLifecycle(p *Principal) Decision {
	return decide(p.IsMaster())
}

// AuthorizeGlobalResource guards creating a template. Global templates need admin_master;
// unit templates need the creator to be assigned to a unit.
func AuthorizeGlobalResource(p *Principal, isGlobal bool) Decision {
	if isGlobal {
		return decide(p.IsMaster())
	}
	return decide(p != nil && p.Active && p.UnitID != nil)
}

// AuthorizeUnitAdmin allows admin_master anywhere and admin_unit inside their own unit.
func AuthorizeUnitAdmin(p *Principal, targetUnitID int64) Decision {
	if p.IsMaster() {
		return Allow
	}
	return decide(p.InUnit(targetUnitID) && p.Role == models.RoleAdminUnit)
}

// ScopeKind says which units a principal may list.
type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopeUnit
	ScopeAll
)

// Scope is the effective tenant scope of a principal for list operations.
type Scope struct {
	Kind   ScopeKind
	UnitID int64 // set when Kind is ScopeUnit
}

// ResolveScope returns All for admin_master, the assigned unit for everyone else,
// and None for unassigned or inactive principals.
func ResolveScope(p *Principal) Scope {
	switch {
	case p.IsMaster():
		return Scope{Kind: ScopeAll}
	case p != nil && p.Active && p.UnitID != nil:
		return Scope{Kind: ScopeUnit, UnitID: *p.UnitID}
	default:
		return Scope{Kind: ScopeNone}
	}
}

// Empty reports whether the scope can never match any row.
func (s Scope) Empty() bool {
	return s.Kind == ScopeNone
}

// UnitFilter returns the unit to filter by, or nil for every unit.
// It must not be called on an empty scope.
func (s Scope) UnitFilter() *int64 {
	if s.Kind != ScopeUnit {
		return nil
	}
	unitID := s.UnitID
	return &unitID
}

// Access is the outcome of looking up a single tenant owned entity.
type Access int

const (
	AccessGranted Access = iota
	AccessForbidden
	AccessNotFound
)

// CheckEntity combines existence and tenant read policy. A nil entityUnitID marks a global
// entity which every active principal may read.
func CheckEntity(p *Principal, entityUnitID *int64, found bool) Access {
	switch {
	case !found:
		return AccessNotFound
	case entityUnitID == nil && p != nil && p.Active:
		return AccessGranted
	case entityUnitID != nil && AuthorizeTenantRead(p, *entityUnitID).Allowed():
		return AccessGranted
	default:
		return AccessForbidden
	}
}
