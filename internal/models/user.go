package models

import (
	"fmt"
	"time"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleAdminMaster     Role = "admin_master"     // global administrator, not bound to a unit
	RoleAdminUnit       Role = "admin_unit"       // administrator of a single unit
	RoleRadiologist     Role = "radiologist"      // reads studies and signs reports
	RoleReferringDoctor Role = "referring_doctor" // read only access to studies and reports
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdminMaster, RoleAdminUnit, RoleRadiologist, RoleReferringDoctor:
		return true
	}
	return false
}

// ParseRole converts a string to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User is a person who can sign in. Non master users are assigned to at most one unit.
type User struct {
	ID       int64
	UnitID   *int64 // nil means unassigned
	OpenID   string // subject at the identity provider
	Name     string
	Email    string
	Role     Role
	IsActive bool

	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastSignedIn *time.Time
}
