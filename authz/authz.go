// Package authz holds the access-control rules every API operation runs
// through: role allow-lists, team scoping for non-privileged roles, and
// assignee ownership for finding updates. Checks are pure predicates over
// a Principal resolved once per request; they never touch the database.
package authz

import (
	"errors"

	"github.com/monizb/vmp/models"
)

var (
	// ErrUnauthorized means the request carried no usable identity.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden means the identity is valid but lacks privilege.
	ErrForbidden = errors.New("insufficient permissions")
)

// Principal is the authenticated identity plus the attributes access
// decisions depend on. Immutable for the lifetime of a request.
type Principal struct {
	ID      string
	Email   string
	Name    string
	Role    string
	TeamIDs []string
}

// Policy describes the access rule for one operation. Roles and team
// scope are enforced uniformly in middleware; ownership needs the loaded
// resource and is checked in the handler.
type Policy struct {
	AllowedRoles     []string
	RequireTeamMatch bool
	RequireOwnership bool
}

// AnyRole matches every authenticated principal.
var AnyRole = []string{models.RoleAdmin, models.RoleSecurity, models.RoleDev, models.RoleProductOwner}

// privileged roles see every team and every resource.
func privileged(role string) bool {
	return role == models.RoleAdmin || role == models.RoleSecurity
}

// AuthorizeRole succeeds iff the principal's role is in the allow-list.
func AuthorizeRole(p *Principal, allowedRoles []string) error {
	if p == nil {
		return ErrUnauthorized
	}
	for _, r := range allowedRoles {
		if p.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

// AuthorizeTeamAccess succeeds for Admin and Security unconditionally.
// Other roles must be members of the requested team. An empty teamID is a
// global-scope operation and always passes.
func AuthorizeTeamAccess(p *Principal, teamID string) error {
	if p == nil {
		return ErrUnauthorized
	}
	if privileged(p.Role) || teamID == "" {
		return nil
	}
	for _, id := range p.TeamIDs {
		if id == teamID {
			return nil
		}
	}
	return ErrForbidden
}

// AuthorizeOwnership gates finding updates: Admin and Security may update
// anything, everyone else only findings assigned to them.
func AuthorizeOwnership(p *Principal, assignedToUserID string) error {
	if p == nil {
		return ErrUnauthorized
	}
	if privileged(p.Role) {
		return nil
	}
	if assignedToUserID != "" && assignedToUserID == p.ID {
		return nil
	}
	return ErrForbidden
}

// Authorize evaluates the role and team parts of a policy. Ownership is
// left to the caller because it requires the resource document.
func Authorize(p *Principal, policy Policy, teamID string) error {
	if err := AuthorizeRole(p, policy.AllowedRoles); err != nil {
		return err
	}
	if policy.RequireTeamMatch {
		return AuthorizeTeamAccess(p, teamID)
	}
	return nil
}
