package authz

import (
	"testing"

	"github.com/monizb/vmp/models"
)

func devOnTeam(teams ...string) *Principal {
	return &Principal{ID: "user-dev", Role: models.RoleDev, TeamIDs: teams}
}

func TestAuthorizeRole(t *testing.T) {
	tests := []struct {
		name    string
		p       *Principal
		allowed []string
		wantErr error
	}{
		{"nil principal", nil, AnyRole, ErrUnauthorized},
		{"role in list", &Principal{Role: models.RoleAdmin}, []string{models.RoleAdmin}, nil},
		{"role not in list", &Principal{Role: models.RoleDev}, []string{models.RoleAdmin, models.RoleSecurity}, ErrForbidden},
		{"any role matches dev", &Principal{Role: models.RoleDev}, AnyRole, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := AuthorizeRole(tt.p, tt.allowed); err != tt.wantErr {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthorizeTeamAccess(t *testing.T) {
	tests := []struct {
		name    string
		p       *Principal
		teamID  string
		wantErr error
	}{
		{"nil principal", nil, "t1", ErrUnauthorized},
		{"admin any team", &Principal{Role: models.RoleAdmin}, "t9", nil},
		{"security any team", &Principal{Role: models.RoleSecurity}, "t9", nil},
		{"dev own team", devOnTeam("t1", "t2"), "t1", nil},
		{"dev foreign team", devOnTeam("t1"), "t2", ErrForbidden},
		{"dev global scope", devOnTeam("t1"), "", nil},
		{"product owner foreign team", &Principal{Role: models.RoleProductOwner, TeamIDs: []string{"t3"}}, "t1", ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := AuthorizeTeamAccess(tt.p, tt.teamID); err != tt.wantErr {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthorizeOwnership(t *testing.T) {
	tests := []struct {
		name     string
		p        *Principal
		assignee string
		wantErr  error
	}{
		{"nil principal", nil, "user-dev", ErrUnauthorized},
		{"admin updates anything", &Principal{Role: models.RoleAdmin}, "someone-else", nil},
		{"security updates anything", &Principal{Role: models.RoleSecurity}, "", nil},
		{"dev updates own finding", devOnTeam(), "user-dev", nil},
		{"dev updates foreign finding", devOnTeam(), "someone-else", ErrForbidden},
		{"dev updates unassigned finding", devOnTeam(), "", ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := AuthorizeOwnership(tt.p, tt.assignee); err != tt.wantErr {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	teamScoped := Policy{AllowedRoles: AnyRole, RequireTeamMatch: true}
	adminOnly := Policy{AllowedRoles: []string{models.RoleAdmin}}

	tests := []struct {
		name    string
		p       *Principal
		policy  Policy
		teamID  string
		wantErr error
	}{
		{"role check runs first", devOnTeam("t1"), adminOnly, "t1", ErrForbidden},
		{"team match enforced", devOnTeam("t1"), teamScoped, "t2", ErrForbidden},
		{"team match passes", devOnTeam("t1"), teamScoped, "t1", nil},
		{"no team requirement ignores teamID", devOnTeam("t1"), Policy{AllowedRoles: AnyRole}, "t2", nil},
		{"nil principal is unauthorized not forbidden", nil, adminOnly, "", ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Authorize(tt.p, tt.policy, tt.teamID); err != tt.wantErr {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}
