package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/monizb/vmp/authz"
	"github.com/monizb/vmp/models"
)

func doRequire(t *testing.T, policy authz.Policy, p *authz.Principal, url string) *httptest.ResponseRecorder {
	t.Helper()

	called := false
	handler := Require(policy, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest("GET", url, nil)
	if p != nil {
		r = r.WithContext(WithPrincipal(r.Context(), p))
	}
	w := httptest.NewRecorder()
	handler(w, r)

	if w.Code == http.StatusOK && !called {
		t.Fatal("200 without the handler running")
	}
	if w.Code != http.StatusOK && called {
		t.Fatal("handler ran despite rejection")
	}
	return w
}

func TestRequireNoPrincipal(t *testing.T) {
	w := doRequire(t, authz.Policy{AllowedRoles: authz.AnyRole}, nil, "/api/teams")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if body["error"] != "Unauthorized" {
		t.Errorf("error label = %q, want Unauthorized", body["error"])
	}
}

func TestRequireRoleDenied(t *testing.T) {
	dev := &authz.Principal{ID: "u1", Role: models.RoleDev}
	w := doRequire(t, authz.Policy{AllowedRoles: []string{models.RoleAdmin}}, dev, "/api/users")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if body["error"] != "Forbidden" {
		t.Errorf("error label = %q, want Forbidden", body["error"])
	}
}

func TestRequireRoleAllowed(t *testing.T) {
	admin := &authz.Principal{ID: "u1", Role: models.RoleAdmin}
	w := doRequire(t, authz.Policy{AllowedRoles: []string{models.RoleAdmin}}, admin, "/api/users")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRequireTeamScopeFromQuery(t *testing.T) {
	policy := authz.Policy{AllowedRoles: authz.AnyRole, RequireTeamMatch: true}
	dev := &authz.Principal{ID: "u1", Role: models.RoleDev, TeamIDs: []string{"team-a"}}

	tests := []struct {
		name string
		url  string
		want int
	}{
		{"member team passes", "/api/applications?teamId=team-a", http.StatusOK},
		{"foreign team denied", "/api/applications?teamId=team-b", http.StatusForbidden},
		{"no team is global scope", "/api/applications", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequire(t, policy, dev, tt.url)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRequireTeamScopeIgnoredForPrivileged(t *testing.T) {
	policy := authz.Policy{AllowedRoles: authz.AnyRole, RequireTeamMatch: true}
	sec := &authz.Principal{ID: "u2", Role: models.RoleSecurity}

	w := doRequire(t, policy, sec, "/api/applications?teamId=any-team")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
