package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/monizb/vmp/authz"
	"github.com/monizb/vmp/middleware"
	"github.com/monizb/vmp/models"
)

// Matching only; no handler runs, so no database is needed.
func matches(router *mux.Router, method, path string) bool {
	r := httptest.NewRequest(method, path, nil)
	var m mux.RouteMatch
	return router.Match(r, &m) && m.MatchErr == nil
}

func TestRouteSurface(t *testing.T) {
	router := SetupRoutes()

	tests := []struct {
		method string
		path   string
		want   bool
	}{
		{"GET", "/status", true},
		{"GET", "/health", true},
		{"POST", "/api/auth/login", true},
		{"POST", "/api/auth/refresh", true},
		{"POST", "/api/auth/logout", true},
		{"GET", "/api/ws", true},
		{"GET", "/api/me", true},
		{"GET", "/api/teams", true},
		{"GET", "/api/teams/platform/Web", true},
		{"GET", "/api/apps", true},
		{"GET", "/api/vulns", true},
		{"POST", "/api/vulns/bulk", true},
		{"GET", "/api/vulns/overdue", true},
		{"GET", "/api/vulns/due-this-week", true},
		{"GET", "/api/vulns/upcoming-retests", true},
		{"GET", "/api/vulns/stats", true},
		{"GET", "/api/vulns/assigned/507f1f77bcf86cd799439011", true},
		{"PATCH", "/api/reports/507f1f77bcf86cd799439011/parse", true},
		{"GET", "/api/views", true},
		{"GET", "/api/settings/due-dates", true},
		// Old path names must not resurface.
		{"GET", "/api/vulnerabilities", false},
		{"GET", "/api/applications", false},
		{"POST", "/api/reports/507f1f77bcf86cd799439011/parsed", false},
		// Wrong method on a known path.
		{"PUT", "/api/vulns", false},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if got := matches(router, tt.method, tt.path); got != tt.want {
				t.Errorf("match = %v, want %v", got, tt.want)
			}
		})
	}
}

func policyStatus(t *testing.T, policy authz.Policy, role string) int {
	t.Helper()
	handler := middleware.Require(policy, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r := httptest.NewRequest("GET", "/api/teams", nil)
	r = r.WithContext(middleware.WithPrincipal(r.Context(), &authz.Principal{ID: "u1", Role: role}))
	w := httptest.NewRecorder()
	handler(w, r)
	return w.Code
}

// Team routes, reads included, are Admin and Security territory; Dev and
// ProductOwner must not be able to enumerate teams.
func TestTeamPolicyExcludesDevAndProductOwner(t *testing.T) {
	tests := []struct {
		role string
		want int
	}{
		{models.RoleAdmin, http.StatusOK},
		{models.RoleSecurity, http.StatusOK},
		{models.RoleDev, http.StatusForbidden},
		{models.RoleProductOwner, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := policyStatus(t, adminSecurity, tt.role); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}
