// routes/routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/monizb/vmp/authz"
	"github.com/monizb/vmp/handlers"
	"github.com/monizb/vmp/middleware"
	"github.com/monizb/vmp/models"
	"github.com/monizb/vmp/websocket"
)

// Per-operation access rules. Everything under /api additionally passes
// AuthMiddleware first, so AnyRole here means "any signed-in user".
var (
	adminOnly     = authz.Policy{AllowedRoles: []string{models.RoleAdmin}}
	adminSecurity = authz.Policy{AllowedRoles: []string{models.RoleAdmin, models.RoleSecurity}}
	anyUser       = authz.Policy{AllowedRoles: authz.AnyRole}
	teamScoped    = authz.Policy{AllowedRoles: authz.AnyRole, RequireTeamMatch: true}
)

// SetupRoutes builds the full HTTP surface: public health and auth
// endpoints, then the authenticated /api tree.
func SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Public endpoints.
	router.HandleFunc("/status", handlers.Status).Methods("GET")
	router.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
	router.HandleFunc("/api/auth/login", handlers.Login).Methods("POST")
	router.HandleFunc("/api/auth/refresh", handlers.Refresh).Methods("POST")
	router.HandleFunc("/api/auth/logout", handlers.Logout).Methods("POST")

	// Live updates. Registered ahead of the /api subrouter so the upgrade
	// request never enters AuthMiddleware; the ws handler authenticates its
	// own query token.
	router.HandleFunc("/api/ws", websocket.HandleWS).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware)

	// Users. Admin manages accounts; anyone may read their own record.
	api.HandleFunc("/me", middleware.Require(anyUser, handlers.GetMe)).Methods("GET")
	api.HandleFunc("/users", middleware.Require(adminOnly, handlers.ListUsers)).Methods("GET")
	api.HandleFunc("/users", middleware.Require(adminOnly, handlers.CreateUser)).Methods("POST")
	api.HandleFunc("/users/{id}", middleware.Require(adminOnly, handlers.GetUser)).Methods("GET")
	api.HandleFunc("/users/{id}", middleware.Require(adminOnly, handlers.UpdateUser)).Methods("PATCH")
	api.HandleFunc("/users/{id}", middleware.Require(adminOnly, handlers.DeleteUser)).Methods("DELETE")

	// Teams. Admin and Security only, reads included; Dev and ProductOwner
	// see team structure through their scoped application lists.
	api.HandleFunc("/teams", middleware.Require(adminSecurity, handlers.ListTeams)).Methods("GET")
	api.HandleFunc("/teams", middleware.Require(adminSecurity, handlers.CreateTeam)).Methods("POST")
	api.HandleFunc("/teams/platform/{platform}", middleware.Require(adminSecurity, handlers.GetTeamsByPlatform)).Methods("GET")
	api.HandleFunc("/teams/{id}", middleware.Require(adminSecurity, handlers.GetTeam)).Methods("GET")
	api.HandleFunc("/teams/{id}", middleware.Require(adminSecurity, handlers.UpdateTeam)).Methods("PATCH")
	api.HandleFunc("/teams/{id}", middleware.Require(adminSecurity, handlers.DeleteTeam)).Methods("DELETE")

	// Applications. List reads are team scoped for Dev and ProductOwner:
	// a non-privileged caller asking for ?teamId outside their membership
	// gets 403.
	api.HandleFunc("/apps", middleware.Require(teamScoped, handlers.ListApps)).Methods("GET")
	api.HandleFunc("/apps", middleware.Require(adminSecurity, handlers.CreateApp)).Methods("POST")
	api.HandleFunc("/apps/{id}", middleware.Require(anyUser, handlers.GetApp)).Methods("GET")
	api.HandleFunc("/apps/{id}", middleware.Require(adminSecurity, handlers.UpdateApp)).Methods("PATCH")
	api.HandleFunc("/apps/{id}", middleware.Require(adminSecurity, handlers.DeleteApp)).Methods("DELETE")

	// Reports.
	api.HandleFunc("/reports", middleware.Require(anyUser, handlers.ListReports)).Methods("GET")
	api.HandleFunc("/reports", middleware.Require(adminSecurity, handlers.CreateReport)).Methods("POST")
	api.HandleFunc("/reports/import", middleware.Require(adminSecurity, handlers.ImportReport)).Methods("POST")
	api.HandleFunc("/reports/application/{applicationId}", middleware.Require(anyUser, handlers.GetReportsByApplication)).Methods("GET")
	api.HandleFunc("/reports/year/{year}", middleware.Require(anyUser, handlers.GetReportsByYear)).Methods("GET")
	api.HandleFunc("/reports/{id}/reconfirmatory", middleware.Require(anyUser, handlers.GetReconfirmatoryReports)).Methods("GET")
	api.HandleFunc("/reports/{id}/parse", middleware.Require(adminSecurity, handlers.MarkReportParsed)).Methods("PATCH")
	api.HandleFunc("/reports/{id}", middleware.Require(anyUser, handlers.GetReport)).Methods("GET")
	api.HandleFunc("/reports/{id}", middleware.Require(adminSecurity, handlers.UpdateReport)).Methods("PATCH")
	api.HandleFunc("/reports/{id}", middleware.Require(adminSecurity, handlers.DeleteReport)).Methods("DELETE")

	// Vulnerabilities. Specific paths go before /{id} so mux never treats
	// "overdue" as an object id. Updates additionally pass the assignee
	// ownership check inside the handler.
	api.HandleFunc("/vulns", middleware.Require(anyUser, handlers.ListVulns)).Methods("GET")
	api.HandleFunc("/vulns", middleware.Require(adminSecurity, handlers.CreateVuln)).Methods("POST")
	api.HandleFunc("/vulns/bulk", middleware.Require(adminSecurity, handlers.BulkCreateVulns)).Methods("POST")
	api.HandleFunc("/vulns/stats", middleware.Require(anyUser, handlers.GetVulnStats)).Methods("GET")
	api.HandleFunc("/vulns/overdue", middleware.Require(anyUser, handlers.GetOverdueVulns)).Methods("GET")
	api.HandleFunc("/vulns/due-this-week", middleware.Require(anyUser, handlers.GetDueThisWeek)).Methods("GET")
	api.HandleFunc("/vulns/upcoming-retests", middleware.Require(anyUser, handlers.GetUpcomingRetests)).Methods("GET")
	api.HandleFunc("/vulns/application/{applicationId}", middleware.Require(anyUser, handlers.GetVulnsByApplication)).Methods("GET")
	api.HandleFunc("/vulns/report/{reportId}", middleware.Require(anyUser, handlers.GetVulnsByReport)).Methods("GET")
	api.HandleFunc("/vulns/status/{status}", middleware.Require(anyUser, handlers.GetVulnsByStatus)).Methods("GET")
	api.HandleFunc("/vulns/severity/{severity}", middleware.Require(anyUser, handlers.GetVulnsBySeverity)).Methods("GET")
	api.HandleFunc("/vulns/assigned/{userId}", middleware.Require(anyUser, handlers.GetVulnsByAssignee)).Methods("GET")
	api.HandleFunc("/vulns/{id}", middleware.Require(anyUser, handlers.GetVuln)).Methods("GET")
	api.HandleFunc("/vulns/{id}", middleware.Require(anyUser, handlers.UpdateVuln)).Methods("PATCH")
	api.HandleFunc("/vulns/{id}", middleware.Require(adminSecurity, handlers.DeleteVuln)).Methods("DELETE")

	// Saved views. Owner scoping happens in the handlers.
	api.HandleFunc("/views", middleware.Require(anyUser, handlers.ListViews)).Methods("GET")
	api.HandleFunc("/views", middleware.Require(anyUser, handlers.CreateView)).Methods("POST")
	api.HandleFunc("/views/{id}", middleware.Require(anyUser, handlers.GetView)).Methods("GET")
	api.HandleFunc("/views/{id}", middleware.Require(anyUser, handlers.UpdateView)).Methods("PATCH")
	api.HandleFunc("/views/{id}", middleware.Require(anyUser, handlers.DeleteView)).Methods("DELETE")

	// Settings.
	api.HandleFunc("/settings/due-dates", middleware.Require(adminSecurity, handlers.GetDueDateSettings)).Methods("GET")
	api.HandleFunc("/settings/due-dates", middleware.Require(adminOnly, handlers.UpdateDueDateSettings)).Methods("PATCH")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return router
}
