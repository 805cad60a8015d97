// middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/monizb/vmp/authz"
	"github.com/monizb/vmp/database"
	"github.com/monizb/vmp/logging"
	"github.com/monizb/vmp/models"
	"github.com/monizb/vmp/utils"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalFrom returns the authenticated principal stored by
// AuthMiddleware, or nil outside an authenticated request.
func PrincipalFrom(ctx context.Context) *authz.Principal {
	p, _ := ctx.Value(principalKey).(*authz.Principal)
	return p
}

// WithPrincipal injects a principal into a context. Exposed for tests.
func WithPrincipal(ctx context.Context, p *authz.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// AuthMiddleware verifies the bearer access token and resolves the subject
// to a principal backed by the current user document. Missing, malformed,
// unverifiable tokens and deleted subjects are all the same 401 to the
// caller.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// WebSocket upgrades authenticate via query token in the ws handler.
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondWithError(w, http.StatusUnauthorized, "No valid authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateAccessToken(tokenString)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		var user models.User
		err = database.Collection("users").FindOne(r.Context(), bson.M{"_id": userID}).Decode(&user)
		if err != nil {
			logging.Logger.Debugf("auth: subject %s not found: %v", claims.Subject, err)
			utils.RespondWithError(w, http.StatusUnauthorized, "User not found in database")
			return
		}

		principal := &authz.Principal{
			ID:      user.ID.Hex(),
			Email:   user.Email,
			Name:    user.Name,
			Role:    user.Role,
			TeamIDs: user.TeamIDs,
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// Require enforces the role and team parts of a policy before the handler
// runs. The team id, when the policy cares, comes from the teamId path
// variable or query parameter; its absence means a global-scope request.
func Require(policy authz.Policy, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := PrincipalFrom(r.Context())
		if principal == nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		teamID := ""
		if policy.RequireTeamMatch {
			teamID = mux.Vars(r)["teamId"]
			if teamID == "" {
				teamID = r.URL.Query().Get("teamId")
			}
		}

		if err := authz.Authorize(principal, policy, teamID); err != nil {
			if err == authz.ErrUnauthorized {
				utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			utils.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
			return
		}

		handler(w, r)
	}
}
