// middleware/recovery.go
package middleware

import (
	"net/http"

	"github.com/monizb/vmp/logging"
	"github.com/monizb/vmp/utils"
)

// RecoveryMiddleware recovers from panics.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logging.Logger.Errorf("panic recovered: %v", err)
				utils.RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
