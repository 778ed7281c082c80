package middleware

import (
	"net/http"

	"github.com/freshkart/orders-backend/api/responses"
	"github.com/freshkart/orders-backend/pkg/auth"
	pkgerrors "github.com/freshkart/orders-backend/pkg/errors"
	"github.com/freshkart/orders-backend/pkg/logger"
)

// RequireCapability rejects requests whose principal lacks the capability.
// Authorization runs against capability grants rather than role names so
// route declarations state what they need, not who they expect.
func RequireCapability(cap auth.Capability, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if !identity.Can(cap) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "missing required capability"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
