// Landgrid | 2026
// middleware.go

package access

import (
	"net/http"

	"github.com/cryptocountry/landgrid/internal/core"
	"github.com/cryptocountry/landgrid/internal/middleware"
	"github.com/ethereum/go-ethereum/common"
)

// RequireRole gates a route on the caller holding a role in the role
// store. Mount after the authenticator.
func RequireRole(svc *Service, role common.Hash) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, ok := middleware.GetAccount(r.Context())
			if !ok {
				core.JSONError(w, core.UnauthorizedError("authentication required"))
				return
			}

			has, err := svc.HasRole(r.Context(), role, account)
			if err != nil {
				core.JSONError(w, err)
				return
			}
			if !has {
				core.JSONError(w, core.ForbiddenError("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
