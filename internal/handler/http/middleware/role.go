package middleware

import (
	"net/http"
	"slices"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/user"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// RequireRole admits callers whose access token carries one of roles.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.HandleError(w, user.ErrInsufficientPermissions)
				return
			}

			roleStr, ok := claims["role"].(string)
			if !ok || !slices.Contains(roles, user.Role(roleStr)) {
				response.HandleError(w, user.ErrInsufficientPermissions)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePayrollWriter guards employee, attendance and payroll mutations.
func RequirePayrollWriter(next http.Handler) http.Handler {
	return RequireRole(user.RoleSuperAdmin, user.RoleAdmin, user.RoleHR)(next)
}

func RequireSuperAdmin(next http.Handler) http.Handler {
	return RequireRole(user.RoleSuperAdmin)(next)
}
