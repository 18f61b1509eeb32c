package middleware

import (
	"net/http"

	"etala-reporting-system/pkg/response"
)

// RequireRole ensures the authenticated user has one of the allowed roles.
// Used to keep report listing and case-handling endpoints off-limits to
// ordinary accounts.
func RequireRole(allowedRoles ...string) func(http.HandlerFunc) http.HandlerFunc {
	allowed := make(map[string]bool, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = true
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromRequest(r)
			if !ok {
				response.Error(w, http.StatusUnauthorized, "Unauthorized", "")
				return
			}

			if !allowed[claims.Role] {
				response.Error(w, http.StatusForbidden, "Forbidden", "Insufficient role")
				return
			}

			next(w, r)
		}
	}
}

// RequireOffice ensures an officer account belongs to the named office.
// Admin accounts are not tied to one office and pass regardless.
func RequireOffice(office string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromRequest(r)
			if !ok {
				response.Error(w, http.StatusUnauthorized, "Unauthorized", "")
				return
			}

			if claims.Role != "admin" && claims.Office != office {
				response.Error(w, http.StatusForbidden, "Forbidden", "Wrong office")
				return
			}

			next(w, r)
		}
	}
}
