// Package httpapi is the thin HTTP collaborator over internal/service: a
// go-chi router, role-gated write routes, and status-code mapping for the
// domain's error taxonomy.
package httpapi

import (
	"net/http"
	"strings"
)

// Role represents a caller's access level.
type Role string

const (
	// RoleViewer can read journals, bundles, documents and the change feed.
	RoleViewer Role = "viewer"

	// RoleOperator can additionally register documents/versions and manage
	// journal and bundle membership.
	RoleOperator Role = "operator"
)

// RoleHeader is the header DefaultRoleExtractor reads.
const RoleHeader = "X-User-Role"

// RoleExtractor extracts a Role from an incoming request.
type RoleExtractor func(r *http.Request) Role

// DefaultRoleExtractor reads RoleHeader, defaulting to RoleViewer when
// missing or unrecognized.
func DefaultRoleExtractor(r *http.Request) Role {
	switch strings.ToLower(strings.TrimSpace(r.Header.Get(RoleHeader))) {
	case string(RoleOperator):
		return RoleOperator
	default:
		return RoleViewer
	}
}

// RequireRole returns middleware that rejects requests whose extracted role
// does not satisfy the required one, responding 403.
func RequireRole(role Role, extractor RoleExtractor) func(http.Handler) http.Handler {
	if extractor == nil {
		extractor = DefaultRoleExtractor
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasRole(extractor(r), role) {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasRole(userRole, required Role) bool {
	switch required {
	case RoleViewer:
		return true
	case RoleOperator:
		return userRole == RoleOperator
	default:
		return false
	}
}
