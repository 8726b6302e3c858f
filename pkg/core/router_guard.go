package core

import (
	"net/http"
	"slices"

	manifest "github.com/joeydtaylor/steeze-print/pkg/manifest"
	"github.com/joeydtaylor/steeze-print/pkg/middleware/auth"
)

// withGuard enforces g. The admin role satisfies both the users and the
// roles lists.
func withGuard(next http.HandlerFunc, a *auth.Middleware, g manifest.Guard) http.HandlerFunc {
	if g.Open() {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		// Without auth wiring a guarded destination cannot be satisfied.
		if a == nil || !a.IsAuthenticated(r.Context()) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		if len(g.Users) > 0 && !slices.ContainsFunc(g.Users, func(u string) bool { return a.IsUser(ctx, u) }) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if len(g.Roles) > 0 && !slices.ContainsFunc(g.Roles, func(n string) bool { return a.IsRole(ctx, auth.Role{Name: n}) }) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}
