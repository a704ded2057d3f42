// Package gate is the coarse path-prefix filter run before any back-office
// page is served. It exists so unauthenticated visitors never receive admin
// markup; final authorization is always re-checked by the API route guards.
package gate

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/vitrine-cms/vitrine/internal/authz"
)

const (
	// LoginPath is where every denial redirects. The gate never renders an
	// error page of its own.
	LoginPath = "/login"
	// LockPath is the unlock page, reachable while a session is locked.
	LockPath = "/admin/locked"

	errForbidden = "forbidden"
	errAuth      = "auth_error"
)

// adminOnlyPrefixes require the ADMIN role.
var adminOnlyPrefixes = []string{
	"/admin/users",
	"/admin/settings",
	"/admin/content",
	"/admin/analytics",
}

// editorPrefixes deny the VIEWER role specifically.
var editorPrefixes = []string{
	"/admin/team",
	"/admin/testimonials",
	"/admin/newsletter",
	"/admin/media",
	"/admin/partners",
}

// Gate guards the /admin page section.
type Gate struct {
	Resolver authz.Resolver
	Logger   *slog.Logger
}

// Middleware applies the coarse rule set by URL prefix.
func (g Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path != "/admin" && !strings.HasPrefix(path, "/admin/") {
			next.ServeHTTP(w, r)
			return
		}
		if path == LockPath {
			next.ServeHTTP(w, r)
			return
		}

		resolver := g.Resolver
		if resolver == nil {
			resolver = authz.SessionResolver{}
		}
		principal, err := resolver.Resolve(r.Context(), r)
		if err != nil {
			if g.Logger != nil {
				g.Logger.Error("gate resolution failed", slog.String("path", path), slog.Any("error", err))
			}
			redirectToLogin(w, r, path, errAuth)
			return
		}
		if principal == nil {
			redirectToLogin(w, r, path, "")
			return
		}

		if matchesPrefix(path, adminOnlyPrefixes) && principal.Role != authz.RoleAdmin {
			redirectToLogin(w, r, path, errForbidden)
			return
		}
		if matchesPrefix(path, editorPrefixes) && principal.Role == authz.RoleViewer {
			redirectToLogin(w, r, path, errForbidden)
			return
		}

		// Remaining admin paths (dashboard, events, messages) are viewable
		// by any authenticated role; action restrictions live in the API
		// route guards.
		next.ServeHTTP(w, r.WithContext(authz.ContextWithPrincipal(r.Context(), principal)))
	})
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, original, errCode string) {
	values := url.Values{}
	values.Set("redirect", original)
	if errCode != "" {
		values.Set("error", errCode)
	}
	http.Redirect(w, r, LoginPath+"?"+values.Encode(), http.StatusSeeOther)
}
