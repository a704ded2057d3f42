package authz

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vitrine-cms/vitrine/internal/platform/httpx"
	"github.com/vitrine-cms/vitrine/internal/shared"
)

// Resolver turns an incoming request into a Principal. A nil principal with
// a nil error means the request is anonymous.
type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) (*Principal, error)
}

// SessionResolver resolves the principal from the session snapshot without
// touching the database. Activity status is taken at face value; the login
// and unlock flows are where isActive is verified against storage.
type SessionResolver struct{}

// Resolve implements Resolver.
func (SessionResolver) Resolve(ctx context.Context, r *http.Request) (*Principal, error) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil || sess.UserID() == "" {
		return nil, nil
	}
	return &Principal{
		ID:       sess.UserID(),
		Role:     ParseRole(sess.Role()),
		IsActive: true,
	}, nil
}

type principalContextKey struct{}

// ContextWithPrincipal stores the resolved principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal placed by the guard. Handlers
// receive the principal this way and never re-resolve the session.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// DenialRecorder counts denied authorization attempts, typically backed by
// Prometheus.
type DenialRecorder interface {
	RecordDenial(resource, action string)
}

// Middleware wires the authorization policy into chi routes.
type Middleware struct {
	Resolver Resolver
	Logger   *slog.Logger
	Denials  DenialRecorder
}

// Require guards a route with the policy rule for (resource, action).
func (m Middleware) Require(resource ResourceClass, action Action) func(http.Handler) http.Handler {
	return m.guard(resource, action, nil)
}

// RequireWithTarget guards a route and feeds the target record ID into the
// policy so identity overrides apply.
func (m Middleware) RequireWithTarget(resource ResourceClass, action Action, target func(*http.Request) string) func(http.Handler) http.Handler {
	return m.guard(resource, action, target)
}

// RequireAuth only demands a valid authenticated principal, leaving
// fine-grained checks to the handler.
func (m Middleware) RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := m.resolve(r)
			if p == nil {
				httpx.Fail(w, http.StatusUnauthorized, MsgUnauthenticated)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
		})
	}
}

func (m Middleware) guard(resource ResourceClass, action Action, target func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := m.resolve(r)
			var opts Options
			if target != nil {
				opts.TargetID = target(r)
			}
			decision := Authorize(p, resource, action, opts)
			if !decision.Allowed {
				if m.Denials != nil {
					m.Denials.RecordDenial(string(resource), string(action))
				}
				status := http.StatusForbidden
				if decision.Reason == ReasonUnauthenticated {
					status = http.StatusUnauthorized
				}
				httpx.Fail(w, status, decision.Message)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
		})
	}
}

// resolve maps resolver failures onto anonymous access. Provider internals
// never leak to the caller; the error is logged for operability.
func (m Middleware) resolve(r *http.Request) *Principal {
	resolver := m.Resolver
	if resolver == nil {
		resolver = SessionResolver{}
	}
	p, err := resolver.Resolve(r.Context(), r)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("principal resolution failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		}
		return nil
	}
	return p
}
