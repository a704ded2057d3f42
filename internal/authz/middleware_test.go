package authz_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vitrine-cms/vitrine/internal/authz"
)

type stubResolver struct {
	principal *authz.Principal
	err       error
}

func (s stubResolver) Resolve(ctx context.Context, r *http.Request) (*authz.Principal, error) {
	return s.principal, s.err
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func decodeEnvelope(t *testing.T, res *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestGuardUnauthenticated(t *testing.T) {
	m := authz.Middleware{Resolver: stubResolver{}}
	invoked := false
	handler := m.Require(authz.ResourceTeam, authz.ActionRead)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		invoked = true
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/admin/team", nil))

	if invoked {
		t.Fatal("wrapped handler must not run on deny")
	}
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.Code)
	}
	body := decodeEnvelope(t, res)
	if body.Success || body.Error != "Non authentifié" {
		t.Fatalf("body = %+v", body)
	}
}

func TestGuardInsufficientRole(t *testing.T) {
	viewer := &authz.Principal{ID: "u-1", Role: authz.RoleViewer, IsActive: true}
	m := authz.Middleware{Resolver: stubResolver{principal: viewer}}
	invoked := false
	handler := m.Require(authz.ResourceTeam, authz.ActionDelete)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		invoked = true
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodDelete, "/api/admin/team/42", nil))

	if invoked {
		t.Fatal("wrapped handler must not run on deny")
	}
	if res.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", res.Code)
	}
	body := decodeEnvelope(t, res)
	if body.Error != "Accès refusé. Seuls les administrateurs peuvent supprimer." {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestGuardAllowPassesPrincipal(t *testing.T) {
	editor := &authz.Principal{ID: "u-7", Role: authz.RoleEditor, IsActive: true}
	m := authz.Middleware{Resolver: stubResolver{principal: editor}}
	var seen *authz.Principal
	handler := m.Require(authz.ResourceTeam, authz.ActionCreate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = authz.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/api/admin/team", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	if seen == nil || seen.ID != "u-7" {
		t.Fatalf("principal not propagated: %+v", seen)
	}
}

func TestGuardResolverErrorIsUnauthenticated(t *testing.T) {
	// Session provider failures must not surface as 500s.
	m := authz.Middleware{Resolver: stubResolver{err: errors.New("redis: connection refused")}}
	handler := m.Require(authz.ResourceTeam, authz.ActionRead)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/admin/team", nil))

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.Code)
	}
	if body := decodeEnvelope(t, res); body.Error != "Non authentifié" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestGuardWithTarget(t *testing.T) {
	admin := &authz.Principal{ID: "u-1", Role: authz.RoleAdmin, IsActive: true}
	m := authz.Middleware{Resolver: stubResolver{principal: admin}}
	handler := m.RequireWithTarget(authz.ResourceUsers, authz.ActionDelete, func(r *http.Request) string {
		return r.URL.Query().Get("id")
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodDelete, "/api/admin/users?id=u-1", nil))
	if res.Code != http.StatusForbidden {
		t.Fatalf("self delete status = %d, want 403", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodDelete, "/api/admin/users?id=u-2", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("other delete status = %d, want 200", res.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	m := authz.Middleware{Resolver: stubResolver{}}
	handler := m.RequireAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.Code)
	}

	viewer := &authz.Principal{ID: "u-3", Role: authz.RoleViewer, IsActive: true}
	m = authz.Middleware{Resolver: stubResolver{principal: viewer}}
	handler = m.RequireAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
}
