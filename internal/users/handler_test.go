package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/shared"
	"github.com/vitrine-cms/vitrine/internal/users"
)

type stubRepo struct {
	users       map[string]users.User
	auditActors map[string]bool
	deactivated []string
	deleted     []string
	created     []users.User
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: make(map[string]users.User), auditActors: make(map[string]bool)}
}

func (s *stubRepo) ListUsers(ctx context.Context) ([]users.User, error) {
	var out []users.User
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubRepo) GetUser(ctx context.Context, id string) (users.User, error) {
	u, ok := s.users[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return u, nil
}

func (s *stubRepo) CreateUser(ctx context.Context, email, name, passwordHash string, role authz.Role) (users.User, error) {
	u := users.User{ID: "u-" + email, Email: email, Name: name, Role: role, IsActive: true}
	s.users[u.ID] = u
	s.created = append(s.created, u)
	return u, nil
}

func (s *stubRepo) UpdateUser(ctx context.Context, id, name string, role authz.Role, isActive bool) (users.User, error) {
	u, ok := s.users[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	u.Name, u.Role, u.IsActive = name, role, isActive
	s.users[id] = u
	return u, nil
}

func (s *stubRepo) DeactivateUser(ctx context.Context, id string) error {
	s.deactivated = append(s.deactivated, id)
	return nil
}

func (s *stubRepo) DeleteUser(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubRepo) HasAuditReferences(ctx context.Context, id string) (bool, error) {
	return s.auditActors[id], nil
}

type recordingAudit struct {
	records []shared.AuditLog
}

func (a *recordingAudit) TryRecord(ctx context.Context, log shared.AuditLog) {
	a.records = append(a.records, log)
}

type fixedResolver struct {
	principal *authz.Principal
}

func (f fixedResolver) Resolve(ctx context.Context, r *http.Request) (*authz.Principal, error) {
	return f.principal, nil
}

func newRouter(repo *stubRepo, audit *recordingAudit, principal *authz.Principal) http.Handler {
	service := users.NewService(repo, audit)
	guard := authz.Middleware{Resolver: fixedResolver{principal: principal}}
	handler := users.NewHandler(nil, service, guard)
	r := chi.NewRouter()
	r.Route("/api/admin/users", handler.MountRoutes)
	return r
}

func adminPrincipal() *authz.Principal {
	return &authz.Principal{ID: "admin-1", Email: "admin@vitrine.fr", Role: authz.RoleAdmin, IsActive: true}
}

func TestSelfDeleteForbiddenEvenForAdmin(t *testing.T) {
	repo := newStubRepo()
	router := newRouter(repo, &recordingAudit{}, adminPrincipal())

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/admin-1", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Vous ne pouvez pas supprimer votre propre compte", body["error"])
	assert.Empty(t, repo.deleted)
	assert.Empty(t, repo.deactivated)
}

func TestDeleteOtherUserHardDeletesWhenUnreferenced(t *testing.T) {
	repo := newStubRepo()
	repo.users["u-2"] = users.User{ID: "u-2", Email: "e@vitrine.fr", Role: authz.RoleEditor, IsActive: true}
	audit := &recordingAudit{}
	router := newRouter(repo, audit, adminPrincipal())

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/u-2", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, []string{"u-2"}, repo.deleted)
	require.Len(t, audit.records, 1)
	assert.Equal(t, "users.delete", audit.records[0].Action)
	assert.Equal(t, "admin-1", audit.records[0].ActorID)
}

func TestDeleteReferencedUserDeactivatesInstead(t *testing.T) {
	repo := newStubRepo()
	repo.users["u-3"] = users.User{ID: "u-3", Email: "x@vitrine.fr", Role: authz.RoleEditor, IsActive: true}
	repo.auditActors["u-3"] = true
	audit := &recordingAudit{}
	router := newRouter(repo, audit, adminPrincipal())

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/u-3", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Empty(t, repo.deleted)
	assert.Equal(t, []string{"u-3"}, repo.deactivated)
	require.Len(t, audit.records, 1)
	assert.Equal(t, "users.deactivate", audit.records[0].Action)
}

func TestCreateUserDefaultsToEditor(t *testing.T) {
	repo := newStubRepo()
	audit := &recordingAudit{}
	router := newRouter(repo, audit, adminPrincipal())

	payload, _ := json.Marshal(map[string]string{"email": "new@vitrine.fr", "name": "Nouvelle"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/users", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code)
	require.Len(t, repo.created, 1)
	assert.Equal(t, authz.RoleEditor, repo.created[0].Role)
	require.Len(t, audit.records, 1)
	assert.Equal(t, "users.create", audit.records[0].Action)
}

func TestEditorDeniedOnUsers(t *testing.T) {
	repo := newStubRepo()
	editor := &authz.Principal{ID: "u-9", Role: authz.RoleEditor, IsActive: true}
	router := newRouter(repo, &recordingAudit{}, editor)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestUnauthenticatedDeniedOnUsers(t *testing.T) {
	repo := newStubRepo()
	router := newRouter(repo, &recordingAudit{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "Non authentifié", body["error"])
}
