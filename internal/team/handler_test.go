package team_test

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
	"github.com/vitrine-cms/vitrine/internal/team"
)

type stubRepo struct {
	members []team.Member
	deleted []string
}

func (s *stubRepo) ListMembers(ctx context.Context) ([]team.Member, error) {
	return s.members, nil
}

func (s *stubRepo) ListActiveMembers(ctx context.Context) ([]team.Member, error) {
	var out []team.Member
	for _, m := range s.members {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubRepo) GetMember(ctx context.Context, id string) (team.Member, error) {
	for _, m := range s.members {
		if m.ID == id {
			return m, nil
		}
	}
	return team.Member{}, shared.ErrNotFound
}

func (s *stubRepo) CreateMember(ctx context.Context, m team.Member) (team.Member, error) {
	m.ID = "tm-1"
	s.members = append(s.members, m)
	return m, nil
}

func (s *stubRepo) UpdateMember(ctx context.Context, m team.Member) (team.Member, error) {
	for i, existing := range s.members {
		if existing.ID == m.ID {
			s.members[i] = m
			return m, nil
		}
	}
	return team.Member{}, shared.ErrNotFound
}

func (s *stubRepo) DeleteMember(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
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
	service := team.NewService(repo, audit)
	guard := authz.Middleware{Resolver: fixedResolver{principal: principal}}
	handler := team.NewHandler(nil, service, guard)
	r := chi.NewRouter()
	r.Route("/api/admin/team", handler.MountRoutes)
	return r
}

func TestEditorCreatesMember(t *testing.T) {
	repo := &stubRepo{}
	audit := &recordingAudit{}
	editor := &authz.Principal{ID: "u-5", Role: authz.RoleEditor, IsActive: true}
	router := newRouter(repo, audit, editor)

	payload, _ := json.Marshal(map[string]any{"name": "Claire Dupont", "role": "Directrice artistique"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/team", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Len(t, repo.members, 1)
	assert.Equal(t, "Claire Dupont", repo.members[0].Name)
	assert.True(t, repo.members[0].IsActive)
	require.Len(t, audit.records, 1)
	assert.Equal(t, "team.create", audit.records[0].Action)
	assert.Equal(t, "u-5", audit.records[0].ActorID)
}

func TestViewerCannotDeleteMember(t *testing.T) {
	repo := &stubRepo{members: []team.Member{{ID: "tm-1", Name: "Claire", IsActive: true}}}
	viewer := &authz.Principal{ID: "u-9", Role: authz.RoleViewer, IsActive: true}
	router := newRouter(repo, &recordingAudit{}, viewer)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/team/tm-1", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Accès refusé. Seuls les administrateurs peuvent supprimer.", body["error"])
	assert.Empty(t, repo.deleted)
}

func TestEditorCannotDeleteMember(t *testing.T) {
	repo := &stubRepo{}
	editor := &authz.Principal{ID: "u-5", Role: authz.RoleEditor, IsActive: true}
	router := newRouter(repo, &recordingAudit{}, editor)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/team/tm-1", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
	assert.Empty(t, repo.deleted)
}

func TestAdminDeletesMember(t *testing.T) {
	repo := &stubRepo{}
	audit := &recordingAudit{}
	admin := &authz.Principal{ID: "a-1", Role: authz.RoleAdmin, IsActive: true}
	router := newRouter(repo, audit, admin)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/team/tm-1", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, []string{"tm-1"}, repo.deleted)
	require.Len(t, audit.records, 1)
	assert.Equal(t, "team.delete", audit.records[0].Action)
}

func TestViewerCannotListMembers(t *testing.T) {
	viewer := &authz.Principal{ID: "u-9", Role: authz.RoleViewer, IsActive: true}
	router := newRouter(&stubRepo{}, &recordingAudit{}, viewer)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/team", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestPublicRouteOnlyReturnsActiveMembers(t *testing.T) {
	repo := &stubRepo{members: []team.Member{
		{ID: "tm-1", Name: "Claire", IsActive: true},
		{ID: "tm-2", Name: "Marc", IsActive: false},
	}}
	service := team.NewService(repo, nil)
	handler := team.NewHandler(nil, service, authz.Middleware{Resolver: fixedResolver{}})
	r := chi.NewRouter()
	r.Route("/api/team", handler.MountPublicRoutes)

	req := httptest.NewRequest(http.MethodGet, "/api/team", nil)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var body struct {
		Success bool          `json:"success"`
		Data    []team.Member `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Claire", body.Data[0].Name)
}
