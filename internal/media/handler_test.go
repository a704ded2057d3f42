package media_test

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
	"github.com/vitrine-cms/vitrine/internal/media"
)

type stubRepo struct {
	assets []media.Asset
}

func (s *stubRepo) ListAssets(ctx context.Context, folder string) ([]media.Asset, error) {
	return s.assets, nil
}

func (s *stubRepo) CreateAsset(ctx context.Context, a media.Asset) (media.Asset, error) {
	a.ID = "m-1"
	s.assets = append(s.assets, a)
	return a, nil
}

type fixedResolver struct {
	principal *authz.Principal
}

func (f fixedResolver) Resolve(ctx context.Context, r *http.Request) (*authz.Principal, error) {
	return f.principal, nil
}

func newRouter(repo *stubRepo, principal *authz.Principal) http.Handler {
	service := media.NewService(repo, nil)
	handler := media.NewHandler(nil, service, authz.Middleware{Resolver: fixedResolver{principal: principal}})
	r := chi.NewRouter()
	r.Route("/api/admin/media", handler.MountRoutes)
	return r
}

func TestEditorCreatesAsset(t *testing.T) {
	repo := &stubRepo{}
	editor := &authz.Principal{ID: "u-5", Role: authz.RoleEditor, IsActive: true}
	router := newRouter(repo, editor)

	payload, _ := json.Marshal(map[string]any{
		"url":      "https://img.example.com/v1/photo.jpg",
		"publicId": "vitrine/photo",
		"filename": "photo.jpg",
		"mimeType": "image/jpeg",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/media", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code)
	require.Len(t, repo.assets, 1)
	assert.Equal(t, "photo.jpg", repo.assets[0].Filename)
}

// Media exposes no delete action at all, so the route itself must not exist.
func TestMediaDeleteRouteAbsent(t *testing.T) {
	admin := &authz.Principal{ID: "a-1", Role: authz.RoleAdmin, IsActive: true}
	router := newRouter(&stubRepo{}, admin)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/media/m-1", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.True(t, res.Code == http.StatusNotFound || res.Code == http.StatusMethodNotAllowed)
}

func TestViewerDeniedOnMediaRead(t *testing.T) {
	viewer := &authz.Principal{ID: "u-9", Role: authz.RoleViewer, IsActive: true}
	router := newRouter(&stubRepo{}, viewer)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/media", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
}
