package activity_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-cms/vitrine/internal/activity"
	"github.com/vitrine-cms/vitrine/internal/authz"
)

type windowRepo struct {
	entries    []activity.Entry
	lastLimit  int
	lastOffset int
}

func (r *windowRepo) Window(ctx context.Context, filters activity.TimelineFilters, limit, offset int) ([]activity.Entry, error) {
	r.lastLimit, r.lastOffset = limit, offset
	if offset >= len(r.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.entries) {
		end = len(r.entries)
	}
	return r.entries[offset:end], nil
}

func entries(n int) []activity.Entry {
	out := make([]activity.Entry, n)
	for i := range out {
		out[i] = activity.Entry{ID: fmt.Sprintf("a-%d", i), Action: "team.create", Entity: "team"}
	}
	return out
}

func TestTimelinePaging(t *testing.T) {
	repo := &windowRepo{entries: entries(25)}
	service := activity.NewService(repo)

	first, err := service.Timeline(context.Background(), activity.TimelineFilters{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, first.Entries, 20)
	assert.True(t, first.Paging.HasNext)
	assert.Equal(t, 21, repo.lastLimit)

	second, err := service.Timeline(context.Background(), activity.TimelineFilters{Page: 2, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, second.Entries, 5)
	assert.False(t, second.Paging.HasNext)
	assert.Equal(t, 20, repo.lastOffset)
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &windowRepo{entries: entries(100)}
	service := activity.NewService(repo)

	result, err := service.Timeline(context.Background(), activity.TimelineFilters{PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, result.Entries, 50)
	assert.Equal(t, 50, result.Paging.PageSize)
}

type fixedResolver struct {
	principal *authz.Principal
}

func (f fixedResolver) Resolve(ctx context.Context, r *http.Request) (*authz.Principal, error) {
	return f.principal, nil
}

// The timeline is the one read endpoint that stays ADMIN-only.
func TestTimelineDeniedForEditor(t *testing.T) {
	service := activity.NewService(&windowRepo{})
	editor := &authz.Principal{ID: "u-5", Role: authz.RoleEditor, IsActive: true}
	handler := activity.NewHandler(nil, service, authz.Middleware{Resolver: fixedResolver{principal: editor}})
	r := chi.NewRouter()
	r.Route("/api/admin/activity", handler.MountRoutes)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/activity", nil)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
}
