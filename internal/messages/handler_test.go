package messages_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/messages"
	"github.com/vitrine-cms/vitrine/internal/shared"
	"github.com/vitrine-cms/vitrine/jobs"
)

type stubRepo struct {
	items []messages.Message
}

func (s *stubRepo) ListMessages(ctx context.Context, status messages.Status) ([]messages.Message, error) {
	return s.items, nil
}

func (s *stubRepo) GetMessage(ctx context.Context, id string) (messages.Message, error) {
	for _, m := range s.items {
		if m.ID == id {
			return m, nil
		}
	}
	return messages.Message{}, shared.ErrNotFound
}

func (s *stubRepo) CreateMessage(ctx context.Context, m messages.Message) (messages.Message, error) {
	m.ID = "msg-1"
	m.Status = messages.StatusUnread
	s.items = append(s.items, m)
	return m, nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id string, status messages.Status) (messages.Message, error) {
	for i, m := range s.items {
		if m.ID == id {
			s.items[i].Status = status
			return s.items[i], nil
		}
	}
	return messages.Message{}, shared.ErrNotFound
}

type captureEnqueuer struct {
	payloads []jobs.SendEmailPayload
}

func (c *captureEnqueuer) EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error) {
	c.payloads = append(c.payloads, payload)
	return &asynq.TaskInfo{}, nil
}

type fixedResolver struct {
	principal *authz.Principal
}

func (f fixedResolver) Resolve(ctx context.Context, r *http.Request) (*authz.Principal, error) {
	return f.principal, nil
}

func newRouter(repo *stubRepo, enqueuer *captureEnqueuer, principal *authz.Principal) http.Handler {
	service := messages.NewService(repo, enqueuer, nil, "owner@vitrine.fr", nil)
	handler := messages.NewHandler(nil, service, authz.Middleware{Resolver: fixedResolver{principal: principal}})
	r := chi.NewRouter()
	r.Route("/api/admin/messages", handler.MountRoutes)
	r.Route("/api/contact", handler.MountPublicRoutes)
	return r
}

// The inbox is readable by any authenticated role, including VIEWER.
func TestViewerReadsInbox(t *testing.T) {
	viewer := &authz.Principal{ID: "u-9", Role: authz.RoleViewer, IsActive: true}
	router := newRouter(&stubRepo{}, &captureEnqueuer{}, viewer)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
}

func TestViewerCannotUpdateMessageStatus(t *testing.T) {
	repo := &stubRepo{items: []messages.Message{{ID: "msg-1", Status: messages.StatusUnread}}}
	viewer := &authz.Principal{ID: "u-9", Role: authz.RoleViewer, IsActive: true}
	router := newRouter(repo, &captureEnqueuer{}, viewer)

	payload, _ := json.Marshal(map[string]string{"status": "READ"})
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/messages/msg-1", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, messages.StatusUnread, repo.items[0].Status)
}

func TestEditorArchivesMessage(t *testing.T) {
	repo := &stubRepo{items: []messages.Message{{ID: "msg-1", Status: messages.StatusRead}}}
	editor := &authz.Principal{ID: "u-5", Role: authz.RoleEditor, IsActive: true}
	router := newRouter(repo, &captureEnqueuer{}, editor)

	payload, _ := json.Marshal(map[string]string{"status": "ARCHIVED"})
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/messages/msg-1", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, messages.StatusArchived, repo.items[0].Status)
}

func TestPublicSubmitStoresAndNotifies(t *testing.T) {
	repo := &stubRepo{}
	enqueuer := &captureEnqueuer{}
	router := newRouter(repo, enqueuer, nil)

	payload, _ := json.Marshal(map[string]string{
		"name":  "Julie Moreau",
		"email": "Julie@Example.com",
		"body":  "Bonjour, je souhaite un devis pour un projet.",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Len(t, repo.items, 1)
	assert.Equal(t, "julie@example.com", repo.items[0].Email)
	assert.Equal(t, messages.StatusUnread, repo.items[0].Status)
	require.Len(t, enqueuer.payloads, 1)
	assert.Equal(t, "owner@vitrine.fr", enqueuer.payloads[0].To)
	assert.Contains(t, enqueuer.payloads[0].Subject, "Julie Moreau")
}

func TestPublicSubmitRejectsShortBody(t *testing.T) {
	repo := &stubRepo{}
	router := newRouter(repo, &captureEnqueuer{}, nil)

	payload, _ := json.Marshal(map[string]string{"name": "X Y", "email": "a@b.fr", "body": "court"})
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Empty(t, repo.items)
}
