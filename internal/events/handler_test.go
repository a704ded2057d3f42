package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/events"
	"github.com/vitrine-cms/vitrine/internal/platform/httpx"
	"github.com/vitrine-cms/vitrine/internal/shared"
	"github.com/vitrine-cms/vitrine/jobs"
)

type stubRepo struct {
	events        map[string]events.Event
	registrations []events.Registration
	duplicate     bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{events: make(map[string]events.Event)}
}

func (s *stubRepo) ListEvents(ctx context.Context) ([]events.Event, error) { return nil, nil }

func (s *stubRepo) ListPublishedEvents(ctx context.Context) ([]events.Event, error) {
	var out []events.Event
	for _, e := range s.events {
		if e.IsPublished {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubRepo) GetEvent(ctx context.Context, id string) (events.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return events.Event{}, shared.ErrNotFound
	}
	return e, nil
}

func (s *stubRepo) ListRegistrations(ctx context.Context, eventID string) ([]events.Registration, error) {
	return s.registrations, nil
}

func (s *stubRepo) CountRegistrations(ctx context.Context, eventID string) (int, error) {
	return len(s.registrations), nil
}

func (s *stubRepo) CreateRegistration(ctx context.Context, reg events.Registration) (events.Registration, error) {
	if s.duplicate {
		return events.Registration{}, httpx.ErrDuplicate
	}
	reg.ID = "reg-1"
	s.registrations = append(s.registrations, reg)
	return reg, nil
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

func passthroughLimiter(next http.Handler) http.Handler { return next }

func newPublicRouter(repo *stubRepo, enqueuer *captureEnqueuer, limiter events.Limiter) http.Handler {
	service := events.NewService(repo, enqueuer, nil, nil)
	handler := events.NewHandler(nil, service, authz.Middleware{Resolver: fixedResolver{}}, limiter)
	r := chi.NewRouter()
	r.Route("/api/events", handler.MountPublicRoutes)
	return r
}

func publishedEvent(id string) events.Event {
	return events.Event{
		ID:          id,
		Title:       "Atelier photo",
		StartsAt:    time.Now().Add(48 * time.Hour),
		IsPublished: true,
	}
}

func registerBody(t *testing.T) *bytes.Reader {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"name": "Paul Petit", "email": "paul@example.com"})
	require.NoError(t, err)
	return bytes.NewReader(payload)
}

func TestPublicRegistrationEnqueuesConfirmation(t *testing.T) {
	repo := newStubRepo()
	repo.events["ev-1"] = publishedEvent("ev-1")
	enqueuer := &captureEnqueuer{}
	router := newPublicRouter(repo, enqueuer, passthroughLimiter)

	req := httptest.NewRequest(http.MethodPost, "/api/events/ev-1/register", registerBody(t))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Len(t, repo.registrations, 1)
	assert.Equal(t, events.SourcePublic, repo.registrations[0].Source)
	require.Len(t, enqueuer.payloads, 1)
	assert.Equal(t, "paul@example.com", enqueuer.payloads[0].To)
	assert.Contains(t, enqueuer.payloads[0].Subject, "Atelier photo")
}

func TestRegistrationRejectedWhenEventFull(t *testing.T) {
	repo := newStubRepo()
	event := publishedEvent("ev-1")
	event.Capacity = 1
	repo.events["ev-1"] = event
	repo.registrations = []events.Registration{{ID: "reg-0", EventID: "ev-1"}}
	router := newPublicRouter(repo, &captureEnqueuer{}, passthroughLimiter)

	req := httptest.NewRequest(http.MethodPost, "/api/events/ev-1/register", registerBody(t))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusConflict, res.Code)
	require.Len(t, repo.registrations, 1)
}

func TestRegistrationRejectedForUnpublishedEvent(t *testing.T) {
	repo := newStubRepo()
	event := publishedEvent("ev-1")
	event.IsPublished = false
	repo.events["ev-1"] = event
	router := newPublicRouter(repo, &captureEnqueuer{}, passthroughLimiter)

	req := httptest.NewRequest(http.MethodPost, "/api/events/ev-1/register", registerBody(t))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusConflict, res.Code)
}

func TestDuplicateRegistrationConflict(t *testing.T) {
	repo := newStubRepo()
	repo.events["ev-1"] = publishedEvent("ev-1")
	repo.duplicate = true
	enqueuer := &captureEnqueuer{}
	router := newPublicRouter(repo, enqueuer, passthroughLimiter)

	req := httptest.NewRequest(http.MethodPost, "/api/events/ev-1/register", registerBody(t))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusConflict, res.Code)
	assert.Empty(t, enqueuer.payloads)
}

func TestRegistrationRateLimited(t *testing.T) {
	repo := newStubRepo()
	repo.events["ev-1"] = publishedEvent("ev-1")
	limiter := events.Limiter(httprate.LimitByIP(events.RegistrationRateLimit, events.RegistrationRateWindow))
	router := newPublicRouter(repo, &captureEnqueuer{}, limiter)

	var last int
	for i := 0; i < events.RegistrationRateLimit+1; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/events/ev-1/register", registerBody(t))
		req.RemoteAddr = "203.0.113.9:4000"
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)
		last = res.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestManualAddRequiresAdmin(t *testing.T) {
	repo := newStubRepo()
	repo.events["ev-1"] = publishedEvent("ev-1")
	service := events.NewService(repo, nil, nil, nil)
	editor := &authz.Principal{ID: "u-5", Role: authz.RoleEditor, IsActive: true}
	handler := events.NewHandler(nil, service, authz.Middleware{Resolver: fixedResolver{principal: editor}}, passthroughLimiter)
	r := chi.NewRouter()
	r.Route("/api/admin/events", handler.MountRoutes)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/events/ev-1/registrations", registerBody(t))
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
	assert.Empty(t, repo.registrations)
}

// Registrations read is "any authenticated role", so a VIEWER passes.
func TestViewerReadsRegistrations(t *testing.T) {
	repo := newStubRepo()
	repo.events["ev-1"] = publishedEvent("ev-1")
	service := events.NewService(repo, nil, nil, nil)
	viewer := &authz.Principal{ID: "u-9", Role: authz.RoleViewer, IsActive: true}
	handler := events.NewHandler(nil, service, authz.Middleware{Resolver: fixedResolver{principal: viewer}}, passthroughLimiter)
	r := chi.NewRouter()
	r.Route("/api/admin/events", handler.MountRoutes)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/events/ev-1/registrations", nil)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
}
