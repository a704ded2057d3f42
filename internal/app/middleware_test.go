package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-cms/vitrine/internal/shared"
)

func newBackstopFixture(t *testing.T) (MiddlewareConfig, *shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	manager := shared.NewSessionManager(client, "vitrine_session", "test-secret", time.Hour, false)
	cfg := MiddlewareConfig{
		Logger:         slog.Default(),
		Config:         &Config{SessionMaxIdle: time.Hour},
		SessionManager: manager,
	}
	return cfg, manager, mr
}

func loggedInSession(t *testing.T, manager *shared.SessionManager) *shared.Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetPrincipal("user-1", "ADMIN")
	return sess
}

func TestIdleBackstopStampsGenuineActivity(t *testing.T) {
	cfg, manager, _ := newBackstopFixture(t)
	sess := loggedInSession(t, manager)
	stale := time.Now().Add(-59 * time.Minute).Format(time.RFC3339)
	sess.Set(sessionLastSeenKey, stale)

	expireIdleSession(cfg, sess, "/api/admin/team")

	assert.NotEqual(t, stale, sess.Get(sessionLastSeenKey), "a genuine request should advance the activity stamp")
}

func TestIdleBackstopIgnoresUnlockAndLockScreen(t *testing.T) {
	cfg, manager, _ := newBackstopFixture(t)
	sess := loggedInSession(t, manager)
	stale := time.Now().Add(-59 * time.Minute).Format(time.RFC3339)
	sess.Set(sessionLastSeenKey, stale)

	expireIdleSession(cfg, sess, "/api/session/unlock")
	expireIdleSession(cfg, sess, "/api/session/refresh")
	expireIdleSession(cfg, sess, "/admin/locked")

	assert.Equal(t, stale, sess.Get(sessionLastSeenKey), "unlock traffic must not extend the absolute idle bound")
}

func TestIdleBackstopExpiresUnlockOnlyPrincipal(t *testing.T) {
	cfg, manager, mr := newBackstopFixture(t)
	sess := loggedInSession(t, manager)
	sess.Set(sessionLastSeenKey, time.Now().Add(-30*time.Minute).Format(time.RFC3339))

	// Persist so the later destroy is observable in the store.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	require.NoError(t, manager.Commit(context.Background(), rec, req, sess))
	require.True(t, mr.Exists("session:"+sess.ID))

	// Unlock attempts inside the bound keep the session but never advance it.
	expireIdleSession(cfg, sess, "/api/session/unlock")
	rec = httptest.NewRecorder()
	require.NoError(t, manager.Commit(context.Background(), rec, req, sess))
	require.True(t, mr.Exists("session:"+sess.ID))

	// Past the bound, even an unlock request forces a full re-login.
	sess.Set(sessionLastSeenKey, time.Now().Add(-61*time.Minute).Format(time.RFC3339))
	expireIdleSession(cfg, sess, "/api/session/unlock")

	rec = httptest.NewRecorder()
	require.NoError(t, manager.Commit(context.Background(), rec, req, sess))
	assert.False(t, mr.Exists("session:"+sess.ID), "expired session should be removed from the store")

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == manager.CookieName() && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "expired session should clear the cookie")
}
