package view

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderLoginPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/login.html", TemplateData{
		Title:     "Connexion",
		CSRFToken: "tok-1",
	})
	require.NoError(t, err)
	body := rec.Body.String()
	assert.Contains(t, body, `name="csrf_token"`)
	assert.Contains(t, body, "tok-1")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestRenderUnknownTemplateFails(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.Error(t, engine.Render(rec, "pages/missing.html", TemplateData{}))
}

func TestRenderExposesConfiguredIdleBounds(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	engine.SetIdlePolicy(IdlePolicy{LockAfter: 5 * time.Minute, MaxIdle: 45 * time.Minute})

	rec := httptest.NewRecorder()
	require.NoError(t, engine.Render(rec, "pages/login.html", TemplateData{Title: "Connexion"}))
	body := rec.Body.String()
	assert.Contains(t, body, `data-idle-lock-ms="300000"`)
	assert.Contains(t, body, `data-idle-max-ms="2700000"`)
}

func TestRenderDefaultsIdleBounds(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, engine.Render(rec, "pages/lock.html", TemplateData{Title: "Session verrouillée"}))
	body := rec.Body.String()
	assert.Contains(t, body, `data-idle-lock-ms="600000"`)
	assert.Contains(t, body, `data-idle-max-ms="3600000"`)
}
