package view

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/vitrine-cms/vitrine/internal/idle"
	"github.com/vitrine-cms/vitrine/internal/shared"
	"github.com/vitrine-cms/vitrine/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
	idle      IdlePolicy
}

// IdlePolicy carries the session inactivity bounds that pages expose to the
// browser watcher, so the client mirrors the server-side timeouts instead of
// hardcoding its own.
type IdlePolicy struct {
	// LockAfter is the quiet period after which the back office locks.
	LockAfter time.Duration
	// MaxIdle forces a full re-login regardless of lock state.
	MaxIdle time.Duration
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Idle        IdlePolicy
	Data        any
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006 15:04")
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{
		templates: tpl,
		idle:      IdlePolicy{LockAfter: 10 * time.Minute, MaxIdle: idle.DefaultMaxIdle},
	}, nil
}

// SetIdlePolicy overrides the default inactivity bounds with the configured
// ones. Called once at startup.
func (e *Engine) SetIdlePolicy(p IdlePolicy) {
	if p.LockAfter > 0 {
		e.idle.LockAfter = p.LockAfter
	}
	if p.MaxIdle > 0 {
		e.idle.MaxIdle = p.MaxIdle
	}
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	data.Idle = e.idle
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
