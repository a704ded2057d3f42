package app

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vitrine-cms/vitrine/internal/activity"
	"github.com/vitrine-cms/vitrine/internal/analytics"
	"github.com/vitrine-cms/vitrine/internal/auth"
	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/contact"
	"github.com/vitrine-cms/vitrine/internal/events"
	"github.com/vitrine-cms/vitrine/internal/gate"
	"github.com/vitrine-cms/vitrine/internal/media"
	"github.com/vitrine-cms/vitrine/internal/messages"
	"github.com/vitrine-cms/vitrine/internal/newsletter"
	"github.com/vitrine-cms/vitrine/internal/observability"
	"github.com/vitrine-cms/vitrine/internal/partners"
	"github.com/vitrine-cms/vitrine/internal/pixels"
	"github.com/vitrine-cms/vitrine/internal/shared"
	"github.com/vitrine-cms/vitrine/internal/team"
	"github.com/vitrine-cms/vitrine/internal/testimonials"
	"github.com/vitrine-cms/vitrine/internal/users"
	"github.com/vitrine-cms/vitrine/internal/view"
	"github.com/vitrine-cms/vitrine/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	// Guard protects the JSON API; Gate filters the /admin page section.
	Guard authz.Middleware
	Gate  gate.Gate

	AuthHandler         *auth.Handler
	UsersHandler        *users.Handler
	TeamHandler         *team.Handler
	TestimonialsHandler *testimonials.Handler
	PartnersHandler     *partners.Handler
	MediaHandler        *media.Handler
	ContactHandler      *contact.Handler
	MessagesHandler     *messages.Handler
	PixelsHandler       *pixels.Handler
	EventsHandler       *events.Handler
	NewsletterHandler   *newsletter.Handler
	AnalyticsHandler    *analytics.Handler
	ActivityHandler     *activity.Handler

	// Analytics feeds the dashboard stat cards.
	Analytics *analytics.Service
	Metrics   *observability.Metrics
}

// NewRouter constructs the chi.Router for the back office and public API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.UserID() == "" {
			http.Redirect(w, r, gate.LoginPath, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	})

	params.AuthHandler.MountPages(r)

	r.Group(func(r chi.Router) {
		r.Use(params.Gate.Middleware)
		r.Get("/admin", params.dashboard)
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.RequireAuth())
			params.AuthHandler.MountSessionAPI(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Route("/users", params.UsersHandler.MountRoutes)
			r.Route("/team", params.TeamHandler.MountRoutes)
			r.Route("/testimonials", params.TestimonialsHandler.MountRoutes)
			r.Route("/partners", params.PartnersHandler.MountRoutes)
			r.Route("/media", params.MediaHandler.MountRoutes)
			r.Route("/contact", params.ContactHandler.MountRoutes)
			r.Route("/messages", params.MessagesHandler.MountRoutes)
			r.Route("/pixels", params.PixelsHandler.MountRoutes)
			r.Route("/events", params.EventsHandler.MountRoutes)
			r.Route("/newsletter", params.NewsletterHandler.MountRoutes)
			r.Route("/analytics", params.AnalyticsHandler.MountRoutes)
			r.Route("/activity", params.ActivityHandler.MountRoutes)
		})

		r.Route("/public", func(r chi.Router) {
			r.Route("/team", params.TeamHandler.MountPublicRoutes)
			r.Route("/testimonials", params.TestimonialsHandler.MountPublicRoutes)
			r.Route("/partners", params.PartnersHandler.MountPublicRoutes)
			r.Route("/media", params.MediaHandler.MountPublicRoutes)
			r.Route("/contact-info", params.ContactHandler.MountPublicRoutes)
			r.Route("/contact", params.MessagesHandler.MountPublicRoutes)
			r.Route("/pixels", params.PixelsHandler.MountPublicRoutes)
			r.Route("/events", params.EventsHandler.MountPublicRoutes)
			r.Route("/newsletter", params.NewsletterHandler.MountPublicRoutes)
			r.Route("/analytics", params.AnalyticsHandler.MountPublicRoutes)
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// dashboard renders the back-office landing page with the thirty day
// traffic summary.
func (params RouterParams) dashboard(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}

	var stats analytics.Stats
	if params.Analytics != nil {
		now := time.Now()
		loaded, err := params.Analytics.GetStats(r.Context(), analytics.StatsRange{
			From: now.AddDate(0, 0, -30),
			To:   now,
		})
		if err != nil {
			params.Logger.Error("load dashboard stats", slog.Any("error", err))
		} else {
			stats = loaded
		}
	}

	data := view.TemplateData{
		Title:       "Tableau de bord",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        stats,
	}
	if err := params.Templates.Render(w, "pages/dashboard.html", data); err != nil {
		params.Logger.Error("render dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
