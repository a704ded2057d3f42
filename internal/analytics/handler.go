package analytics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/platform/httpx"
)

const defaultStatsDays = 30

// Handler manages analytics endpoints: a public visit beacon and the
// EDITOR-readable dashboard aggregate.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers the admin stats route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceAnalytics, authz.ActionRead))
		r.Get("/stats", h.stats)
	})
}

// MountPublicRoutes registers the visit beacon.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/visit", h.capture)
}

type visitRequest struct {
	Path      string `json:"path" validate:"required,startswith=/"`
	Referrer  string `json:"referrer" validate:"omitempty,max=2048"`
	VisitorID string `json:"visitorId" validate:"omitempty,max=64"`
}

func (h *Handler) capture(w http.ResponseWriter, r *http.Request) {
	var req visitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	err := h.service.Capture(r.Context(), Visit{
		Path:      req.Path,
		Referrer:  req.Referrer,
		UserAgent: r.UserAgent(),
		VisitorID: req.VisitorID,
	})
	if err != nil {
		h.logger.Error("capture visit", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	rng := parseRange(r)
	stats, err := h.service.GetStats(r.Context(), rng)
	if err != nil {
		h.logger.Error("load stats", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, stats)
}

func parseRange(r *http.Request) StatsRange {
	now := time.Now()
	rng := StatsRange{From: now.AddDate(0, 0, -defaultStatsDays), To: now}
	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			rng.From = t
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			rng.To = t.AddDate(0, 0, 1)
		}
	}
	return rng
}
