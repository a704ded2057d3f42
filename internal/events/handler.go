package events

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/platform/httpx"
	"github.com/vitrine-cms/vitrine/internal/shared"
)

// Public registration rate limit: 5 attempts per client IP per window.
const (
	RegistrationRateLimit  = 5
	RegistrationRateWindow = 15 * time.Minute
)

// Limiter throttles the public registration endpoint. The default is a
// per-IP fixed window; tests swap in a no-op.
type Limiter func(next http.Handler) http.Handler

// DefaultLimiter returns the production per-IP limiter. It is process-local
// and best-effort: running several instances multiplies the effective quota.
func DefaultLimiter() Limiter {
	return httprate.LimitByIP(RegistrationRateLimit, RegistrationRateWindow)
}

// Handler manages event endpoints. Reading events and registrations is open
// to any authenticated role; adding an attendee by hand is ADMIN-only.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     authz.Middleware
	limiter   Limiter
	validator *validator.Validate
}

// NewHandler builds a Handler instance. A nil limiter falls back to the
// per-IP default.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware, limiter Limiter) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if limiter == nil {
		limiter = DefaultLimiter()
	}
	return &Handler{logger: logger, service: service, guard: guard, limiter: limiter, validator: validator.New()}
}

// MountRoutes registers event admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceRegistrations, authz.ActionRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/{id}/registrations", h.listRegistrations)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceRegistrations, authz.ActionCreate))
		r.Post("/{id}/registrations", h.addRegistration)
	})
}

// MountPublicRoutes registers the public event list and the rate-limited
// registration endpoint.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.public)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler { return h.limiter(next) })
		r.Post("/{id}/register", h.register)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListEvents(r.Context())
	if err != nil {
		h.logger.Error("list events", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) public(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.PublicEvents(r.Context())
	if err != nil {
		h.logger.Error("list public events", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get event", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, event)
}

func (h *Handler) listRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.service.ListRegistrations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("list registrations", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, regs)
}

type registrationRequest struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailWithDetails(w, http.StatusBadRequest, "Données invalides", httpx.ValidationDetails(err))
		return
	}
	reg, err := h.service.Register(r.Context(), chi.URLParam(r, "id"), req.Name, req.Email)
	if err != nil {
		h.respondRegistrationError(w, err)
		return
	}
	httpx.OK(w, reg)
}

func (h *Handler) addRegistration(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailWithDetails(w, http.StatusBadRequest, "Données invalides", httpx.ValidationDetails(err))
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	reg, err := h.service.AddRegistration(r.Context(), actor, chi.URLParam(r, "id"), req.Name, req.Email)
	if err != nil {
		h.respondRegistrationError(w, err)
		return
	}
	httpx.Created(w, reg)
}

func (h *Handler) respondRegistrationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, httpx.ErrDuplicate):
		httpx.Fail(w, http.StatusConflict, "Vous êtes déjà inscrit à cet événement")
	case errors.Is(err, ErrEventFull):
		httpx.Fail(w, http.StatusConflict, "Cet événement est complet")
	case errors.Is(err, ErrEventClosed):
		httpx.Fail(w, http.StatusConflict, "Les inscriptions sont fermées pour cet événement")
	default:
		h.logger.Error("register attendee", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
