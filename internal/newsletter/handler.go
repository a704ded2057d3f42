package newsletter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/platform/httpx"
	"github.com/vitrine-cms/vitrine/internal/shared"
)

// Handler manages newsletter endpoints. The subscriber list is EDITOR-only;
// subscribing and unsubscribing are public.
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

// MountRoutes registers newsletter admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceNewsletter, authz.ActionRead))
		r.Get("/", h.list)
	})
}

// MountPublicRoutes registers the public subscribe/unsubscribe endpoints.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/", h.subscribe)
	r.Get("/unsubscribe/{token}", h.unsubscribe)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.service.ListSubscribers(r.Context())
	if err != nil {
		h.logger.Error("list subscribers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, subscribers)
}

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailWithDetails(w, http.StatusBadRequest, "Données invalides", httpx.ValidationDetails(err))
		return
	}
	if _, err := h.service.Subscribe(r.Context(), req.Email); err != nil {
		h.logger.Error("subscribe", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Inscription à la newsletter confirmée")
}

func (h *Handler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Unsubscribe(r.Context(), chi.URLParam(r, "token")); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("unsubscribe", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Désinscription confirmée")
}
