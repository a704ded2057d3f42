package pixels

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

// Handler manages tracking pixel endpoints. EDITOR may list pixels; every
// mutation is ADMIN-only.
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

// MountRoutes registers tracking pixel admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourcePixels, authz.ActionRead))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourcePixels, authz.ActionCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourcePixels, authz.ActionUpdate))
		r.Patch("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourcePixels, authz.ActionDelete))
		r.Delete("/{id}", h.remove)
	})
}

// MountPublicRoutes registers the public enabled-pixels endpoint.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.public)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListPixels(r.Context())
	if err != nil {
		h.logger.Error("list pixels", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) public(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.PublicPixels(r.Context())
	if err != nil {
		h.logger.Error("list enabled pixels", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, items)
}

type pixelRequest struct {
	Provider  string `json:"provider" validate:"required,oneof=meta google tiktok linkedin custom"`
	Label     string `json:"label" validate:"required,min=2"`
	Snippet   string `json:"snippet" validate:"required"`
	IsEnabled bool   `json:"isEnabled"`
}

func (req pixelRequest) toPixel() Pixel {
	return Pixel{
		Provider:  req.Provider,
		Label:     req.Label,
		Snippet:   req.Snippet,
		IsEnabled: req.IsEnabled,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req pixelRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailWithDetails(w, http.StatusBadRequest, "Données invalides", httpx.ValidationDetails(err))
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	created, err := h.service.CreatePixel(r.Context(), actor, req.toPixel())
	if err != nil {
		h.logger.Error("create pixel", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req pixelRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailWithDetails(w, http.StatusBadRequest, "Données invalides", httpx.ValidationDetails(err))
		return
	}
	item := req.toPixel()
	item.ID = chi.URLParam(r, "id")
	actor := authz.PrincipalFromContext(r.Context())
	updated, err := h.service.UpdatePixel(r.Context(), actor, item)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("update pixel", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, updated)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromContext(r.Context())
	if err := h.service.DeletePixel(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete pixel", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Pixel supprimé")
}
