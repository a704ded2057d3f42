package partners

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

// Handler manages partner admin endpoints. Every action, including delete,
// is open to EDITOR.
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

// MountRoutes registers partner admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourcePartners, authz.ActionRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourcePartners, authz.ActionCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourcePartners, authz.ActionUpdate))
		r.Patch("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourcePartners, authz.ActionDelete))
		r.Delete("/{id}", h.remove)
	})
}

// MountPublicRoutes registers the public read endpoint.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.public)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListPartners(r.Context())
	if err != nil {
		h.logger.Error("list partners", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) public(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.PublicPartners(r.Context())
	if err != nil {
		h.logger.Error("list public partners", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetPartner(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get partner", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, item)
}

type partnerRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	LogoURL  string `json:"logoUrl" validate:"omitempty,url"`
	SiteURL  string `json:"siteUrl" validate:"omitempty,url"`
	Position int    `json:"position" validate:"gte=0"`
	IsActive *bool  `json:"isActive"`
}

func (req partnerRequest) toPartner() Partner {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return Partner{
		Name:     req.Name,
		LogoURL:  req.LogoURL,
		SiteURL:  req.SiteURL,
		Position: req.Position,
		IsActive: active,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req partnerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailWithDetails(w, http.StatusBadRequest, "Données invalides", httpx.ValidationDetails(err))
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	created, err := h.service.CreatePartner(r.Context(), actor, req.toPartner())
	if err != nil {
		h.logger.Error("create partner", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req partnerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailWithDetails(w, http.StatusBadRequest, "Données invalides", httpx.ValidationDetails(err))
		return
	}
	item := req.toPartner()
	item.ID = chi.URLParam(r, "id")
	actor := authz.PrincipalFromContext(r.Context())
	updated, err := h.service.UpdatePartner(r.Context(), actor, item)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("update partner", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, updated)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromContext(r.Context())
	if err := h.service.DeletePartner(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete partner", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Partenaire supprimé")
}
