package testimonials

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

// Handler manages testimonial admin endpoints.
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

// MountRoutes registers testimonial admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceTestimonials, authz.ActionRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceTestimonials, authz.ActionCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceTestimonials, authz.ActionUpdate))
		r.Patch("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceTestimonials, authz.ActionDelete))
		r.Delete("/{id}", h.remove)
	})
}

// MountPublicRoutes registers the public read endpoint.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.public)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListTestimonials(r.Context())
	if err != nil {
		h.logger.Error("list testimonials", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) public(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.PublishedTestimonials(r.Context())
	if err != nil {
		h.logger.Error("list published testimonials", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetTestimonial(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get testimonial", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, item)
}

type testimonialRequest struct {
	Author      string `json:"author" validate:"required,min=2"`
	Company     string `json:"company"`
	Quote       string `json:"quote" validate:"required,min=10"`
	Rating      int    `json:"rating" validate:"gte=0,lte=5"`
	IsPublished bool   `json:"isPublished"`
}

func (req testimonialRequest) toTestimonial() Testimonial {
	return Testimonial{
		Author:      req.Author,
		Company:     req.Company,
		Quote:       req.Quote,
		Rating:      req.Rating,
		IsPublished: req.IsPublished,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req testimonialRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailWithDetails(w, http.StatusBadRequest, "Données invalides", httpx.ValidationDetails(err))
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	created, err := h.service.CreateTestimonial(r.Context(), actor, req.toTestimonial())
	if err != nil {
		h.logger.Error("create testimonial", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req testimonialRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailWithDetails(w, http.StatusBadRequest, "Données invalides", httpx.ValidationDetails(err))
		return
	}
	item := req.toTestimonial()
	item.ID = chi.URLParam(r, "id")
	actor := authz.PrincipalFromContext(r.Context())
	updated, err := h.service.UpdateTestimonial(r.Context(), actor, item)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("update testimonial", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, updated)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromContext(r.Context())
	if err := h.service.DeleteTestimonial(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete testimonial", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Témoignage supprimé")
}
