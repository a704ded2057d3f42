package contact

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

// Handler manages the contact block. EDITOR may read it; only ADMIN may
// change it.
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

// MountRoutes registers contact block admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceContact, authz.ActionRead))
		r.Get("/", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceContact, authz.ActionUpdate))
		r.Put("/", h.update)
	})
}

// MountPublicRoutes registers the public read endpoint.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.public)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.GetInfo(r.Context())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.OK(w, Info{})
			return
		}
		h.logger.Error("get contact info", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, info)
}

func (h *Handler) public(w http.ResponseWriter, r *http.Request) {
	h.get(w, r)
}

type infoRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Instagram string `json:"instagram" validate:"omitempty,url"`
	LinkedIn  string `json:"linkedin" validate:"omitempty,url"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req infoRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailWithDetails(w, http.StatusBadRequest, "Données invalides", httpx.ValidationDetails(err))
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	info, err := h.service.UpdateInfo(r.Context(), actor, Info{
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Instagram: req.Instagram,
		LinkedIn:  req.LinkedIn,
	})
	if err != nil {
		h.logger.Error("update contact info", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, info)
}
