package team

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

// Handler manages team member admin endpoints. Reads and writes require
// EDITOR; deletion requires ADMIN.
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

// MountRoutes registers team member admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceTeam, authz.ActionRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceTeam, authz.ActionCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceTeam, authz.ActionUpdate))
		r.Patch("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceTeam, authz.ActionDelete))
		r.Delete("/{id}", h.remove)
	})
}

// MountPublicRoutes registers the public read endpoint. Only active members
// are returned and no role check applies.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.public)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context())
	if err != nil {
		h.logger.Error("list team members", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, members)
}

func (h *Handler) public(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.PublicMembers(r.Context())
	if err != nil {
		h.logger.Error("list public team members", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, members)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	member, err := h.service.GetMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get team member", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, member)
}

type memberRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Role     string `json:"role" validate:"required,min=2"`
	Bio      string `json:"bio"`
	PhotoURL string `json:"photoUrl" validate:"omitempty,url"`
	Position int    `json:"position" validate:"gte=0"`
	IsActive *bool  `json:"isActive"`
}

func (req memberRequest) toMember() Member {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return Member{
		Name:     req.Name,
		Role:     req.Role,
		Bio:      req.Bio,
		PhotoURL: req.PhotoURL,
		Position: req.Position,
		IsActive: active,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailWithDetails(w, http.StatusBadRequest, "Données invalides", httpx.ValidationDetails(err))
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	member, err := h.service.CreateMember(r.Context(), actor, req.toMember())
	if err != nil {
		h.logger.Error("create team member", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, member)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailWithDetails(w, http.StatusBadRequest, "Données invalides", httpx.ValidationDetails(err))
		return
	}
	member := req.toMember()
	member.ID = chi.URLParam(r, "id")
	actor := authz.PrincipalFromContext(r.Context())
	updated, err := h.service.UpdateMember(r.Context(), actor, member)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("update team member", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, updated)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromContext(r.Context())
	if err := h.service.DeleteMember(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete team member", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Membre supprimé")
}
