package messages

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

// Handler manages the inbox and the public contact form. Any authenticated
// role may read the inbox; moving a message requires EDITOR.
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

// MountRoutes registers inbox admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceMessages, authz.ActionRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceMessages, authz.ActionUpdate))
		r.Patch("/{id}", h.updateStatus)
	})
}

// MountPublicRoutes registers the public contact form endpoint.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/", h.submit)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	items, err := h.service.ListMessages(r.Context(), status)
	if err != nil {
		h.logger.Error("list messages", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetMessage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get message", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, item)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=UNREAD READ ARCHIVED"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailWithDetails(w, http.StatusBadRequest, "Données invalides", httpx.ValidationDetails(err))
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	updated, err := h.service.UpdateStatus(r.Context(), actor, chi.URLParam(r, "id"), Status(req.Status))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("update message status", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, updated)
}

type submitRequest struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=200"`
	Body    string `json:"body" validate:"required,min=10,max=5000"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailWithDetails(w, http.StatusBadRequest, "Données invalides", httpx.ValidationDetails(err))
		return
	}
	if _, err := h.service.Submit(r.Context(), Message{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Body,
	}); err != nil {
		h.logger.Error("submit contact message", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Message envoyé")
}
