package media

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/platform/httpx"
)

// Handler manages media asset endpoints. Only reads and creates exist; the
// policy exposes no update or delete action for media.
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

// MountRoutes registers media admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceMedia, authz.ActionRead))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ResourceMedia, authz.ActionCreate))
		r.Post("/", h.create)
	})
}

// MountPublicRoutes registers the public asset listing used by the site's
// galleries. No role check applies.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	assets, err := h.service.ListAssets(r.Context(), r.URL.Query().Get("folder"))
	if err != nil {
		h.logger.Error("list media assets", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, assets)
}

type assetRequest struct {
	URL       string `json:"url" validate:"required,url"`
	PublicID  string `json:"publicId" validate:"required"`
	Filename  string `json:"filename" validate:"required"`
	MimeType  string `json:"mimeType" validate:"required"`
	SizeBytes int64  `json:"sizeBytes" validate:"gte=0"`
	Folder    string `json:"folder"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailWithDetails(w, http.StatusBadRequest, "Données invalides", httpx.ValidationDetails(err))
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	asset, err := h.service.CreateAsset(r.Context(), actor, Asset{
		URL:       req.URL,
		PublicID:  req.PublicID,
		Filename:  req.Filename,
		MimeType:  req.MimeType,
		SizeBytes: req.SizeBytes,
		Folder:    req.Folder,
	})
	if err != nil {
		h.logger.Error("create media asset", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, asset)
}
