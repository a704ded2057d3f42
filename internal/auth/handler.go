package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/platform/httpx"
	"github.com/vitrine-cms/vitrine/internal/shared"
	"github.com/vitrine-cms/vitrine/internal/view"
)

// Handler wires HTTP endpoints for authentication flows: the login and lock
// pages, and the JSON session endpoints used by the back office.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountPages registers the page routes.
func (h *Handler) MountPages(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/admin/locked", h.showLock)
}

// MountSessionAPI registers the JSON session endpoints. Mounted behind the
// route guard's RequireAuth.
func (h *Handler) MountSessionAPI(r chi.Router) {
	r.Post("/session/unlock", h.handleUnlock)
	r.Post("/session/refresh", h.handleRefresh)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type loginPageData struct {
	Form     loginForm
	Errors   map[string]string
	Redirect string
	Reason   string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	data := loginPageData{
		Redirect: sanitizeRedirect(r.URL.Query().Get("redirect")),
		Reason:   loginReason(r.URL.Query().Get("error")),
	}
	h.renderLogin(w, r, data, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := loginForm{
		Email:    strings.ToLower(strings.TrimSpace(r.PostFormValue("email"))),
		Password: r.PostFormValue("password"),
	}
	redirect := sanitizeRedirect(r.PostFormValue("redirect"))

	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				formErrors[fieldErr.Field()] = "Champ invalide"
			}
		}
	}

	if len(formErrors) == 0 {
		user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
		if err != nil {
			formErrors["general"] = "Email ou mot de passe incorrect"
		} else {
			if sess == nil {
				h.logger.Error("session missing during login")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			sess.SetPrincipal(user.ID, string(user.Role))
			h.csrfManager.Rotate(sess)
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Bienvenue " + user.Name})
			expiresAt := time.Now().Add(h.sessionManager.TTL())
			if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
				h.logger.Warn("register session", slog.Any("error", err))
			}
			if redirect == "" {
				redirect = "/admin"
			}
			http.Redirect(w, r, redirect, http.StatusSeeOther)
			return
		}
	}

	h.renderLogin(w, r, loginPageData{Form: form, Errors: formErrors, Redirect: redirect}, http.StatusBadRequest)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) showLock(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.UserID() == "" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	viewData := view.TemplateData{
		Title:       "Session verrouillée",
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
	}
	if err := h.templates.Render(w, "pages/lock.html", viewData); err != nil {
		h.logger.Error("render lock", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type unlockRequest struct {
	Password string `json:"password" validate:"required"`
}

// handleUnlock re-verifies the principal's password for the idle-lock flow.
// Responses: 200 success, 401 wrong password, 403 deactivated account,
// 400 account has no password.
func (h *Handler) handleUnlock(w http.ResponseWriter, r *http.Request) {
	principal := authz.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Fail(w, http.StatusUnauthorized, authz.MsgUnauthenticated)
		return
	}

	var req unlockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Le mot de passe est requis")
		return
	}

	if _, err := h.service.Unlock(r.Context(), principal.ID, req.Password); err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidCredentials):
			httpx.Fail(w, http.StatusUnauthorized, "Mot de passe incorrect")
		case errors.Is(err, shared.ErrAccountInactive):
			httpx.Fail(w, http.StatusForbidden, "Compte désactivé")
		case errors.Is(err, shared.ErrNoPassword):
			httpx.Fail(w, http.StatusBadRequest, "Aucun mot de passe n'est associé à ce compte. Veuillez vous reconnecter.")
		default:
			h.logger.Error("unlock failed", slog.Any("error", err))
			httpx.Fail(w, http.StatusInternalServerError, "Erreur interne du serveur")
		}
		return
	}

	httpx.Success(w, "Session déverrouillée")
}

// handleRefresh re-syncs the session role snapshot with the directory. The
// back office calls it after any action that may have changed the caller's
// own role.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	principal := authz.PrincipalFromContext(r.Context())
	sess := shared.SessionFromContext(r.Context())
	if principal == nil || sess == nil {
		httpx.Fail(w, http.StatusUnauthorized, authz.MsgUnauthenticated)
		return
	}
	role, err := h.service.CurrentRole(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error("refresh role", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Erreur interne du serveur")
		return
	}
	sess.SetRole(string(role))
	httpx.OK(w, map[string]any{"role": role})
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, data loginPageData, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Connexion",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
	}
}

// sanitizeRedirect only honours same-site admin paths so the login page
// cannot be used as an open redirect.
func sanitizeRedirect(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	if u.Path != "/admin" && !strings.HasPrefix(u.Path, "/admin/") {
		return ""
	}
	return u.Path
}

func loginReason(code string) string {
	switch code {
	case "forbidden":
		return "Accès refusé. Vos droits ne permettent pas d'accéder à cette page."
	case "auth_error":
		return "Une erreur d'authentification est survenue. Veuillez vous reconnecter."
	case "inactivity":
		return "Session expirée pour cause d'inactivité. Veuillez vous reconnecter."
	default:
		return ""
	}
}
