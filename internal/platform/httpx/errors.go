package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors mapped onto the response envelope. Authorization failures
// stay distinct from validation failures: 401/403 never carry a 400 body.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrDuplicate       = errors.New("duplicate entry")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// RespondError maps domain errors to envelope responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Fail(w, http.StatusNotFound, "Ressource introuvable")
	case errors.Is(err, ErrDuplicate):
		Fail(w, http.StatusConflict, "Cette entrée existe déjà")
	case errors.Is(err, ErrValidation):
		Fail(w, http.StatusBadRequest, "Données invalides")
	case errors.Is(err, ErrUnauthenticated):
		Fail(w, http.StatusUnauthorized, "Non authentifié")
	case errors.Is(err, ErrForbidden):
		Fail(w, http.StatusForbidden, "Accès refusé")
	default:
		Fail(w, http.StatusInternalServerError, "Erreur interne du serveur")
	}
}
