// Package httpx writes JSON responses, including RFC7807 problem details.
package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/backoffice/internal/apiclient"
)

// Sentinel errors for handlers that answer in JSON.
var (
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps err to a problem response. Backend messages never reach
// the client; only the local validation detail does.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", "")
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "")
	case errors.Is(err, apiclient.ErrRejected):
		Problem(w, http.StatusBadRequest, "Bad Request", "")
	case errors.Is(err, apiclient.ErrTransport), errors.Is(err, apiclient.ErrDecode), errors.Is(err, apiclient.ErrMalformed):
		Problem(w, http.StatusBadGateway, "Bad Gateway", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
