// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/stockroom/internal/shared"
)

// RespondError maps domain errors to plain-text HTTP responses. The body is
// the error message itself so clients can show it unchanged; unexpected
// errors are logged and answered with a generic message.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Text(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrValidation):
		Text(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrConflict):
		Text(w, http.StatusConflict, err.Error())
	default:
		if logger != nil {
			logger.Error("request failed", slog.Any("error", err))
		}
		Text(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
