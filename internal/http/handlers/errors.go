package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/impresia/tiraje-backend/internal/engine"
	"github.com/impresia/tiraje-backend/internal/http/response"
	"github.com/impresia/tiraje-backend/internal/services"
)

// respondServiceError maps service and engine errors onto HTTP statuses. The
// four lifecycle rejection codes surface verbatim so the dashboard can branch
// on them.
func respondServiceError(c *gin.Context, err error) {
	var engErr *engine.Error
	if errors.As(err, &engErr) {
		status := http.StatusConflict
		if engErr == engine.ErrMissingCause {
			status = http.StatusUnprocessableEntity
		}
		response.RespondError(c, status, engErr.Code, err)
		return
	}
	switch {
	case errors.Is(err, services.ErrJobNotFound), errors.Is(err, services.ErrUserNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, services.ErrUnknownPress):
		response.RespondError(c, http.StatusUnprocessableEntity, "unknown_press", err)
	case errors.Is(err, services.ErrDuplicateOrder):
		response.RespondError(c, http.StatusConflict, "duplicate_order", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
