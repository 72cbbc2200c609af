// Package apierr turns domain errors into HTTP responses.
package apierr

import (
	"errors"
	"net/http"

	"fieldops-app/internal/domain/accounts"
	"fieldops-app/internal/domain/havs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Status maps err to the response code the API uses for it.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, havs.ErrNotFound), errors.Is(err, havs.ErrMemberNotFound):
		return http.StatusNotFound
	case errors.Is(err, havs.ErrWeekExists), errors.Is(err, accounts.ErrEmailTaken), errors.Is(err, accounts.ErrOwnsWeeks):
		return http.StatusConflict
	case errors.Is(err, havs.ErrWeekSubmitted):
		return http.StatusLocked
	case errors.Is(err, havs.ErrNothingToSubmit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, accounts.ErrAdminExists):
		return http.StatusForbidden
	case havs.IsValidation(err), accounts.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes {"error": ...} for err. Unexpected errors are logged and the
// client only sees fallback.
func Respond(c *gin.Context, err error, fallback string) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		zap.L().Error(fallback,
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
