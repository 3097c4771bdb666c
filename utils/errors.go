package utils

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/apperr"
)

// RespondError writes err in the standard envelope. Anything that is not an
// apperr.Error, and every internal error, is logged with request context and
// answered with a generic message.
func RespondError(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindInternal {
		slog.Error("❌ Internal error",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"user_id", GetCurrentUserID(c),
			"error", err,
		)
		c.JSON(apperr.KindInternal.HTTPStatus(), APIResponse{Success: false, Message: apperr.InternalMessage})
		return
	}
	c.JSON(e.Kind.HTTPStatus(), APIResponse{
		Success: false,
		Message: e.Message,
		Details: e.Details,
	})
}

// BindError answers a failed request binding as a validation error.
func BindError(c *gin.Context, err error) {
	RespondError(c, apperr.Wrap(apperr.KindValidation, "Invalid request body.", err).
		WithDetails(map[string]any{"error": err.Error()}))
}
