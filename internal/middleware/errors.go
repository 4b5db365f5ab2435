package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
)

// ErrorHandler writes the last error attached with c.Error as
// {"success": false, "message": ...}. It must run before any middleware or
// handler that reports errors.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := apperror.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			slog.ErrorContext(c.Request.Context(), "request failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status", status,
				"error", err)
		}
		c.JSON(status, gin.H{
			"success": false,
			"message": apperror.PublicMessage(err),
		})
	}
}

// NotFound answers unknown routes with the same envelope.
func NotFound(c *gin.Context) {
	_ = c.Error(apperror.NotFound("Route not found"))
}
