package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vidshare/pkg/apperr"
)

// ErrorHandler renders the first error pushed with c.Error as {"message": ...}.
// Server side failures are logged with their cause.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors[0].Err
		status := apperr.Status(err)
		if status >= http.StatusInternalServerError {
			slog.Error("request failed",
				"request_id", c.GetString(RequestIDKey),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
		}
		if c.Writer.Written() {
			return
		}
		c.JSON(status, gin.H{"message": apperr.PublicMessage(err)})
	}
}
