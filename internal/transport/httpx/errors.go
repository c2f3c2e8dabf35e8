// Package httpx holds the request plumbing shared by the HTTP handlers.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/prompt-vault/internal/domain/record"
)

// Status maps an error onto its HTTP status and the short code sent as
// "error" in the response body.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, record.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, record.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, record.ErrVersionConflict):
		return http.StatusConflict, "version_conflict"
	case errors.Is(err, record.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, record.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, record.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable"
	}
	return http.StatusInternalServerError, "internal"
}

// WriteError replies with the mapped status. Client errors carry the error
// text as detail; server errors are logged and the detail withheld.
func WriteError(c *gin.Context, err error) {
	status, code := Status(err)
	body := gin.H{"error": code}

	switch {
	case status == http.StatusUnauthorized:
		c.Header("WWW-Authenticate", "Bearer")
	case status >= http.StatusInternalServerError:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "status", status, "error", err)
		if status == http.StatusServiceUnavailable {
			c.Header("Retry-After", "1")
		}
		c.AbortWithStatusJSON(status, body)
		return
	}
	body["detail"] = err.Error()
	c.AbortWithStatusJSON(status, body)
}
