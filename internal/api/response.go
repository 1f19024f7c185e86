// Package api defines the JSON envelopes shared by every HTTP handler and
// the mapping from domain errors to HTTP status codes.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"account_backend/internal/feature/account/domain"
)

const (
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// MessageResponse is a success body carrying only a message.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusCode maps a domain error kind to its HTTP status.
// Unclassified errors are treated as internal failures.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrAuth):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as an ErrorResponse and aborts the gin chain.
// Internal details are logged but never written to the client.
func WriteError(c *gin.Context, err error) {
	code := StatusCode(err)
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"error", err, "method", c.Request.Method, "path", c.FullPath())
	}
	c.AbortWithStatusJSON(code, ErrorResponse{Status: StatusFailed, Message: domain.Message(err)})
}
