package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"geomark/internal/domain"
)

// writeError renders {"error": msg}. Unknown errors are logged and reported
// as a generic 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	code, msg := resolveError(err)
	if code == http.StatusInternalServerError {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"request_id": c.GetString(requestIDKey),
		}).Error("unhandled error")
	}
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

func resolveError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest, "email already in use"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, "invalid credentials"
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusUnauthorized, "missing token"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusForbidden, "invalid token"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "marker not found"
	}
	return http.StatusInternalServerError, "internal server error"
}

// validationMessage drops the sentinel prefix, leaving e.g. "lat and lng are required".
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	if msg == domain.ErrValidation.Error() {
		return "invalid request"
	}
	return msg
}

// bindError converts a gin binding failure into a validation error.
func bindError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fieldError(fe))
		}
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: invalid request body", domain.ErrValidation)
}

func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
