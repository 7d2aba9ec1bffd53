package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avoronins/inkpost/internal/common"
)

// abortWithError translates a service error into an HTTP status and a
// {"message": ...} body and aborts the request.
func (s *Server) abortWithError(c *gin.Context, err error) {
	status, message := statusForError(err)

	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	}

	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrTokenRevoked):
		return http.StatusUnauthorized, "Token revoked"
	case errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict, "Already exists"
	case errors.Is(err, common.ErrValidation):
		return http.StatusUnprocessableEntity, validationMessage(err)
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

// validationMessage strips the sentinel prefix so the client sees only the
// human-readable part ("username must be between 3 and 64 characters").
func validationMessage(err error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, common.ErrValidation.Error()+": "); ok {
		return rest
	}
	return msg
}
