package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/gin-gonic/gin"
)

// statusFor maps service errors to HTTP status codes. Anything unknown is
// an infrastructure fault.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized, "not authenticated"
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusBadRequest, "username already exists"
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	code, detail := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(code, gin.H{"detail": detail})
}
