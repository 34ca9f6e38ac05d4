package httpapi

import (
	"time"

	"github.com/dmitrijs2005/bacheca/internal/server/auth"
	"github.com/dmitrijs2005/bacheca/internal/server/models"
	"github.com/gin-gonic/gin"
)

// resolveSession turns the session cookie into an identity (possibly nil)
// stored in the request context. Handlers decide what level they need.
func (s *Server) resolveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		identity, err := s.auth.Resolve(ctx, auth.TokenFromRequest(c.Request))
		if err != nil {
			s.writeError(c, err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(ctx, identity))
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		s.metrics.RecordRequest(c.Request.Method, route, status)
		s.logger.Debug(c.Request.Context(), "request",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start).String(),
		)
	}
}

func identityOf(c *gin.Context) *models.Identity {
	return auth.IdentityFromContext(c.Request.Context())
}
