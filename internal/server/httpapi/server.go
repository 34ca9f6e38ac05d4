// Package httpapi is the cookie-based JSON API under /api. It is the only
// place that reads or writes the session cookie; everything below it works
// with explicit tokens and identities.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/bacheca/internal/logging"
	"github.com/dmitrijs2005/bacheca/internal/server/metrics"
	"github.com/dmitrijs2005/bacheca/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP adapter: a gin engine routing /api to the services
// and /metrics to the Prometheus registry.
//
// Fields:
//   - address: listen address for Run.
//   - engine: the configured gin router.
//   - auth, users, posts: services behind the handlers.
//   - metrics: request and domain counters; nil disables /metrics.
type Server struct {
	address string
	engine  *gin.Engine
	auth    *services.AuthService
	users   *services.UserService
	posts   *services.PostService
	logger  logging.Logger
	metrics *metrics.Metrics
}

// NewServer builds the router. Nothing listens until Run is called.
func NewServer(address string, l logging.Logger, mt *metrics.Metrics,
	as *services.AuthService, us *services.UserService, ps *services.PostService) *Server {

	s := &Server{
		address: address,
		auth:    as,
		users:   us,
		posts:   ps,
		logger:  l.With("module", "http_server"),
		metrics: mt,
	}
	s.engine = s.routes()
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api", s.resolveSession())

	api.POST("/auth/login", s.login)
	api.POST("/auth/logout", s.logout)
	api.GET("/auth/me", s.me)

	api.GET("/users", s.listUsers)
	api.POST("/users", s.createUser)
	api.DELETE("/users/:id", s.deleteUser)
	api.PUT("/users/:id/password", s.updatePassword)

	api.GET("/posts", s.listPosts)
	api.POST("/posts", s.createPost)
	api.GET("/posts/search", s.searchPosts)
	api.GET("/posts/user/:id", s.listUserPosts)
	api.DELETE("/posts/:id", s.deletePost)

	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
