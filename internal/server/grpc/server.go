// Package grpc exposes login and the board over gRPC. Messages are protobuf
// well-known types carried by the default proto codec. The session token
// travels in the session_id metadata key.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/bacheca/internal/logging"
	"github.com/dmitrijs2005/bacheca/internal/server/services"
	"google.golang.org/grpc"
)

// GRPCServer implements BachecaServer on top of the auth and post services.
//
// Fields:
//   - address: TCP address to listen on.
//   - auth: resolves session tokens and handles login/logout.
//   - posts: board operations.
//   - logger: module-scoped logger.
type GRPCServer struct {
	address string
	auth    *services.AuthService
	posts   *services.PostService
	logger  logging.Logger
}

// NewGRPCServer returns a server bound to address a. Nothing listens until
// Run is called.
func NewGRPCServer(a string, l logging.Logger, as *services.AuthService, ps *services.PostService) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		auth:    as,
		posts:   ps,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.sessionInterceptor),
	)
	srv.RegisterService(&serviceDesc, s)
	return srv
}

// Run serves on the configured address until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
