package grpc

import (
	"context"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func tokenFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.SessionCookieName)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// sessionInterceptor resolves the session token into an identity (possibly
// nil) stored in ctx. Login is let through untouched.
func (s *GRPCServer) sessionInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod == fullMethod("Login") {
		return handler(ctx, req)
	}

	identity, err := s.auth.Resolve(ctx, tokenFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return handler(auth.WithIdentity(ctx, identity), req)
}
