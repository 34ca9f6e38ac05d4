package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/server/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// toStatus maps service errors onto gRPC status codes. Unexpected errors
// are logged and reported as Internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, common.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "not authenticated")
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, "access denied")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	default:
		s.logger.Error(ctx, "rpc failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

// Login verifies the credentials and returns the new session token with
// the caller identity.
func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, identity, err := s.auth.Login(ctx, stringField(req, fieldUsername), stringField(req, fieldPassword))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return loginMessage(session, identity), nil
}

// Logout revokes the session named in metadata, if any.
func (s *GRPCServer) Logout(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.auth.Logout(ctx, tokenFromContext(ctx)); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	identity := auth.IdentityFromContext(ctx)
	if err := auth.Authorize(identity, auth.Authenticated); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return identityMessage(identity), nil
}

func (s *GRPCServer) ListPosts(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	list, err := s.posts.List(ctx, auth.IdentityFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return postListMessage(list), nil
}

func (s *GRPCServer) CreatePost(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	post, err := s.posts.Create(ctx, auth.IdentityFromContext(ctx), req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return postMessage(post), nil
}

func (s *GRPCServer) DeletePost(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.posts.Delete(ctx, auth.IdentityFromContext(ctx), req.GetValue()); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}
