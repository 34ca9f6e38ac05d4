package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "bacheca.Bacheca"

// BachecaServer is the RPC surface. Messages are protobuf well-known types;
// the field layout of each Struct is fixed in messages.go. Calls other than
// Login read the session token from the session_id metadata key.
type BachecaServer interface {
	// Login takes {username, password} and returns {token, expires_at, identity}.
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	// Me returns the caller identity {id, username, is_admin}.
	Me(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// ListPosts returns posts newest first, one Struct per post.
	ListPosts(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	// CreatePost takes the post content and returns the stored post.
	CreatePost(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// DeletePost takes the post id.
	DeletePost(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
}

func fullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

// unary builds a MethodDesc that decodes Req and dispatches through the
// server's interceptor chain.
func unary[Req, Resp any](name string, call func(BachecaServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BachecaServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BachecaServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*BachecaServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Login", BachecaServer.Login),
		unary("Logout", BachecaServer.Logout),
		unary("Me", BachecaServer.Me),
		unary("ListPosts", BachecaServer.ListPosts),
		unary("CreatePost", BachecaServer.CreatePost),
		unary("DeletePost", BachecaServer.DeletePost),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bacheca",
}
