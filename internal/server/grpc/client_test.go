package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// rpcClient calls the Bacheca service over a connection and attaches the
// token returned by Login to later calls.
type rpcClient struct {
	cc    grpc.ClientConnInterface
	token string
}

type loginResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  *models.Identity
}

func newRPCClient(cc grpc.ClientConnInterface) *rpcClient {
	return &rpcClient{cc: cc}
}

func (c *rpcClient) invoke(ctx context.Context, method string, in, out any) error {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, common.SessionCookieName, c.token)
	}
	return c.cc.Invoke(ctx, fullMethod(method), in, out)
}

func (c *rpcClient) Login(ctx context.Context, username, password string) (*loginResult, error) {
	out := &structpb.Struct{}
	if err := c.invoke(ctx, "Login", credentialsMessage(username, password), out); err != nil {
		return nil, err
	}
	res := &loginResult{
		Token:     stringField(out, fieldToken),
		ExpiresAt: parseTime(stringField(out, fieldExpiresAt)),
		Identity:  identityFromMessage(out.GetFields()[fieldIdentity].GetStructValue()),
	}
	c.token = res.Token
	return res, nil
}

func (c *rpcClient) Logout(ctx context.Context) error {
	return c.invoke(ctx, "Logout", &emptypb.Empty{}, &emptypb.Empty{})
}

func (c *rpcClient) Me(ctx context.Context) (*models.Identity, error) {
	out := &structpb.Struct{}
	if err := c.invoke(ctx, "Me", &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return identityFromMessage(out), nil
}

func (c *rpcClient) ListPosts(ctx context.Context) ([]*models.Post, error) {
	out := &structpb.ListValue{}
	if err := c.invoke(ctx, "ListPosts", &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return postsFromMessage(out), nil
}

func (c *rpcClient) CreatePost(ctx context.Context, content string) (*models.Post, error) {
	out := &structpb.Struct{}
	if err := c.invoke(ctx, "CreatePost", wrapperspb.String(content), out); err != nil {
		return nil, err
	}
	return postFromMessage(out), nil
}

func (c *rpcClient) DeletePost(ctx context.Context, id string) error {
	return c.invoke(ctx, "DeletePost", wrapperspb.String(id), &emptypb.Empty{})
}
