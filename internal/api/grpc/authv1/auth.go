// Package authv1 declares the tokenkeeper.v1.Auth gRPC service.
// Messages travel as JSON, see package codec.
package authv1

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/dtroode/tokenkeeper/internal/api/grpc/codec"
	"github.com/dtroode/tokenkeeper/internal/model"
)

const ServiceName = "tokenkeeper.v1.Auth"

// Full method names.
const (
	RegisterFullMethod  = "/" + ServiceName + "/Register"
	LoginFullMethod     = "/" + ServiceName + "/Login"
	RefreshFullMethod   = "/" + ServiceName + "/Refresh"
	RevokeFullMethod    = "/" + ServiceName + "/Revoke"
	RevokeAllFullMethod = "/" + ServiceName + "/RevokeAll"
	MeFullMethod        = "/" + ServiceName + "/Me"
)

// Empty is a message without fields.
type Empty struct{}

// Profile describes the authenticated user.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthServer is the server API for the Auth service.
type AuthServer interface {
	Register(context.Context, *model.RegisterRequest) (*model.AuthResult, error)
	Login(context.Context, *model.LoginRequest) (*model.AuthResult, error)
	Refresh(context.Context, *model.RefreshRequest) (*model.AuthResult, error)
	Revoke(context.Context, *model.RevokeRequest) (*Empty, error)
	RevokeAll(context.Context, *Empty) (*Empty, error)
	Me(context.Context, *Empty) (*Profile, error)
}

// RegisterAuthServer registers srv on s.
func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

func unaryHandler[Req, Resp any](fullMethod string, call func(AuthServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AuthServiceDesc is the grpc.ServiceDesc for the Auth service.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(RegisterFullMethod, AuthServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(LoginFullMethod, AuthServer.Login)},
		{MethodName: "Refresh", Handler: unaryHandler(RefreshFullMethod, AuthServer.Refresh)},
		{MethodName: "Revoke", Handler: unaryHandler(RevokeFullMethod, AuthServer.Revoke)},
		{MethodName: "RevokeAll", Handler: unaryHandler(RevokeAllFullMethod, AuthServer.RevokeAll)},
		{MethodName: "Me", Handler: unaryHandler(MeFullMethod, AuthServer.Me)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tokenkeeper/v1/auth",
}

// AuthClient calls the Auth service using the JSON codec.
type AuthClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthClient(cc grpc.ClientConnInterface) *AuthClient {
	return &AuthClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthClient) Register(ctx context.Context, in *model.RegisterRequest, opts ...grpc.CallOption) (*model.AuthResult, error) {
	return invoke[model.AuthResult](ctx, c.cc, RegisterFullMethod, in, opts)
}

func (c *AuthClient) Login(ctx context.Context, in *model.LoginRequest, opts ...grpc.CallOption) (*model.AuthResult, error) {
	return invoke[model.AuthResult](ctx, c.cc, LoginFullMethod, in, opts)
}

func (c *AuthClient) Refresh(ctx context.Context, in *model.RefreshRequest, opts ...grpc.CallOption) (*model.AuthResult, error) {
	return invoke[model.AuthResult](ctx, c.cc, RefreshFullMethod, in, opts)
}

func (c *AuthClient) Revoke(ctx context.Context, in *model.RevokeRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, RevokeFullMethod, in, opts)
}

func (c *AuthClient) RevokeAll(ctx context.Context, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, RevokeAllFullMethod, &Empty{}, opts)
}

func (c *AuthClient) Me(ctx context.Context, opts ...grpc.CallOption) (*Profile, error) {
	return invoke[Profile](ctx, c.cc, MeFullMethod, &Empty{}, opts)
}
