// Package api exposes the session service over gRPC as arena.v1.ArenaService.
// Requests and responses are google.protobuf.Struct messages.
package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "arena.v1.ArenaService"

// ArenaServer is the server API for arena.v1.ArenaService.
type ArenaServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Draw(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DrawMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PlayRound(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListCollection(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Leaderboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	History(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Purge(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryFunc func(ArenaServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func method(name string, fn unaryFunc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(ArenaServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(srv.(ArenaServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ServiceDesc describes arena.v1.ArenaService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ArenaServer)(nil),
	Methods: []grpc.MethodDesc{
		method("Register", ArenaServer.Register),
		method("Login", ArenaServer.Login),
		method("Logout", ArenaServer.Logout),
		method("Draw", ArenaServer.Draw),
		method("DrawMatch", ArenaServer.DrawMatch),
		method("StartMatch", ArenaServer.StartMatch),
		method("PlayRound", ArenaServer.PlayRound),
		method("GetMatch", ArenaServer.GetMatch),
		method("ListCollection", ArenaServer.ListCollection),
		method("Leaderboard", ArenaServer.Leaderboard),
		method("History", ArenaServer.History),
		method("Purge", ArenaServer.Purge),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "arena/v1/arena.proto",
}

// RegisterArenaServer registers srv on s.
func RegisterArenaServer(s grpc.ServiceRegistrar, srv ArenaServer) {
	s.RegisterService(&ServiceDesc, srv)
}
