package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "frege.v1.ParserService"

const (
	methodParse    = "/" + ServiceName + "/Parse"
	methodEvaluate = "/" + ServiceName + "/Evaluate"
	methodHistory  = "/" + ServiceName + "/History"
)

// ParserServiceServer is the server API for frege.v1.ParserService. Messages
// are google.protobuf.Struct values; see codec.go for their fields.
type ParserServiceServer interface {
	Parse(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	History(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterParserServiceServer registers srv on s
func RegisterParserServiceServer(s grpc.ServiceRegistrar, srv ParserServiceServer) {
	s.RegisterService(&ParserServiceDesc, srv)
}

// ParserServiceDesc describes frege.v1.ParserService
var ParserServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ParserServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Parse", Handler: unaryHandler(methodParse, ParserServiceServer.Parse)},
		{MethodName: "Evaluate", Handler: unaryHandler(methodEvaluate, ParserServiceServer.Evaluate)},
		{MethodName: "History", Handler: unaryHandler(methodHistory, ParserServiceServer.History)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "frege/v1/parser.proto",
}

type structMethod func(ParserServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ParserServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ParserServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
