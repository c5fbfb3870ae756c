package nodeapigrpc

import (
	"context"
	"fmt"

	"github.com/blockberries/nodeapi/types"

	"google.golang.org/grpc"
)

const serviceName = "github.com/blockberries/nodeapi.v1.NodeAPIService"

// NodeAPIServiceServer is the server-side interface of the node API
// gRPC service.
type NodeAPIServiceServer interface {
	APIs(context.Context, *APIsRequest) (*APIsResponse, error)
	ListEntities(context.Context, *ListEntitiesRequest) (*types.EntityIteratorResponse, error)
	ListKeyValueStoreKeys(context.Context, *ListKeyValueStoreKeysRequest) (*types.KeyValueStoreIteratorResponse, error)
}

// RegisterNodeAPIServiceServer registers srv on a gRPC server.
func RegisterNodeAPIServiceServer(s *grpc.Server, srv NodeAPIServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

func handlerAPIs(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(APIsRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeAPIServiceServer).APIs(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("APIs")}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(NodeAPIServiceServer).APIs(ctx, req.(*APIsRequest))
	})
}

func handlerListEntities(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(ListEntitiesRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeAPIServiceServer).ListEntities(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ListEntities")}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(NodeAPIServiceServer).ListEntities(ctx, req.(*ListEntitiesRequest))
	})
}

func handlerListKeyValueStoreKeys(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(ListKeyValueStoreKeysRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeAPIServiceServer).ListKeyValueStoreKeys(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ListKeyValueStoreKeys")}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(NodeAPIServiceServer).ListKeyValueStoreKeys(ctx, req.(*ListKeyValueStoreKeysRequest))
	})
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor for the node API.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*NodeAPIServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "APIs", Handler: handlerAPIs},
		{MethodName: "ListEntities", Handler: handlerListEntities},
		{MethodName: "ListKeyValueStoreKeys", Handler: handlerListKeyValueStoreKeys},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "github.com/blockberries/nodeapi/v1/service.cram",
}
