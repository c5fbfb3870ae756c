package nodeapigrpc

import (
	"context"
	"net"

	"github.com/blockberries/nodeapi/logging"
	"github.com/blockberries/nodeapi/server"
	"github.com/blockberries/nodeapi/types"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// RequestIDHeader is the metadata key carrying a caller-chosen request
// ID.
const RequestIDHeader = "x-request-id"

// Compile-time interface check.
var _ NodeAPIServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes a node API server over gRPC. Domain types are
// serialized directly via cramberry.
type GRPCServer struct {
	srv *server.Server
}

// NewGRPCServer creates a gRPC server wrapping srv.
func NewGRPCServer(srv *server.Server) *GRPCServer {
	return &GRPCServer{srv: srv}
}

// Register adds the node API service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterNodeAPIServiceServer(gs, s)
}

// Serve starts a new gRPC server on the given listener. The request ID
// interceptor is always installed.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := s.NewServer(opts...)
	return gs.Serve(lis)
}

// NewServer returns a gRPC server with the service registered and the
// request ID interceptor installed.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(RequestIDInterceptor()))
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs
}

// Stop gracefully stops the gRPC server.
func (s *GRPCServer) Stop(gs *grpc.Server) {
	gs.GracefulStop()
}

// Server returns the underlying server for advanced use.
func (s *GRPCServer) Server() *server.Server {
	return s.srv
}

func (s *GRPCServer) APIs(context.Context, *APIsRequest) (*APIsResponse, error) {
	return &APIsResponse{APIs: s.srv.APIs()}, nil
}

func (s *GRPCServer) ListEntities(ctx context.Context, req *ListEntitiesRequest) (*types.EntityIteratorResponse, error) {
	resp, err := s.srv.ListEntities(ctx, req.Request())
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

func (s *GRPCServer) ListKeyValueStoreKeys(ctx context.Context, req *ListKeyValueStoreKeysRequest) (*types.KeyValueStoreIteratorResponse, error) {
	resp, err := s.srv.ListKeyValueStoreKeys(ctx, req.Request())
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// RequestIDInterceptor tags every call's context with the "grpc" source
// and the caller's x-request-id, or a fresh one.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(RequestIDHeader); len(vals) > 0 {
				id = vals[0]
			}
		}
		if id == "" {
			id = logging.NewRequestID()
		}
		ctx = logging.WithSource(ctx, "grpc")
		ctx = logging.WithRequestID(ctx, id)
		return handler(ctx, req)
	}
}
