package nodeapigrpc

import (
	"context"
	"fmt"

	"github.com/blockberries/nodeapi"
	"github.com/blockberries/nodeapi/logging"
	"github.com/blockberries/nodeapi/types"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Compile-time interface checks.
var (
	_ nodeapi.Connection = (*Client)(nil)
	_ nodeapi.Service    = (*Client)(nil)
)

// Client implements nodeapi.Connection for remote nodes over gRPC
// using cramberry serialization.
type Client struct {
	cc   *grpc.ClientConn
	apis types.APISet
}

// Dial connects to a remote node and discovers the APIs it serves.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("nodeapi client: dial %s: %w", addr, err)
	}
	c := &Client{cc: cc}

	resp := new(APIsResponse)
	if err := cc.Invoke(ctx, fullMethod("APIs"), &APIsRequest{}, resp); err != nil {
		cc.Close()
		return nil, fmt.Errorf("nodeapi client: discover apis: %w", fromStatus(err))
	}
	c.apis = resp.APIs
	return c, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

func (c *Client) APIs() types.APISet { return c.apis }

func (c *Client) AsEngineState() nodeapi.EngineState {
	if c.apis.Has(types.APIEngineState) {
		return c
	}
	return nil
}

func (c *Client) AsBrowse() nodeapi.Browse {
	if c.apis.Has(types.APIBrowse) {
		return c
	}
	return nil
}

func (c *Client) ListEntities(ctx context.Context, req types.EntityIteratorRequest) (types.EntityIteratorResponse, error) {
	resp := new(types.EntityIteratorResponse)
	if err := c.cc.Invoke(outgoing(ctx), fullMethod("ListEntities"), newListEntitiesRequest(req), resp); err != nil {
		return types.EntityIteratorResponse{}, fromStatus(err)
	}
	if resp.Page == nil {
		resp.Page = []types.ListedEntityItem{}
	}
	return *resp, nil
}

func (c *Client) ListKeyValueStoreKeys(ctx context.Context, req types.KeyValueStoreIteratorRequest) (types.KeyValueStoreIteratorResponse, error) {
	resp := new(types.KeyValueStoreIteratorResponse)
	if err := c.cc.Invoke(outgoing(ctx), fullMethod("ListKeyValueStoreKeys"), newListKeyValueStoreKeysRequest(req), resp); err != nil {
		return types.KeyValueStoreIteratorResponse{}, fromStatus(err)
	}
	if resp.Page == nil {
		resp.Page = []types.KeyValueStoreMapKey{}
	}
	return *resp, nil
}

// outgoing forwards the request ID carried by ctx, if any.
func outgoing(ctx context.Context) context.Context {
	if id, ok := logging.RequestID(ctx); ok {
		return metadata.AppendToOutgoingContext(ctx, RequestIDHeader, id)
	}
	return ctx
}
