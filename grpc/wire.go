package nodeapigrpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/blockberries/nodeapi"
	"github.com/blockberries/nodeapi/server"
	"github.com/blockberries/nodeapi/types"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Transport-specific wrapper types for RPC methods whose interface
// signatures don't map to a single request/response struct.

// APIsRequest is the (empty) request for API discovery.
type APIsRequest struct{}

// APIsResponse carries the sub-APIs a node serves.
type APIsResponse struct {
	APIs types.APISet `cramberry:"1"`
}

// OptionalInt32 is a nullable int32 with an explicit presence flag.
// cramberry decodes a pointer to zero as nil, so optional request
// fields travel in this form.
type OptionalInt32 struct {
	Set   bool  `cramberry:"1"`
	Value int32 `cramberry:"2"`
}

// OptionalString is the string counterpart of OptionalInt32.
type OptionalString struct {
	Set   bool   `cramberry:"1"`
	Value string `cramberry:"2"`
}

// OptionalFilter is the entity filter counterpart of OptionalInt32.
type OptionalFilter struct {
	Set   bool                       `cramberry:"1"`
	Value types.EntityIteratorFilter `cramberry:"2"`
}

// ListEntitiesRequest is the wire form of types.EntityIteratorRequest.
type ListEntitiesRequest struct {
	MaxPageSize       OptionalInt32  `cramberry:"1"`
	ContinuationToken OptionalString `cramberry:"2"`
	Filter            OptionalFilter `cramberry:"3"`
}

// ListKeyValueStoreKeysRequest is the wire form of
// types.KeyValueStoreIteratorRequest.
type ListKeyValueStoreKeysRequest struct {
	EntityAddress     string         `cramberry:"1"`
	MaxPageSize       OptionalInt32  `cramberry:"2"`
	ContinuationToken OptionalString `cramberry:"3"`
}

func optionalInt32(v *int32) OptionalInt32 {
	if v == nil {
		return OptionalInt32{}
	}
	return OptionalInt32{Set: true, Value: *v}
}

func (o OptionalInt32) ptr() *int32 {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}

func optionalString(v *string) OptionalString {
	if v == nil {
		return OptionalString{}
	}
	return OptionalString{Set: true, Value: *v}
}

func (o OptionalString) ptr() *string {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}

func newListEntitiesRequest(req types.EntityIteratorRequest) *ListEntitiesRequest {
	w := &ListEntitiesRequest{
		MaxPageSize:       optionalInt32(req.MaxPageSize),
		ContinuationToken: optionalString(req.ContinuationToken),
	}
	if req.Filter != nil {
		w.Filter = OptionalFilter{Set: true, Value: *req.Filter}
	}
	return w
}

// Request converts the wire form back to the domain request.
func (r *ListEntitiesRequest) Request() types.EntityIteratorRequest {
	req := types.EntityIteratorRequest{
		MaxPageSize:       r.MaxPageSize.ptr(),
		ContinuationToken: r.ContinuationToken.ptr(),
	}
	if r.Filter.Set {
		f := r.Filter.Value
		req.Filter = &f
	}
	return req
}

func newListKeyValueStoreKeysRequest(req types.KeyValueStoreIteratorRequest) *ListKeyValueStoreKeysRequest {
	return &ListKeyValueStoreKeysRequest{
		EntityAddress:     req.EntityAddress,
		MaxPageSize:       optionalInt32(req.MaxPageSize),
		ContinuationToken: optionalString(req.ContinuationToken),
	}
}

// Request converts the wire form back to the domain request.
func (r *ListKeyValueStoreKeysRequest) Request() types.KeyValueStoreIteratorRequest {
	return types.KeyValueStoreIteratorRequest{
		EntityAddress:     r.EntityAddress,
		MaxPageSize:       r.MaxPageSize.ptr(),
		ContinuationToken: r.ContinuationToken.ptr(),
	}
}

// toStatus converts a server error into a gRPC status error. Client
// errors keep their field in a BadRequest detail and missing items
// their kind and ID in a ResourceInfo detail.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if reqErr, ok := nodeapi.IsRequestError(err); ok {
		st := status.New(codes.InvalidArgument, err.Error())
		if ds, derr := st.WithDetails(&errdetails.BadRequest{
			FieldViolations: []*errdetails.BadRequest_FieldViolation{{
				Field:       reqErr.Field,
				Description: reqErr.Err.Error(),
			}},
		}); derr == nil {
			st = ds
		}
		return st.Err()
	}
	if nf, ok := nodeapi.IsNotFound(err); ok {
		st := status.New(codes.NotFound, err.Error())
		if ds, derr := st.WithDetails(&errdetails.ResourceInfo{
			ResourceType: nf.Kind,
			ResourceName: nf.ID,
		}); derr == nil {
			st = ds
		}
		return st.Err()
	}
	switch {
	case errors.Is(err, server.ErrNotReady):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, server.ErrAPINotServed):
		return status.Error(codes.Unimplemented, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Internal, err.Error())
}

// fromStatus is the inverse of toStatus: it restores the typed errors
// callers of a nodeapi.Connection can inspect. Unknown statuses are
// returned unchanged.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.InvalidArgument:
		for _, d := range st.Details() {
			if br, ok := d.(*errdetails.BadRequest); ok && len(br.GetFieldViolations()) > 0 {
				v := br.GetFieldViolations()[0]
				return nodeapi.NewRequestError(v.GetField(), errors.New(v.GetDescription()))
			}
		}
	case codes.NotFound:
		for _, d := range st.Details() {
			if ri, ok := d.(*errdetails.ResourceInfo); ok {
				return nodeapi.NewItemNotFoundError(ri.GetResourceType(), ri.GetResourceName())
			}
		}
	case codes.Unavailable:
		return fmt.Errorf("%w (remote: %s)", server.ErrNotReady, st.Message())
	case codes.Unimplemented:
		return fmt.Errorf("%w (remote: %s)", server.ErrAPINotServed, st.Message())
	}
	return err
}
