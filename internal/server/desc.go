package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "bok.v1.FieldExtractor"

// Full method names.
const (
	MethodExtractText   = "/" + serviceName + "/ExtractText"
	MethodProcessFile   = "/" + serviceName + "/ProcessFile"
	MethodListDocuments = "/" + serviceName + "/ListDocuments"
)

// FieldExtractorServer is the bok.v1.FieldExtractor service. Requests and
// responses are google.protobuf.Struct messages.
type FieldExtractorServer interface {
	// ExtractText takes {"text"} and returns {"record", "duration_ms"}.
	ExtractText(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ProcessFile takes {"path", "force"} and returns the stored outcome.
	ProcessFile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ListDocuments takes {"limit", "offset", "needs_review"} and returns {"documents"}.
	ListDocuments(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(FieldExtractorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FieldExtractorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FieldExtractorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// FieldExtractorServiceDesc is registered by RegisterFieldExtractorServer.
var FieldExtractorServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*FieldExtractorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ExtractText", Handler: unaryHandler(MethodExtractText, FieldExtractorServer.ExtractText)},
		{MethodName: "ProcessFile", Handler: unaryHandler(MethodProcessFile, FieldExtractorServer.ProcessFile)},
		{MethodName: "ListDocuments", Handler: unaryHandler(MethodListDocuments, FieldExtractorServer.ListDocuments)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bok/v1/fields.proto",
}

func RegisterFieldExtractorServer(s grpc.ServiceRegistrar, srv FieldExtractorServer) {
	s.RegisterService(&FieldExtractorServiceDesc, srv)
}

// Client calls a remote FieldExtractor.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) call(ctx context.Context, method string, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ExtractText(ctx context.Context, text string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodExtractText, map[string]any{"text": text}, opts...)
}

func (c *Client) ProcessFile(ctx context.Context, path string, force bool, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodProcessFile, map[string]any{"path": path, "force": force}, opts...)
}

func (c *Client) ListDocuments(ctx context.Context, limit, offset int, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodListDocuments, map[string]any{"limit": limit, "offset": offset}, opts...)
}
