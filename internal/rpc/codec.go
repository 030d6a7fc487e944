// Package rpc defines the fabricd control-plane service: the request and
// reply types exchanged over gRPC, a grpc.ServiceDesc hand-written against
// those types, and the JSON codec used to move them across the wire.
//
// The teacher's generated protobuf client/server stubs (internal/api/...)
// were never retrieved into the reference pack handed to us, so there is no
// .proto to regenerate from and no way to hand-author replacement .pb.go
// files that could be trusted without a compiler to check them against. A
// grpc.ServiceDesc built directly against plain Go structs, paired with a
// JSON codec registered through the encoding package, gets the same
// streaming/transport/interceptor machinery real protobuf services get
// without depending on generated code at all.
package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName is negotiated with the server via grpc.CallContentSubtype.
const codecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec implements encoding.Codec by marshaling request/reply structs as
// JSON instead of protobuf wire format.
type jsonCodec struct{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpc: marshal %T: %w", v, err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("rpc: unmarshal into %T: %w", v, err)
	}
	return nil
}
