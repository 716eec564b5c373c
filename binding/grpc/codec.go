package grpc

import (
	"github.com/aqua-stark/world-binding/common/cbor"
)

// CBORCodec implements gRPC's encoding.Codec interface.
type CBORCodec struct{}

func (c *CBORCodec) Marshal(v any) ([]byte, error) {
	return cbor.Marshal(v), nil
}

func (c *CBORCodec) Unmarshal(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

func (c *CBORCodec) Name() string {
	return "cbor"
}

func (c *CBORCodec) String() string {
	return c.Name()
}
