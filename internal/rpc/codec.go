// Package rpc defines the Connect procedures and messages of the groupledger API.
//
// Messages are plain Go structs carried by a JSON codec, so clients speak the
// Connect protocol with "application/json" (unary) or
// "application/connect+json" (streaming) bodies.
package rpc

import (
	"fmt"

	"connectrpc.com/connect"
	"github.com/pquerna/ffjson/ffjson"
)

// Codec marshals messages as JSON with ffjson, which falls back to reflection
// for types without generated marshalers. It registers under the name "json",
// replacing Connect's protobuf-only JSON codec.
type Codec struct{}

var _ connect.Codec = Codec{}

// Name implements connect.Codec.
func (Codec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := ffjson.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", msg, err)
	}
	return data, nil
}

// Unmarshal implements connect.Codec. An empty body leaves msg zero-valued.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := ffjson.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", msg, err)
	}
	return nil
}

// HandlerOptions returns the options every handler is built with.
func HandlerOptions(extra ...connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, extra...)
}

// ClientOptions returns the options every client is built with.
func ClientOptions(extra ...connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, extra...)
}
