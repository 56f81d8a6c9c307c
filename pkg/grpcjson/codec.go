// Package grpcjson registers a JSON codec for gRPC so services can exchange
// plain Go structs without generated protobuf messages. Clients select it with
// grpc.CallContentSubtype(grpcjson.Name); servers pick it up from the
// content-subtype of each request.
package grpcjson

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const Name = "json"

type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (Codec) Name() string {
	return Name
}

func init() {
	encoding.RegisterCodec(Codec{})
}
