// Package apiconnect wires the creditledger.v1 services to Connect handlers
// and clients.
package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
)

const (
	codecJSON        = "json"
	codecJSONCharset = "json; charset=utf-8"
)

// jsonCodec encodes plain Go messages with encoding/json. It replaces the
// default protojson codec, which only accepts generated protobuf messages.
type jsonCodec struct {
	name string
}

func (c jsonCodec) Name() string { return c.name }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// handlerOptions registers the JSON codec under both content-type spellings.
func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{
		connect.WithCodec(jsonCodec{name: codecJSON}),
		connect.WithCodec(jsonCodec{name: codecJSONCharset}),
	}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{
		connect.WithCodec(jsonCodec{name: codecJSON}),
	}, opts...)
}
