package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// JSONCodec carries plain Go structs as JSON. It replaces Connect's default
// protojson codec under the same "json" name.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}
