package locations

import (
	"github.com/goccy/go-json"
)

// Codec serialises handler results and decodes JSON bodies.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	ContentType() string
}

// JSONCodec is the default Codec, backed by goccy/go-json.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSONCodec) ContentType() string {
	return "application/json; charset=utf-8"
}
