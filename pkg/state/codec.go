package state

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Codec converts a slot value to and from its persisted text form.
// Implementations must round-trip losslessly and preserve slice order.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// Ext is the conventional file extension for the encoding (e.g. ".json").
	Ext() string
}

// JSONCodec encodes slot values as indented JSON.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSONCodec) Ext() string { return ".json" }

// YAMLCodec encodes slot values as YAML documents.
type YAMLCodec struct{}

func (YAMLCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (YAMLCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

func (YAMLCodec) Ext() string { return ".yaml" }

// CodecFor returns the codec registered under a format name ("json", "yaml", "yml").
// The second result is false for unknown formats.
func CodecFor(format string) (Codec, bool) {
	switch format {
	case "", "json":
		return JSONCodec{}, true
	case "yaml", "yml":
		return YAMLCodec{}, true
	default:
		return nil, false
	}
}
