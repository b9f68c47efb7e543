package configstore

import (
	"bytes"
	"encoding/json"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/thoreinstein/mcpsync/internal/errors"
)

// Codec serializes a whole target document. Encoding is deterministic so
// writing the same document twice produces identical bytes; that is what
// makes deploy-then-undeploy restore a store-written file's content hash.
type Codec interface {
	Decode(data []byte) (map[string]any, error)
	Encode(doc map[string]any) ([]byte, error)
	Name() string
}

// JSON is the codec for JSON target documents (two-space indent, sorted
// keys, trailing newline).
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Decode(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding JSON document")
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func (jsonCodec) Encode(doc map[string]any) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding JSON document")
	}
	return append(data, '\n'), nil
}

// TOML is the codec for TOML target documents (Gemini CLI settings).
var TOML Codec = tomlCodec{}

type tomlCodec struct{}

func (tomlCodec) Name() string { return "toml" }

func (tomlCodec) Decode(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding TOML document")
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func (tomlCodec) Encode(doc map[string]any) ([]byte, error) {
	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "encoding TOML document")
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return data, nil
}
