package configstore

import (
	"encoding/json"

	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/server"
)

// Target files store launch config under a "type" key (the Claude
// convention) rather than the canonical "transport", and do not carry
// registry-only metadata (tags, description, disabled).
var registryOnlyFields = []string{"name", "tags", "description", "disabled", "transport"}

// encodeEntry converts a definition into the target-file entry shape.
func encodeEntry(def *server.Definition) map[string]any {
	// Round-trip through the definition's own marshaler so unknown fields
	// captured from a previous read are carried along.
	data, err := json.Marshal(def)
	if err != nil {
		// Definition marshaling only fails on corrupt unknown fields;
		// fall back to the known fields.
		data, _ = json.Marshal(def.Clone())
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		entry = map[string]any{}
	}

	transport := def.EffectiveTransport()
	for _, field := range registryOnlyFields {
		delete(entry, field)
	}
	if transport != "" && transport != server.TransportStdio {
		entry["type"] = transport
	}

	return entry
}

// decodeEntry converts a target-file entry back into a definition.
// The entry key provides the name; a "type" key maps to transport.
func decodeEntry(name string, entry map[string]any) (*server.Definition, error) {
	normalized := make(map[string]any, len(entry)+1)
	for k, v := range entry {
		normalized[k] = v
	}
	if t, ok := normalized["type"].(string); ok {
		normalized["transport"] = t
		delete(normalized, "type")
	}
	normalized["name"] = name

	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, errors.Wrap(err, "normalizing entry")
	}

	var def server.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrap(err, "decoding entry")
	}
	return &def, nil
}
