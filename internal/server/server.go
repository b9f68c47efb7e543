package server

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/thoreinstein/mcpsync/internal/errors"
)

// Transport type constants for MCP server communication.
const (
	// TransportStdio indicates local process communication via stdin/stdout.
	// This is the default transport when a Command is specified.
	TransportStdio = "stdio"

	// TransportHTTP indicates remote server communication via streamable HTTP.
	TransportHTTP = "http"

	// TransportSSE indicates remote server communication via Server-Sent Events.
	TransportSSE = "sse"

	// TransportContainer indicates a server launched from a container image.
	TransportContainer = "container"
)

// Transports returns all valid transport values.
func Transports() []string {
	return []string{TransportStdio, TransportHTTP, TransportSSE, TransportContainer}
}

// Definition is the canonical description of an MCP server as held by the
// registry. It is the unit of deployment: targets receive a translated copy
// of this definition under their server-map field.
type Definition struct {
	// Name is the server's unique identifier, used as the map key in both
	// the registry and target config files. Immutable once referenced by a
	// deployment.
	Name string `json:"name"`

	// Transport specifies the communication protocol.
	// Defaults to "stdio" if Command is set, "http" if URL is set.
	Transport string `json:"transport,omitempty"`

	// Command is the executable path for local (stdio) servers.
	Command string `json:"command,omitempty"`

	// Args are command-line arguments passed to the Command executable.
	Args []string `json:"args,omitempty"`

	// URL is the server endpoint for remote (http/sse) servers.
	URL string `json:"url,omitempty"`

	// Image is the container image for container transport.
	Image string `json:"image,omitempty"`

	// Env contains environment variables passed to the server process.
	// Values may be literals or secret references (see IsSecretRef).
	Env map[string]string `json:"env,omitempty"`

	// Headers contains HTTP headers for remote transport connections.
	Headers map[string]string `json:"headers,omitempty"`

	// Tags classify the server for search and suggestion purposes.
	Tags []string `json:"tags,omitempty"`

	// Description is free-form documentation shown in listings.
	Description string `json:"description,omitempty"`

	// Disabled indicates the server should not be offered for deployment.
	Disabled bool `json:"disabled,omitempty"`

	// unknownFields stores JSON fields not explicitly defined in this struct,
	// preserved through load/save round trips.
	unknownFields map[string]json.RawMessage
}

// Enabled reports whether the server is eligible for deployment.
func (d *Definition) Enabled() bool {
	return !d.Disabled
}

// EffectiveTransport returns the declared transport, or one inferred from
// the populated launch fields when transport is unset.
func (d *Definition) EffectiveTransport() string {
	if d.Transport != "" {
		return d.Transport
	}
	switch {
	case d.Command != "":
		return TransportStdio
	case d.URL != "":
		return TransportHTTP
	case d.Image != "":
		return TransportContainer
	}
	return ""
}

// IsLocal reports whether the server launches a local process.
func (d *Definition) IsLocal() bool {
	t := d.EffectiveTransport()
	return t == TransportStdio || t == TransportContainer
}

// Validate checks structural validity of the definition. A failure here is
// a ConfigurationInvalid condition: it blocks deployment to every target.
func (d *Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.Wrap(errors.ErrConfigurationInvalid, "server name is empty")
	}

	switch d.EffectiveTransport() {
	case TransportStdio:
		if strings.TrimSpace(d.Command) == "" {
			return errors.Wrapf(errors.ErrConfigurationInvalid, "%s: stdio transport requires a command", d.Name)
		}
	case TransportHTTP, TransportSSE:
		if strings.TrimSpace(d.URL) == "" {
			return errors.Wrapf(errors.ErrConfigurationInvalid, "%s: %s transport requires a url", d.Name, d.EffectiveTransport())
		}
	case TransportContainer:
		if strings.TrimSpace(d.Image) == "" && strings.TrimSpace(d.Command) == "" {
			return errors.Wrapf(errors.ErrConfigurationInvalid, "%s: container transport requires an image", d.Name)
		}
	default:
		return errors.Wrapf(errors.ErrConfigurationInvalid, "%s: unknown transport %q", d.Name, d.Transport)
	}

	return nil
}

// LaunchEqual reports whether two definitions describe the same launch:
// command, args, url, and image all match. Env, tags, and metadata are not
// part of launch identity.
func (d *Definition) LaunchEqual(other *Definition) bool {
	if other == nil {
		return false
	}
	if d.Command != other.Command || d.URL != other.URL || d.Image != other.Image {
		return false
	}
	if len(d.Args) != len(other.Args) {
		return false
	}
	for i := range d.Args {
		if d.Args[i] != other.Args[i] {
			return false
		}
	}
	return true
}

// EntryEqual reports whether two definitions would render the same target
// entry: launch identity plus env and headers. Tags, description, and other
// registry-only metadata are never written to targets, so they stay out.
func (d *Definition) EntryEqual(other *Definition) bool {
	if !d.LaunchEqual(other) {
		return false
	}
	return maps.Equal(d.Env, other.Env) && maps.Equal(d.Headers, other.Headers)
}

// Clone returns a deep copy of the definition.
func (d *Definition) Clone() *Definition {
	out := *d
	out.Args = append([]string(nil), d.Args...)
	out.Tags = append([]string(nil), d.Tags...)
	if d.Env != nil {
		out.Env = make(map[string]string, len(d.Env))
		for k, v := range d.Env {
			out.Env[k] = v
		}
	}
	if d.Headers != nil {
		out.Headers = make(map[string]string, len(d.Headers))
		for k, v := range d.Headers {
			out.Headers[k] = v
		}
	}
	if d.unknownFields != nil {
		out.unknownFields = make(map[string]json.RawMessage, len(d.unknownFields))
		for k, v := range d.unknownFields {
			out.unknownFields[k] = v
		}
	}
	return &out
}

// knownFieldNames are the JSON keys handled explicitly by (Un)MarshalJSON.
var knownFieldNames = []string{
	"name", "transport", "command", "args", "url", "image",
	"env", "headers", "tags", "description", "disabled",
}

// MarshalJSON implements json.Marshaler to include unknown fields in output.
func (d *Definition) MarshalJSON() ([]byte, error) {
	result := make(map[string]any)

	// Copy unknown fields first so known fields take precedence
	for k, v := range d.unknownFields {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		result[k] = val
	}

	result["name"] = d.Name
	if d.Transport != "" {
		result["transport"] = d.Transport
	}
	if d.Command != "" {
		result["command"] = d.Command
	}
	if len(d.Args) > 0 {
		result["args"] = d.Args
	}
	if d.URL != "" {
		result["url"] = d.URL
	}
	if d.Image != "" {
		result["image"] = d.Image
	}
	if len(d.Env) > 0 {
		result["env"] = d.Env
	}
	if len(d.Headers) > 0 {
		result["headers"] = d.Headers
	}
	if len(d.Tags) > 0 {
		result["tags"] = d.Tags
	}
	if d.Description != "" {
		result["description"] = d.Description
	}
	if d.Disabled {
		result["disabled"] = d.Disabled
	}

	return json.Marshal(result)
}

// UnmarshalJSON implements json.Unmarshaler to capture unknown fields.
func (d *Definition) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	take := func(key string, dst any) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		delete(raw, key)
		return nil
	}

	if err := take("name", &d.Name); err != nil {
		return err
	}
	if err := take("transport", &d.Transport); err != nil {
		return err
	}
	if err := take("command", &d.Command); err != nil {
		return err
	}
	if err := take("args", &d.Args); err != nil {
		return err
	}
	if err := take("url", &d.URL); err != nil {
		return err
	}
	if err := take("image", &d.Image); err != nil {
		return err
	}
	if err := take("env", &d.Env); err != nil {
		return err
	}
	if err := take("headers", &d.Headers); err != nil {
		return err
	}
	if err := take("tags", &d.Tags); err != nil {
		return err
	}
	if err := take("description", &d.Description); err != nil {
		return err
	}
	if err := take("disabled", &d.Disabled); err != nil {
		return err
	}

	if len(raw) > 0 {
		d.unknownFields = raw
	}
	return nil
}
