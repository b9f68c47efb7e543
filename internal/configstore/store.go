package configstore

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"

	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/server"
	"github.com/thoreinstein/mcpsync/pkg/fileutil"
)

// HashAbsent is the content hash reported for a target file that does not
// exist. Distinct from the hash of an empty file.
const HashAbsent = "absent"

// Format describes how a target's config document stores its server map.
type Format struct {
	// Codec serializes the whole document (JSON or TOML).
	Codec Codec

	// ServersPath is the key path to the server map inside the document,
	// e.g. ["mcpServers"] for Claude, ["claude", "mcpServers"] for the
	// VS Code settings file.
	ServersPath []string

	// Wrapper adapts launch commands to the target's host shell quirks.
	// Nil means no wrapping.
	Wrapper CommandWrapper
}

// Store reads and writes the server-map field of one target config file,
// preserving every sibling field through the round trip. All writes are
// atomic (temp file + rename).
type Store struct {
	path   string
	format Format
}

// New creates a Store bound to path with the given format.
func New(path string, format Format) *Store {
	return &Store{path: path, format: format}
}

// Path returns the config file location.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the target file currently exists.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Hash returns the SHA-256 hex digest of the file's bytes, or HashAbsent
// if the file does not exist.
func (s *Store) Hash() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return HashAbsent, nil
		}
		return "", errors.Wrapf(err, "hashing %s", s.path)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Servers returns the live server entries in the target file, keyed and
// named by entry key. A missing file yields an empty map. Host-shell
// command wrapping is reversed so entries compare cleanly against
// registry definitions.
func (s *Store) Servers() (map[string]*server.Definition, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	servers, _ := navigate(doc, s.format.ServersPath, false)
	out := make(map[string]*server.Definition, len(servers))
	for name, raw := range servers {
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.Newf("%s: server entry %q is not an object", s.path, name)
		}
		def, err := decodeEntry(name, entry)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: entry %q", s.path, name)
		}
		if s.format.Wrapper != nil {
			def = s.format.Wrapper.Unwrap(def)
		}
		out[name] = def
	}
	return out, nil
}

// Names returns the live entry names sorted.
func (s *Store) Names() ([]string, error) {
	servers, err := s.Servers()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Upsert inserts or replaces the entry for def by name. Sibling fields and
// unrelated entries are preserved untouched. The parent directory is
// created if needed.
func (s *Store) Upsert(def *server.Definition) error {
	doc, err := s.load()
	if err != nil {
		return err
	}

	if s.format.Wrapper != nil {
		def = s.format.Wrapper.Wrap(def)
	}

	servers, doc := navigate(doc, s.format.ServersPath, true)
	servers[def.Name] = encodeEntry(def)

	return s.write(doc)
}

// Remove deletes the entry for name, preserving everything else.
// Removing an absent entry is a no-op.
func (s *Store) Remove(name string) error {
	doc, err := s.load()
	if err != nil {
		return err
	}

	servers, _ := navigate(doc, s.format.ServersPath, false)
	if servers == nil {
		return nil
	}
	if _, ok := servers[name]; !ok {
		return nil
	}
	delete(servers, name)

	return s.write(doc)
}

// load reads and decodes the whole document. A missing file yields an
// empty document.
func (s *Store) load() (map[string]any, error) {
	data, err := fileutil.ReadFileWithLimit(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, errors.Wrapf(err, "reading %s", s.path)
	}

	doc, err := s.format.Codec.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", s.path)
	}
	return doc, nil
}

func (s *Store) write(doc map[string]any) error {
	data, err := s.format.Codec.Encode(doc)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", s.path)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return fileutil.AtomicWriteFile(s.path, data, 0o644)
}

// navigate walks the key path down to the server map, optionally creating
// intermediate objects. Returns the server map (nil when absent and not
// creating) and the possibly updated document root.
func navigate(doc map[string]any, path []string, create bool) (map[string]any, map[string]any) {
	node := doc
	for _, key := range path {
		child, ok := node[key].(map[string]any)
		if !ok {
			if !create {
				return nil, doc
			}
			child = map[string]any{}
			node[key] = child
		}
		node = child
	}
	return node, doc
}
