package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/server"
	"github.com/thoreinstein/mcpsync/pkg/fileutil"
)

// FormatVersion is the registry document version for forward compatibility.
const FormatVersion = 1

// Info is the registry's own metadata block, stored alongside the servers.
type Info struct {
	Version        int       `json:"version"`
	DefaultTargets []string  `json:"default_targets,omitempty"`
	LastUpdated    time.Time `json:"last_updated"`
}

// document is the on-disk layout of the registry file.
type document struct {
	Servers  map[string]*server.Definition `json:"servers"`
	Registry Info                          `json:"registry"`
}

// Registry is the canonical store of server definitions. It is the source
// of truth for desired state: targets are always reconciled toward it.
//
// The file is read fully on load and rewritten fully (atomically) on every
// mutation. A mutation that returns nil has already survived to disk.
type Registry struct {
	path string
	doc  *document
}

// Open loads the registry at path. A missing file is not an error: the
// registry starts empty and is created on first mutation.
func Open(path string) (*Registry, error) {
	r := &Registry{path: path}

	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.doc = emptyDocument()
			return r, nil
		}
		return nil, errors.Wrap(err, "reading registry")
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing registry %s", path)
	}
	if doc.Servers == nil {
		doc.Servers = make(map[string]*server.Definition)
	}
	// Names live in the map key; keep the embedded field consistent.
	for name, def := range doc.Servers {
		def.Name = name
	}

	r.doc = &doc
	return r, nil
}

func emptyDocument() *document {
	return &document{
		Servers: make(map[string]*server.Definition),
		Registry: Info{
			Version:     FormatVersion,
			LastUpdated: time.Now().UTC(),
		},
	}
}

// Path returns the registry file location.
func (r *Registry) Path() string {
	return r.path
}

// Info returns the registry metadata block.
func (r *Registry) Info() Info {
	return r.doc.Registry
}

// List returns all definitions sorted by name.
func (r *Registry) List() []*server.Definition {
	defs := make([]*server.Definition, 0, len(r.doc.Servers))
	for _, def := range r.doc.Servers {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Names returns all server names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.doc.Servers))
	for name := range r.doc.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the definition for name, or ErrNotFound.
func (r *Registry) Get(name string) (*server.Definition, error) {
	def, ok := r.doc.Servers[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "server %q", name)
	}
	return def, nil
}

// Add inserts a new definition. Returns ErrDuplicateName if the name is
// already registered, or a validation error for a structurally invalid
// definition.
func (r *Registry) Add(def *server.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, exists := r.doc.Servers[def.Name]; exists {
		return errors.Wrapf(errors.ErrDuplicateName, "server %q", def.Name)
	}

	r.doc.Servers[def.Name] = def
	return r.save()
}

// Update replaces the definition for name. Returns ErrNotFound if absent.
func (r *Registry) Update(name string, def *server.Definition) error {
	if _, exists := r.doc.Servers[name]; !exists {
		return errors.Wrapf(errors.ErrNotFound, "server %q", name)
	}
	def.Name = name
	if err := def.Validate(); err != nil {
		return err
	}

	r.doc.Servers[name] = def
	return r.save()
}

// Remove deletes the definition for name. Returns ErrNotFound if absent.
// Callers owning deployment state must check for live deployments first;
// the registry itself has no view of targets.
func (r *Registry) Remove(name string) error {
	if _, exists := r.doc.Servers[name]; !exists {
		return errors.Wrapf(errors.ErrNotFound, "server %q", name)
	}

	delete(r.doc.Servers, name)
	return r.save()
}

// SetDisabled toggles a server's disabled flag.
func (r *Registry) SetDisabled(name string, disabled bool) error {
	def, ok := r.doc.Servers[name]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "server %q", name)
	}
	if def.Disabled == disabled {
		return nil
	}

	def.Disabled = disabled
	return r.save()
}

// Search returns definitions whose name, description, or tags contain the
// query (case-insensitive), sorted by name.
func (r *Registry) Search(query string) []*server.Definition {
	q := strings.ToLower(query)
	var out []*server.Definition

	for _, def := range r.List() {
		if strings.Contains(strings.ToLower(def.Name), q) {
			out = append(out, def)
			continue
		}
		if strings.Contains(strings.ToLower(def.Description), q) {
			out = append(out, def)
			continue
		}
		for _, tag := range def.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				out = append(out, def)
				break
			}
		}
	}
	return out
}

// Tags returns every tag used in the registry, sorted and deduplicated.
func (r *Registry) Tags() []string {
	set := make(map[string]bool)
	for _, def := range r.doc.Servers {
		for _, tag := range def.Tags {
			set[tag] = true
		}
	}
	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// save persists the registry atomically. The document only counts as saved
// once the rename lands, so a crash mid-write leaves the old file intact.
func (r *Registry) save() error {
	r.doc.Registry.Version = FormatVersion
	r.doc.Registry.LastUpdated = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return errors.Wrap(err, "creating registry directory")
	}
	if err := fileutil.AtomicWriteJSON(r.path, r.doc); err != nil {
		return errors.Wrap(err, "saving registry")
	}
	return nil
}
