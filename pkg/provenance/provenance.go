// Package provenance records which supplier contributed each field of a
// merged product record.
package provenance

import (
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/constants"
	"github.com/agentstation/supplymap/pkg/errors"
)

// Provenance describes where one merged field value came from.
type Provenance struct {
	Supplier  string    `yaml:"supplier" json:"supplier"`
	Value     string    `yaml:"value" json:"value"`
	Reason    string    `yaml:"reason,omitempty" json:"reason,omitempty"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
}

// Fields maps each field of one record to its provenance.
type Fields map[catalogs.Field]Provenance

// Map holds provenance per product identity.
type Map map[string]Fields

// Tracker collects provenance during a merge.
type Tracker interface {
	// Track records provenance for one field of one identity.
	Track(identity string, field catalogs.Field, p Provenance)

	// FindByField returns the provenance of a single field.
	FindByField(identity string, field catalogs.Field) (Provenance, bool)

	// FindByIdentity returns the provenance of every field of one identity.
	FindByIdentity(identity string) Fields

	// Map returns a copy of everything tracked.
	Map() Map

	// Clear removes all provenance data.
	Clear()
}

type tracker struct {
	mu      sync.RWMutex
	entries Map
	enabled bool
}

// NewTracker creates a tracker. A disabled tracker records nothing.
func NewTracker(enabled bool) Tracker {
	return &tracker{entries: make(Map), enabled: enabled}
}

func (t *tracker) Track(identity string, field catalogs.Field, p Provenance) {
	if !t.enabled {
		return
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fields, ok := t.entries[identity]
	if !ok {
		fields = make(Fields)
		t.entries[identity] = fields
	}
	fields[field] = p
}

func (t *tracker) FindByField(identity string, field catalogs.Field) (Provenance, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.entries[identity][field]
	return p, ok
}

func (t *tracker) FindByIdentity(identity string) Fields {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fields, ok := t.entries[identity]
	if !ok {
		return nil
	}
	return fields.clone()
}

func (t *tracker) Map() Map {
	if !t.enabled {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(Map, len(t.entries))
	for id, fields := range t.entries {
		out[id] = fields.clone()
	}
	return out
}

func (t *tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(Map)
}

func (f Fields) clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Identities returns the tracked identities in sorted order.
func (m Map) Identities() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Encode writes m as YAML with identities and fields in sorted order.
func Encode(w io.Writer, m Map) error {
	doc := make(yaml.MapSlice, 0, len(m))
	for _, id := range m.Identities() {
		fields := m[id]
		names := make([]string, 0, len(fields))
		for f := range fields {
			names = append(names, string(f))
		}
		sort.Strings(names)

		entry := make(yaml.MapSlice, 0, len(names))
		for _, name := range names {
			entry = append(entry, yaml.MapItem{Key: name, Value: fields[catalogs.Field(name)]})
		}
		doc = append(doc, yaml.MapItem{Key: id, Value: entry})
	}

	data, err := yaml.MarshalWithOptions(doc, yaml.Indent(2))
	if err != nil {
		return errors.WrapParse("yaml", "", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteFile writes m as YAML to path.
func WriteFile(path string, m Map) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := Encode(f, m); err != nil {
		_ = f.Close()
		return err
	}
	return errors.WrapIO("close", path, f.Close())
}
