package mapping

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/matzehuels/apilink/pkg/errors"
)

// Entry is a single segment-to-package pair.
type Entry struct {
	Segment string `json:"segment" yaml:"segment" toml:"segment"`
	Package string `json:"package" yaml:"package" toml:"package"`
}

// Table is an immutable mapping from top-level symbol segment to package path.
// The zero value is an empty table.
type Table struct {
	entries map[string]string
}

// New validates m and returns a table holding a copy of it.
// Keys must be single segments and values valid package paths.
func New(m map[string]string) (*Table, error) {
	for _, seg := range slices.Sorted(maps.Keys(m)) {
		if err := errors.ValidateSegment(seg); err != nil {
			return nil, err
		}
		if err := errors.ValidatePackagePath(m[seg]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidMapping, err, "mapping for %q", seg)
		}
	}
	entries := maps.Clone(m)
	if entries == nil {
		entries = map[string]string{}
	}
	return &Table{entries: entries}, nil
}

// MustNew is like New but panics on invalid input. Intended for tests and
// package-level fixtures.
func MustNew(m map[string]string) *Table {
	t, err := New(m)
	if err != nil {
		panic(err)
	}
	return t
}

// FromEntries builds a table from entries. Duplicate segments are rejected
// even when they agree.
func FromEntries(entries []Entry) (*Table, error) {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		if _, dup := m[e.Segment]; dup {
			return nil, errors.New(errors.ErrCodeInvalidMapping, "duplicate mapping key %q", e.Segment)
		}
		m[e.Segment] = e.Package
	}
	return New(m)
}

// Lookup returns the package for segment.
func (t *Table) Lookup(segment string) (string, bool) {
	if t == nil {
		return "", false
	}
	pkg, ok := t.entries[segment]
	return pkg, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Keys returns the segments in sorted order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.entries))
}

// Entries returns all pairs sorted by segment.
func (t *Table) Entries() []Entry {
	keys := t.Keys()
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Segment: k, Package: t.entries[k]}
	}
	return out
}

// Map returns a copy of the underlying mapping.
func (t *Table) Map() map[string]string {
	if t == nil || t.entries == nil {
		return map[string]string{}
	}
	return maps.Clone(t.entries)
}

// Equal reports whether t and other hold the same entries.
func (t *Table) Equal(other *Table) bool {
	return maps.Equal(t.Map(), other.Map())
}

// MarshalJSON encodes the table as a flat JSON object.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Map())
}
