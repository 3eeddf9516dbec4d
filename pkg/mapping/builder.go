package mapping

import (
	"bytes"
	"encoding/json"
	"maps"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/symbol"
)

// Inventory lists, per package path, the symbols the package documents.
// It is the input the documentation build emits and Builder consumes.
type Inventory map[string][]string

// Builder assembles a Table from package inventories.
type Builder struct {
	entries map[string]string
	sources map[string]string // segment -> first symbol that claimed it
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		entries: make(map[string]string),
		sources: make(map[string]string),
	}
}

// Add registers the top-level segment of each symbol as belonging to pkg.
// It fails when a segment is already claimed by a different package. A
// failing call leaves the builder unchanged.
func (b *Builder) Add(pkg string, symbols ...string) error {
	if err := errors.ValidatePackagePath(pkg); err != nil {
		return err
	}
	roots := make([]string, len(symbols))
	for i, name := range symbols {
		ref := symbol.New(name)
		if err := ref.Validate(); err != nil {
			return err
		}
		root := ref.Root()
		if existing, ok := b.entries[root]; ok && existing != pkg {
			return errors.New(errors.ErrCodeInvalidMapping,
				"segment %q claimed by %s (via %s) and %s (via %s)",
				root, existing, b.sources[root], pkg, name)
		}
		roots[i] = root
	}
	for i, root := range roots {
		b.entries[root] = pkg
		if _, ok := b.sources[root]; !ok {
			b.sources[root] = symbols[i]
		}
	}
	return nil
}

// AddInventory adds every package of inv in sorted order so that conflict
// errors are deterministic.
func (b *Builder) AddInventory(inv Inventory) error {
	for _, pkg := range slices.Sorted(maps.Keys(inv)) {
		if err := b.Add(pkg, inv[pkg]...); err != nil {
			return err
		}
	}
	return nil
}

// Build returns the assembled table.
func (b *Builder) Build() (*Table, error) {
	return New(b.entries)
}

// LoadInventory reads an inventory file (JSON, TOML or YAML) of the form
// {package: [symbol, ...]}.
func LoadInventory(path string) (Inventory, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "inventory file %s", path)
	}
	if err != nil {
		return nil, err
	}

	inv := Inventory{}
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &inv)
	case FormatTOML:
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&inv)
	case FormatYAML:
		err = yaml.Unmarshal(data, &inv)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMapping, err, "decode inventory %s", path)
	}
	return inv, nil
}
