package mapping

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/apilink/pkg/errors"
)

// Format identifies a mapping file encoding.
type Format string

// Supported mapping file formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatTOML, FormatYAML}

// ParseFormat converts a user-supplied name ("json", "yml", ...) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported mapping format %q (want json, toml or yaml)", s)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer mapping format of %q", path)
	}
	return ParseFormat(ext)
}

// Decode reads a flat string-to-string mapping in the given format.
// An empty document decodes to an empty table.
func Decode(r io.Reader, format Format) (*Table, error) {
	m := map[string]string{}
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&m)
		if stderrors.Is(err, io.EOF) {
			err = nil
		}
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&m)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&m)
		if stderrors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported mapping format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMapping, err, "decode %s mapping", format)
	}
	return New(m)
}

// Encode writes t in the given format. Keys are written in sorted order.
func Encode(w io.Writer, t *Table, format Format) error {
	m := t.Map()
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(m)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported mapping format %q", format)
}

// LoadFile reads a mapping file, inferring the format from its extension.
func LoadFile(path string) (*Table, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "mapping file %s", path)
	}
	if err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(data), format)
}

// WriteFile writes t to path, inferring the format from its extension.
func WriteFile(path string, t *Table) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, t, format); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
