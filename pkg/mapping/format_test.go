package mapping

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/apilink/pkg/errors"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"json", FormatJSON, `{"classy": "classy.widgets", "foo": "foo.baz"}`},
		{"toml", FormatTOML, "classy = \"classy.widgets\"\nfoo = \"foo.baz\"\n"},
		{"yaml", FormatYAML, "classy: classy.widgets\nfoo: foo.baz\n"},
	}

	want := MustNew(map[string]string{"classy": "classy.widgets", "foo": "foo.baz"})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !got.Equal(want) {
				t.Errorf("Decode() = %v, want %v", got.Map(), want.Map())
			}
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	for _, f := range Formats {
		got, err := Decode(strings.NewReader(""), f)
		if err != nil {
			t.Errorf("Decode(empty %s): %v", f, err)
			continue
		}
		if got.Len() != 0 {
			t.Errorf("Decode(empty %s).Len() = %d", f, got.Len())
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		code   errors.Code
	}{
		{"json nested", FormatJSON, `{"a": {"b": "c"}}`, errors.ErrCodeInvalidMapping},
		{"json syntax", FormatJSON, `{"a": `, errors.ErrCodeInvalidMapping},
		{"toml nested", FormatTOML, "[a]\nb = \"c\"\n", errors.ErrCodeInvalidMapping},
		{"yaml list", FormatYAML, "- a\n- b\n", errors.ErrCodeInvalidMapping},
		{"dotted key", FormatJSON, `{"a.b": "c"}`, errors.ErrCodeInvalidMapping},
		{"unknown format", Format("xml"), `<a/>`, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("Decode() error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestEncodeDecodeEachFormat(t *testing.T) {
	table := MustNew(map[string]string{"classy": "classy.widgets", "foo": "foo.baz"})
	for _, f := range Formats {
		var buf bytes.Buffer
		if err := Encode(&buf, table, f); err != nil {
			t.Fatalf("Encode(%s): %v", f, err)
		}
		got, err := Decode(&buf, f)
		if err != nil {
			t.Fatalf("Decode(%s): %v", f, err)
		}
		if !got.Equal(table) {
			t.Errorf("%s: got %v, want %v", f, got.Map(), table.Map())
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{".JSON", FormatJSON},
		{"toml", FormatTOML},
		{"yml", FormatYAML},
		{".yaml", FormatYAML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseFormat("ini"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseFormat(ini) error = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.json")
	if err := os.WriteFile(path, []byte(`{"classy": "classy.widgets"}`), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if pkg, _ := table.Lookup("classy"); pkg != "classy.widgets" {
		t.Errorf("Lookup(classy) = %q", pkg)
	}

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}

	_, err = LoadFile(filepath.Join(dir, "mapping"))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("no extension error = %v, want INVALID_FORMAT", err)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	table := MustNew(map[string]string{"a": "pkg.a"})

	if err := WriteFile(path, table); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !got.Equal(table) {
		t.Errorf("round trip = %v, want %v", got.Map(), table.Map())
	}
}
