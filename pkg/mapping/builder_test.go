package mapping

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/apilink/pkg/errors"
)

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	if err := b.Add("classy.widgets", "classy.widgets.Button", "classy.widgets.Slider"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Add("foo.baz", "foo.Bar", "Baz"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	table, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := map[string]string{"classy": "classy.widgets", "foo": "foo.baz", "Baz": "foo.baz"}
	if !reflect.DeepEqual(table.Map(), want) {
		t.Errorf("Build() = %v, want %v", table.Map(), want)
	}
}

func TestBuilderConflict(t *testing.T) {
	b := NewBuilder()
	if err := b.Add("classy.widgets", "classy.widgets.Button"); err != nil {
		t.Fatal(err)
	}
	err := b.Add("classy.data", "classy.data.Dataset")
	if !errors.Is(err, errors.ErrCodeInvalidMapping) {
		t.Fatalf("conflict error = %v, want INVALID_MAPPING", err)
	}
	if !strings.Contains(err.Error(), "classy.widgets.Button") {
		t.Errorf("conflict error should name the first claimant: %v", err)
	}
}

func TestBuilderInvalidInput(t *testing.T) {
	b := NewBuilder()
	if err := b.Add("", "a.b"); !errors.Is(err, errors.ErrCodeInvalidPackage) {
		t.Errorf("empty package error = %v", err)
	}
	if err := b.Add("pkg", ""); !errors.Is(err, errors.ErrCodeInvalidSymbol) {
		t.Errorf("empty symbol error = %v", err)
	}
}

func TestBuilderAddIsAtomic(t *testing.T) {
	b := NewBuilder()
	if err := b.Add("classy.widgets", "classy.widgets.Button"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		symbols []string
	}{
		{"invalid symbol after valid ones", []string{"foo.Bar", "Baz", "a..b"}},
		{"conflict after valid ones", []string{"foo.Bar", "classy.Other"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.Add("foo.baz", tt.symbols...); err == nil {
				t.Fatal("Add() should fail")
			}
			table, err := b.Build()
			if err != nil {
				t.Fatal(err)
			}
			want := map[string]string{"classy": "classy.widgets"}
			if !reflect.DeepEqual(table.Map(), want) {
				t.Errorf("failed Add() left entries behind: %v", table.Map())
			}
		})
	}
}

func TestLoadInventory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"inv.yaml": "classy.widgets:\n  - classy.widgets.Button\nfoo.baz:\n  - foo.Bar\n",
		"inv.toml": "\"classy.widgets\" = [\"classy.widgets.Button\"]\n\"foo.baz\" = [\"foo.Bar\"]\n",
		"inv.json": `{"classy.widgets": ["classy.widgets.Button"], "foo.baz": ["foo.Bar"]}`,
	}
	want := Inventory{
		"classy.widgets": {"classy.widgets.Button"},
		"foo.baz":        {"foo.Bar"},
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			inv, err := LoadInventory(path)
			if err != nil {
				t.Fatalf("LoadInventory: %v", err)
			}
			if !reflect.DeepEqual(inv, want) {
				t.Errorf("LoadInventory() = %v, want %v", inv, want)
			}

			b := NewBuilder()
			if err := b.AddInventory(inv); err != nil {
				t.Fatalf("AddInventory: %v", err)
			}
			table, err := b.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if pkg, _ := table.Lookup("foo"); pkg != "foo.baz" {
				t.Errorf("Lookup(foo) = %q", pkg)
			}
		})
	}
}

func TestLoadInventoryMissing(t *testing.T) {
	_, err := LoadInventory(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}
