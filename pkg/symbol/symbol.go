// Package symbol defines references to documented API symbols.
//
// A [Ref] names a symbol by its dotted path ("classy.widgets.Button.onClick"),
// optionally pins the package that documents it, and optionally carries the
// text a link to it should display. Refs are plain values: they are built by
// callers (CLI arguments, HTTP query parameters, document tags) and consumed
// by the resolver package.
//
// # Compact Form
//
// The CLI and the HTTP API accept a compact string form:
//
//	name[@package][|display]
//
// For example:
//
//	classy.widgets.Button            name only
//	foo.Bar@foo.baz                  explicit package
//	a.b|Click me                     display text
//	foo.Bar@foo.baz|the Bar class    both
//
// [Parse] reads this form and [Ref.String] writes it back.
package symbol

import (
	"strings"

	"github.com/matzehuels/apilink/pkg/errors"
)

// Separator is the only path separator allowed in symbol names.
const Separator = "."

const (
	packageMark = "@"
	displayMark = "|"
)

// Ref is a reference to a documented API symbol.
//
// Name is required. Package and DisplayName are optional; the empty string
// means absent.
type Ref struct {
	Name        string `json:"name"`
	Package     string `json:"package,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// New creates a Ref for name with no explicit package or display text.
func New(name string) Ref {
	return Ref{Name: name}
}

// WithPackage returns a copy of r with an explicit package.
func (r Ref) WithPackage(pkg string) Ref {
	r.Package = pkg
	return r
}

// WithDisplayName returns a copy of r with display text.
func (r Ref) WithDisplayName(text string) Ref {
	r.DisplayName = text
	return r
}

// Validate checks the name and, when present, the explicit package.
func (r Ref) Validate() error {
	if err := errors.ValidateSymbolName(r.Name); err != nil {
		return err
	}
	if r.HasPackage() {
		if err := errors.ValidatePackagePath(r.Package); err != nil {
			return err
		}
	}
	return nil
}

// HasPackage reports whether an explicit package was given.
func (r Ref) HasPackage() bool { return r.Package != "" }

// HasDisplayName reports whether display text was given.
func (r Ref) HasDisplayName() bool { return r.DisplayName != "" }

// Segments splits the name on the separator.
func (r Ref) Segments() []string {
	if r.Name == "" {
		return nil
	}
	return strings.Split(r.Name, Separator)
}

// Root returns the first segment of the name, which is the key used to look
// up the owning package in a mapping table.
func (r Ref) Root() string {
	root, _, _ := strings.Cut(r.Name, Separator)
	return root
}

// String returns the compact form accepted by Parse.
func (r Ref) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if r.HasPackage() {
		b.WriteString(packageMark)
		b.WriteString(r.Package)
	}
	if r.HasDisplayName() {
		b.WriteString(displayMark)
		b.WriteString(r.DisplayName)
	}
	return b.String()
}

// Parse reads the compact form name[@package][|display] and validates the
// result. Surrounding whitespace around name and package is ignored; display
// text is kept verbatim.
func Parse(s string) (Ref, error) {
	head, display, _ := strings.Cut(s, displayMark)
	name, pkg, hasPkg := strings.Cut(head, packageMark)

	ref := Ref{
		Name:        strings.TrimSpace(name),
		Package:     strings.TrimSpace(pkg),
		DisplayName: display,
	}
	if hasPkg && ref.Package == "" {
		return Ref{}, errors.New(errors.ErrCodeInvalidPackage, "empty package after %q in %q", packageMark, s)
	}
	if err := ref.Validate(); err != nil {
		return Ref{}, err
	}
	return ref, nil
}
