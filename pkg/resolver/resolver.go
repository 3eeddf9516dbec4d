package resolver

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/mapping"
	"github.com/matzehuels/apilink/pkg/observability"
	"github.com/matzehuels/apilink/pkg/symbol"
)

// Defaults for Options.
const (
	DefaultBasePath   = "/docs/api/"
	DefaultRootPrefix = "classy."
)

// MissingPolicy decides what happens when a symbol's root segment has no
// entry in the mapping table and no explicit package was given.
type MissingPolicy string

const (
	// MissingError reports a MAPPING_NOT_FOUND error.
	MissingError MissingPolicy = "error"
	// MissingFallback resolves to Options.FallbackPackage.
	MissingFallback MissingPolicy = "fallback"
)

// ParseMissingPolicy converts a config value to a MissingPolicy.
// The empty string selects MissingError.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch MissingPolicy(strings.ToLower(s)) {
	case "", MissingError:
		return MissingError, nil
	case MissingFallback:
		return MissingFallback, nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "unknown missing-mapping policy %q (want error or fallback)", s)
}

// Options configures a Resolver.
type Options struct {
	BasePath        string        // URL prefix, must end with "/" (default DefaultBasePath)
	RootPrefix      string        // literal prefix stripped from package paths (default DefaultRootPrefix)
	OnMissing       MissingPolicy // default MissingError
	FallbackPackage string        // used when OnMissing is MissingFallback
	Logger          *log.Logger   // nil uses log.Default()
}

// DefaultOptions returns the options used by the package-level functions.
func DefaultOptions() Options {
	return Options{
		BasePath:   DefaultBasePath,
		RootPrefix: DefaultRootPrefix,
		OnMissing:  MissingError,
	}
}

// SetDefaults fills empty fields. RootPrefix is left alone: an empty prefix
// is a valid choice meaning "strip nothing", so callers wanting the default
// start from DefaultOptions.
func (o *Options) SetDefaults() {
	if o.BasePath == "" {
		o.BasePath = DefaultBasePath
	}
	if o.OnMissing == "" {
		o.OnMissing = MissingError
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// Validate checks the options after defaults have been applied.
func (o Options) Validate() error {
	if err := errors.ValidateBasePath(o.BasePath); err != nil {
		return err
	}
	if _, err := ParseMissingPolicy(string(o.OnMissing)); err != nil {
		return err
	}
	if err := validateRootPrefix(o.RootPrefix); err != nil {
		return err
	}
	if o.OnMissing == MissingFallback {
		if o.FallbackPackage == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "fallback policy requires a fallback package")
		}
		if err := errors.ValidatePackagePath(o.FallbackPackage); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "fallback package")
		}
	}
	return nil
}

// validateRootPrefix accepts the empty string or a package path followed by
// a single separator, so stripping it always leaves whole segments.
func validateRootPrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	pkg, ok := strings.CutSuffix(prefix, symbol.Separator)
	if !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "root prefix %q must end with %q (try %q)", prefix, symbol.Separator, prefix+symbol.Separator)
	}
	if err := errors.ValidatePackagePath(pkg); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "root prefix")
	}
	return nil
}

// Link is a resolved reference, ready for rendering.
type Link struct {
	URL     string `json:"url"`     // href of the anchor element
	Anchor  string `json:"anchor"`  // fragment identifier within the package page
	Package string `json:"package"` // resolved package path (dotted)
	Title   string `json:"title"`   // raw symbol name, shown as tooltip
	Text    string `json:"text"`    // visible link text
}

// Resolver resolves symbol references against a mapping table.
type Resolver struct {
	table *mapping.Table
	opts  Options
}

// New creates a resolver. A nil table behaves as an empty table, so only
// refs with explicit packages (or a fallback policy) resolve.
func New(table *mapping.Table, opts Options) (*Resolver, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if table == nil {
		table, _ = mapping.New(nil)
	}
	return &Resolver{table: table, opts: opts}, nil
}

// Table returns the mapping table.
func (r *Resolver) Table() *mapping.Table { return r.table }

// Options returns the effective options.
func (r *Resolver) Options() Options { return r.opts }

// Package returns the package that documents ref.
func (r *Resolver) Package(ref symbol.Ref) (string, error) {
	pkg, err := ResolvePackage(ref, r.table)
	if err == nil || !errors.Is(err, errors.ErrCodeMappingNotFound) {
		return pkg, err
	}
	if r.opts.OnMissing == MissingFallback {
		r.opts.Logger.Debug("no package mapping, using fallback",
			"symbol", ref.Name, "root", ref.Root(), "fallback", r.opts.FallbackPackage)
		return r.opts.FallbackPackage, nil
	}
	return "", err
}

// URL returns the documentation URL for ref.
func (r *Resolver) URL(ref symbol.Ref) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}
	pkg, err := r.Package(ref)
	if err != nil {
		return "", err
	}
	return composeURL(r.opts.BasePath, PackagePath(pkg, r.opts.RootPrefix), ResolveAnchor(ref)), nil
}

// Resolve computes the complete link for ref and reports it to the resolve
// hooks. Invalid refs fail before any lookup.
func (r *Resolver) Resolve(ctx context.Context, ref symbol.Ref) (Link, error) {
	start := time.Now()
	link, err := r.resolve(ref)
	observability.Resolve().OnResolve(ctx, ref.Name, link.Package, time.Since(start), err)
	return link, err
}

func (r *Resolver) resolve(ref symbol.Ref) (Link, error) {
	if err := ref.Validate(); err != nil {
		return Link{}, err
	}
	pkg, err := r.Package(ref)
	if err != nil {
		return Link{}, err
	}
	anchor := ResolveAnchor(ref)
	return Link{
		URL:     composeURL(r.opts.BasePath, PackagePath(pkg, r.opts.RootPrefix), anchor),
		Anchor:  anchor,
		Package: pkg,
		Title:   ref.Name,
		Text:    ResolveDisplayText(ref),
	}, nil
}

// ResolveAll resolves refs in order. Failures do not stop the batch; the
// returned errors slice is index-aligned with refs (nil on success).
func (r *Resolver) ResolveAll(ctx context.Context, refs []symbol.Ref) ([]Link, []error) {
	links := make([]Link, len(refs))
	errs := make([]error, len(refs))
	for i, ref := range refs {
		links[i], errs[i] = r.Resolve(ctx, ref)
	}
	return links, errs
}
