// Package resolver computes documentation URLs for API symbols.
//
// Resolution is a pure function of a [symbol.Ref] and a [mapping.Table]:
//
//  1. Package: the explicit ref.Package, or the table entry for the first
//     segment of ref.Name. A missing entry is a MAPPING_NOT_FOUND error
//     unless the resolver is configured with a fallback package.
//  2. Anchor: ref.Name with every "." replaced by "-".
//  3. URL: BasePath + package path + "/#" + anchor, where the package path is
//     the package with a leading RootPrefix removed and remaining dots turned
//     into slashes.
//
// With the default options:
//
//	classy.widgets.Button.onClick, table {classy: classy.widgets}
//	    -> /docs/api/widgets/#classy-widgets-Button-onClick
//	foo.Bar, package foo.baz
//	    -> /docs/api/foo/baz/#foo-Bar
//
// The anchor transform is a one-way normalization: "a.b" and "a-b" produce
// the same anchor and the original name cannot be recovered from it.
//
// A [Resolver] bundles a table with [Options] and is immutable, so one value
// can be shared by any number of goroutines.
package resolver
