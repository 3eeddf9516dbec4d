// Package mapping provides the package mapping table used to resolve API links.
//
// A [Table] maps the top-level segment of a symbol name ("classy") to the
// package that documents it ("classy.widgets"). The table is produced at
// build time by the API documentation generator, loaded once when the
// application starts, and only read afterwards. It is immutable and safe for
// concurrent use.
//
// # Sources
//
// Tables are loaded through a [Source]:
//
//   - [FileSource]: a JSON, TOML or YAML file (flat string-to-string mapping)
//   - redisstore.Store: a Redis hash
//   - mongostore.Store: a MongoDB collection of {segment, package} documents
//
// [CachedSource] wraps a remote source with a snapshot cache so that short
// CLI invocations do not hit the network every time.
//
// # Building Tables
//
// [Builder] assembles a table from an inventory of packages and the symbols
// they export, rejecting inventories where one top-level segment would map to
// two packages:
//
//	b := mapping.NewBuilder()
//	b.Add("classy.widgets", "classy.widgets.Button", "classy.widgets.Slider")
//	table, err := b.Build()
package mapping
