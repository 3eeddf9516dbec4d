// Package pkg provides the core libraries for apilink, which turns dotted
// API symbol names into links to a documentation site.
//
// # Overview
//
// The pkg directory is organized into three areas:
//
//  1. Domain: [symbol] (references), [mapping] (segment to package table),
//     [resolver] (URL, anchor and text computation) and [render] (HTML and
//     Markdown output, document expansion)
//  2. Storage: [mapping/redisstore], [mapping/mongostore] and [cache]
//  3. Support: [config], [errors], [observability] and [buildinfo]
//
// # Architecture
//
//	mapping file / Redis hash / Mongo collection
//	         ↓
//	    [mapping] package (Table, Source, CachedSource)
//	         ↓
//	    [resolver] package (Ref → Link)
//	         ↓
//	    [render] package (Link → HTML, Markdown, URL, JSON)
//
// # Quick Start
//
//	table := mapping.MustNew(map[string]string{"classy": "classy.widgets"})
//	url, err := resolver.ResolveURL(symbol.New("classy.widgets.Button.onClick"), table)
//	// url == "/docs/api/widgets/#classy-widgets-Button-onClick"
package pkg
