// Package render turns resolved links into output text.
//
// Rendering is deliberately separate from resolution: the resolver package
// owns every rule about packages, anchors and URLs, and this package only
// formats a [resolver.Link] as markup. Supported formats:
//
//   - html: <a href="URL" title="symbol.name">text</a>
//   - markdown: [text](URL "symbol.name")
//   - url: the bare URL
//   - json: the Link as a JSON object
//
// # Document Expansion
//
// [Expand] rewrites documentation sources in place, replacing self-closing
// ApiLink tags with rendered links:
//
//	See <ApiLink name="classy.widgets.Button" displayName="the button" />.
//
// becomes, with the html format,
//
//	See <a href="/docs/api/widgets/#classy-widgets-Button" title="classy.widgets.Button">the button</a>.
package render
