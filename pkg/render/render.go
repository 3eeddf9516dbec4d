package render

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/resolver"
)

// Format names an output format.
type Format string

// Output formats.
const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatURL      Format = "url"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatHTML, FormatMarkdown, FormatURL, FormatJSON}

// ParseFormat converts a user-supplied format name. "md" is accepted for
// markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "url":
		return FormatURL, nil
	case "json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q (want html, markdown, url or json)", s)
}

// HTMLOption configures HTML rendering via [HTML].
type HTMLOption func(*htmlRenderer)

type htmlRenderer struct {
	class   string
	target  string
	noTitle bool
}

// WithClass sets the class attribute of the anchor element.
func WithClass(class string) HTMLOption { return func(r *htmlRenderer) { r.class = class } }

// WithTarget sets the target attribute (e.g. "_blank").
func WithTarget(target string) HTMLOption { return func(r *htmlRenderer) { r.target = target } }

// WithoutTitle omits the title attribute that shows the raw symbol name.
func WithoutTitle() HTMLOption { return func(r *htmlRenderer) { r.noTitle = true } }

// HTML renders link as an anchor element. Attribute values and text are
// escaped.
func HTML(link resolver.Link, opts ...HTMLOption) string {
	var r htmlRenderer
	for _, opt := range opts {
		opt(&r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<a href="%s"`, html.EscapeString(link.URL))
	if !r.noTitle && link.Title != "" {
		fmt.Fprintf(&b, ` title="%s"`, html.EscapeString(link.Title))
	}
	if r.class != "" {
		fmt.Fprintf(&b, ` class="%s"`, html.EscapeString(r.class))
	}
	if r.target != "" {
		fmt.Fprintf(&b, ` target="%s"`, html.EscapeString(r.target))
		if r.target == "_blank" {
			b.WriteString(` rel="noopener noreferrer"`)
		}
	}
	fmt.Fprintf(&b, ">%s</a>", html.EscapeString(link.Text))
	return b.String()
}

var (
	markdownTextEscaper  = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)
	markdownTitleEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
)

// Markdown renders link as an inline Markdown link with the symbol name as
// the link title.
func Markdown(link resolver.Link) string {
	text := markdownTextEscaper.Replace(link.Text)
	if link.Title == "" {
		return fmt.Sprintf("[%s](%s)", text, link.URL)
	}
	return fmt.Sprintf(`[%s](%s "%s")`, text, link.URL, markdownTitleEscaper.Replace(link.Title))
}

// String renders link in format. JSON output is a single line.
func String(link resolver.Link, format Format) (string, error) {
	switch format {
	case FormatHTML:
		return HTML(link), nil
	case FormatMarkdown:
		return Markdown(link), nil
	case FormatURL:
		return link.URL, nil
	case FormatJSON:
		data, err := json.Marshal(link)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q", format)
}

// Render writes link in format to w, followed by a newline.
func Render(w io.Writer, link resolver.Link, format Format) error {
	s, err := String(link, format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}
