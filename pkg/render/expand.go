package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"

	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/resolver"
	"github.com/matzehuels/apilink/pkg/symbol"
)

// TagName is the element name Expand looks for.
const TagName = "ApiLink"

var (
	tagPattern  = regexp.MustCompile(`<` + TagName + `\b((?:[^>"']|"[^"]*"|'[^']*')*?)/>`)
	attrPattern = regexp.MustCompile(`([A-Za-z_][\w-]*)\s*=\s*(?:"([^"]*)"|'([^']*)'|\{\s*"([^"]*)"\s*\})`)
)

// ExpandOptions configures Expand.
type ExpandOptions struct {
	Format Format // html (default), markdown or url

	// KeepGoing leaves unresolvable tags untouched and keeps expanding.
	// Without it the first failure aborts the expansion.
	KeepGoing bool
}

// TagError describes a tag that could not be expanded.
type TagError struct {
	Line int    // 1-based line of the tag
	Tag  string // tag source text
	Err  error
}

// Error implements the error interface.
func (e *TagError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Tag, e.Err)
}

// Unwrap returns the resolution error.
func (e *TagError) Unwrap() error { return e.Err }

// ExpandResult is the outcome of Expand.
type ExpandResult struct {
	Output   []byte
	Replaced int
	Errors   []*TagError // only populated with KeepGoing
}

// Expand replaces every <ApiLink name="..." package="..." displayName="..." />
// tag in src with the rendered link. Attribute values may be quoted with
// double or single quotes or given as a JSX string expression ({"..."}).
func Expand(ctx context.Context, src []byte, r *resolver.Resolver, opts ExpandOptions) (*ExpandResult, error) {
	format := opts.Format
	if format == "" {
		format = FormatHTML
	}
	if format == FormatJSON {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "json cannot be embedded in documents")
	}

	res := &ExpandResult{}
	var out bytes.Buffer
	last := 0
	for _, m := range tagPattern.FindAllSubmatchIndex(src, -1) {
		start, end := m[0], m[1]
		out.Write(src[last:start])
		last = end

		tag := src[start:end]
		rendered, err := expandTag(ctx, src[m[2]:m[3]], r, format)
		if err != nil {
			tagErr := &TagError{Line: bytes.Count(src[:start], []byte("\n")) + 1, Tag: string(tag), Err: err}
			if !opts.KeepGoing {
				return nil, tagErr
			}
			res.Errors = append(res.Errors, tagErr)
			out.Write(tag)
			continue
		}
		out.WriteString(rendered)
		res.Replaced++
	}
	out.Write(src[last:])
	res.Output = out.Bytes()
	return res, nil
}

func expandTag(ctx context.Context, attrs []byte, r *resolver.Resolver, format Format) (string, error) {
	ref, err := parseTagAttrs(attrs)
	if err != nil {
		return "", err
	}
	link, err := r.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	return String(link, format)
}

// parseTagAttrs reads name, package and displayName; other attributes are
// ignored.
func parseTagAttrs(attrs []byte) (symbol.Ref, error) {
	var ref symbol.Ref
	for _, m := range attrPattern.FindAllSubmatch(attrs, -1) {
		value := ""
		for _, v := range m[2:] {
			if v != nil {
				value = html.UnescapeString(string(v))
				break
			}
		}
		switch string(m[1]) {
		case "name":
			ref.Name = value
		case "package":
			ref.Package = value
		case "displayName":
			ref.DisplayName = value
		}
	}
	if ref.Name == "" {
		return ref, errors.New(errors.ErrCodeInvalidSymbol, "%s tag is missing a name attribute", TagName)
	}
	return ref, nil
}
