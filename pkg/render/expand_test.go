package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	apierrors "github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/mapping"
	"github.com/matzehuels/apilink/pkg/resolver"
)

func newTestResolver(t *testing.T) *resolver.Resolver {
	t.Helper()
	r, err := resolver.New(mapping.MustNew(map[string]string{"classy": "classy.widgets"}), resolver.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		format Format
		want   string
	}{
		{
			name: "double quotes",
			src:  `See <ApiLink name="classy.widgets.Button" />.`,
			want: `See <a href="/docs/api/widgets/#classy-widgets-Button" title="classy.widgets.Button">classy.widgets.Button</a>.`,
		},
		{
			name: "all attributes",
			src:  `<ApiLink name='foo.Bar' package='foo.baz' displayName='the Bar'/>`,
			want: `<a href="/docs/api/foo/baz/#foo-Bar" title="foo.Bar">the Bar</a>`,
		},
		{
			name: "jsx expression",
			src:  `<ApiLink name={"classy.A"} displayName={"A"} />`,
			want: `<a href="/docs/api/widgets/#classy-A" title="classy.A">A</a>`,
		},
		{
			name:   "markdown",
			src:    "- <ApiLink name=\"classy.A\" />\n- <ApiLink name=\"classy.B\" displayName=\"B\" />\n",
			format: FormatMarkdown,
			want:   "- [classy.A](/docs/api/widgets/#classy-A \"classy.A\")\n- [B](/docs/api/widgets/#classy-B \"classy.B\")\n",
		},
		{
			name: "display with angle bracket in quotes",
			src:  `<ApiLink name="classy.A" displayName="a > b" />`,
			want: `<a href="/docs/api/widgets/#classy-A" title="classy.A">a &gt; b</a>`,
		},
		{
			name: "no tags",
			src:  "plain <a href=\"x\">text</a>\n",
			want: "plain <a href=\"x\">text</a>\n",
		},
	}

	r := newTestResolver(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Expand(context.Background(), []byte(tt.src), r, ExpandOptions{Format: tt.format})
			if err != nil {
				t.Fatalf("Expand: %v", err)
			}
			if string(res.Output) != tt.want {
				t.Errorf("Expand() =\n%s\nwant\n%s", res.Output, tt.want)
			}
		})
	}
}

func TestExpandStopsOnError(t *testing.T) {
	src := "line one\n<ApiLink name=\"classy.A\" />\n<ApiLink name=\"X\" />\n"
	_, err := Expand(context.Background(), []byte(src), newTestResolver(t), ExpandOptions{})

	var tagErr *TagError
	if !errors.As(err, &tagErr) {
		t.Fatalf("Expand() error = %v, want *TagError", err)
	}
	if tagErr.Line != 3 {
		t.Errorf("Line = %d, want 3", tagErr.Line)
	}
	if !resolver.IsMissingMapping(err) {
		t.Errorf("error should unwrap to MAPPING_NOT_FOUND: %v", err)
	}
}

func TestExpandKeepGoing(t *testing.T) {
	src := "<ApiLink name=\"X\" />\n<ApiLink name=\"classy.A\" />\n<ApiLink displayName=\"nameless\" />"
	res, err := Expand(context.Background(), []byte(src), newTestResolver(t), ExpandOptions{KeepGoing: true})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if res.Replaced != 1 {
		t.Errorf("Replaced = %d, want 1", res.Replaced)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("Errors = %v, want 2", res.Errors)
	}
	if res.Errors[0].Line != 1 || !resolver.IsMissingMapping(res.Errors[0]) {
		t.Errorf("Errors[0] = %v", res.Errors[0])
	}
	if res.Errors[1].Line != 3 || !apierrors.Is(res.Errors[1], apierrors.ErrCodeInvalidSymbol) {
		t.Errorf("Errors[1] = %v", res.Errors[1])
	}

	out := string(res.Output)
	if !strings.HasPrefix(out, `<ApiLink name="X" />`) {
		t.Errorf("failed tags should be kept verbatim: %s", out)
	}
	if !strings.Contains(out, `href="/docs/api/widgets/#classy-A"`) {
		t.Errorf("resolvable tag should be expanded: %s", out)
	}
}

func TestExpandRejectsJSON(t *testing.T) {
	_, err := Expand(context.Background(), []byte("x"), newTestResolver(t), ExpandOptions{Format: FormatJSON})
	if !apierrors.Is(err, apierrors.ErrCodeInvalidFormat) {
		t.Errorf("Expand(json) error = %v", err)
	}
}
