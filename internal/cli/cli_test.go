package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/resolver"
)

const testMapping = `{"classy": "classy.widgets", "foo": "foo.baz"}`

// isolate runs the test in an empty directory with no user config, cache
// or mapping store in the environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("APILINK_REDIS_ADDR", "")
	t.Setenv("APILINK_MONGO_URI", "")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := New(&out, &errOut, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestResolveCommand(t *testing.T) {
	dir := isolate(t)
	mapping := writeFile(t, dir, "mapping.json", testMapping)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "mapped symbol",
			args: []string{"resolve", "-m", mapping, "classy.widgets.Button.onClick"},
			want: "/docs/api/widgets/#classy-widgets-Button-onClick\n",
		},
		{
			name: "explicit package flag without mapping",
			args: []string{"resolve", "foo.Bar", "--package", "foo.baz"},
			want: "/docs/api/foo/baz/#foo-Bar\n",
		},
		{
			name: "compact form",
			args: []string{"resolve", "foo.Bar@foo.baz"},
			want: "/docs/api/foo/baz/#foo-Bar\n",
		},
		{
			name: "several symbols",
			args: []string{"resolve", "-m", mapping, "classy.A", "foo.Bar"},
			want: "/docs/api/widgets/#classy-A\n/docs/api/foo/baz/#foo-Bar\n",
		},
		{
			name: "markdown",
			args: []string{"resolve", "a.b@a|Click me", "--format", "md"},
			want: "[Click me](/docs/api/a/#a-b \"a.b\")\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, tt.args...)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestResolveCommandErrors(t *testing.T) {
	dir := isolate(t)
	mapping := writeFile(t, dir, "mapping.json", testMapping)

	_, _, err := runCLI(t, "resolve", "-m", mapping, "X")
	if !resolver.IsMissingMapping(err) {
		t.Errorf("missing mapping error = %v", err)
	}

	_, stderr, err := runCLI(t, "resolve", "-m", mapping, "classy.A", "X")
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("batch error = %v", err)
	}
	if !strings.Contains(stderr, "X") {
		t.Errorf("stderr should name the failed symbol: %q", stderr)
	}

	_, _, err = runCLI(t, "resolve", "-m", mapping, "X", "Y.z")
	if !resolver.IsMissingMapping(err) || !strings.Contains(err.Error(), "2 of 2") {
		t.Errorf("all-missing batch error = %v", err)
	}

	_, _, err = runCLI(t, "resolve", "a..b")
	if !errors.Is(err, errors.ErrCodeInvalidSymbol) {
		t.Errorf("invalid symbol error = %v", err)
	}

	_, _, err = runCLI(t, "resolve", "a.b", "--format", "pdf")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("invalid format error = %v", err)
	}
}

func TestBatchError(t *testing.T) {
	missing := errors.New(errors.ErrCodeMappingNotFound, "no package mapping")
	tests := []struct {
		name string
		errs []error
		want errors.Code
	}{
		{"shared code", []error{missing, nil, errors.New(errors.ErrCodeMappingNotFound, "other")}, errors.ErrCodeMappingNotFound},
		{"mixed codes", []error{missing, errors.New(errors.ErrCodeNetwork, "down")}, ""},
		{"uncoded error", []error{missing, os.ErrNotExist}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := batchError(tt.errs, "%d failed", 2)
			if got := errors.UserMessage(err); got != "2 failed" {
				t.Errorf("message = %q, want %q", got, "2 failed")
			}
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("code = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveCommandTable(t *testing.T) {
	dir := isolate(t)
	mapping := writeFile(t, dir, "mapping.json", testMapping)

	out, _, err := runCLI(t, "resolve", "-m", mapping, "--table", "classy.widgets.Button", "X")
	if err == nil {
		t.Error("expected error for unresolved row")
	}
	if strings.Contains(out, "\u2014") {
		t.Errorf("unresolved row should use a plain placeholder:\n%s", out)
	}
	for _, want := range []string{"Symbol", "classy.widgets", "/docs/api/widgets/#classy-widgets-Button", "X"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestResolveCommandConfig(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "mapping.yaml", "classy: classy.widgets\n")
	writeFile(t, dir, "apilink.toml", `
[site]
base_path = "https://classy.dev/api/"

[mapping]
file = "mapping.yaml"

[resolve]
on_missing = "fallback"
fallback_package = "classy.core"
`)

	out, _, err := runCLI(t, "resolve", "classy.widgets.Button", "Other.thing")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := "https://classy.dev/api/widgets/#classy-widgets-Button\nhttps://classy.dev/api/core/#Other-thing\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	_, _, err = runCLI(t, "--config", filepath.Join(dir, "missing.toml"), "resolve", "a.b@a")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing config error = %v", err)
	}
}

func TestRenderCommand(t *testing.T) {
	isolate(t)

	out, _, err := runCLI(t, "render", "a.b", "--package", "a", "--display", "Click me")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "<a href=\"/docs/api/a/#a-b\" title=\"a.b\">Click me</a>\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	out, _, err = runCLI(t, "render", "a.b@a", "--class", "api", "--target", "_blank", "--no-title")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "<a href=\"/docs/api/a/#a-b\" class=\"api\" target=\"_blank\" rel=\"noopener noreferrer\">a.b</a>\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	_, _, err = runCLI(t, "render", "a.b@a", "--format", "markdown", "--class", "api")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("html-only flag error = %v", err)
	}
}

func TestExpandCommand(t *testing.T) {
	dir := isolate(t)
	mapping := writeFile(t, dir, "mapping.json", testMapping)
	doc := "# Guide\n\nUse <ApiLink name=\"classy.widgets.Button\" displayName=\"Button\" />.\n"
	path := writeFile(t, dir, "guide.mdx", doc)

	out, _, err := runCLI(t, "expand", "-m", mapping, "--format", "markdown", path)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	want := "# Guide\n\nUse [Button](/docs/api/widgets/#classy-widgets-Button \"classy.widgets.Button\").\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	if _, _, err := runCLI(t, "expand", "-m", mapping, "--check", path); err != nil {
		t.Errorf("check: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != doc {
		t.Error("--check must not modify files")
	}

	if _, _, err := runCLI(t, "expand", "-m", mapping, "--write", path); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `<a href="/docs/api/widgets/#classy-widgets-Button" title="classy.widgets.Button">Button</a>`) {
		t.Errorf("file not rewritten: %s", data)
	}
}

func TestExpandCommandErrors(t *testing.T) {
	dir := isolate(t)
	mapping := writeFile(t, dir, "mapping.json", testMapping)
	a := writeFile(t, dir, "a.mdx", "<ApiLink name=\"X\" />\n<ApiLink name=\"classy.A\" />\n")
	b := writeFile(t, dir, "b.mdx", "none\n")

	_, _, err := runCLI(t, "expand", "-m", mapping, a, b)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("multiple files without --write error = %v", err)
	}

	_, _, err = runCLI(t, "expand", "-m", mapping, a)
	if !resolver.IsMissingMapping(err) {
		t.Errorf("unresolved tag error = %v", err)
	}

	_, _, err = runCLI(t, "expand", "-m", mapping, "--check", "--write", a)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("--check with --write error = %v", err)
	}
	if data, _ := os.ReadFile(a); !strings.HasPrefix(string(data), "<ApiLink name=\"X\" />\n<ApiLink") {
		t.Errorf("--check --write must leave files alone: %s", data)
	}

	_, stderr, err := runCLI(t, "expand", "-m", mapping, "--write", "--keep-going", a, b)
	if !resolver.IsMissingMapping(err) || !strings.Contains(err.Error(), "1 tags") {
		t.Errorf("keep-going error = %v", err)
	}
	if !strings.Contains(stderr, "unresolved tag") {
		t.Errorf("stderr should report the tag: %q", stderr)
	}
	data, _ := os.ReadFile(a)
	if !strings.HasPrefix(string(data), "<ApiLink name=\"X\" />\n<a href=") {
		t.Errorf("keep-going should expand resolvable tags only: %s", data)
	}
}

func TestMappingCommands(t *testing.T) {
	dir := isolate(t)
	good := writeFile(t, dir, "mapping.json", testMapping)
	bad := writeFile(t, dir, "bad.yaml", "classy.widgets: classy\n")

	out, _, err := runCLI(t, "mapping", "show", "-m", good, "--format", "yaml")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if want := "classy: classy.widgets\nfoo: foo.baz\n"; out != want {
		t.Errorf("show = %q, want %q", out, want)
	}

	out, _, err = runCLI(t, "mapping", "show", "-m", good)
	if err != nil {
		t.Fatalf("show table: %v", err)
	}
	if !strings.Contains(out, "Segment") || !strings.Contains(out, "foo.baz") {
		t.Errorf("show table = %s", out)
	}

	out, _, err = runCLI(t, "mapping", "validate", good)
	if err != nil || !strings.Contains(out, "2 entries") {
		t.Errorf("validate good = %q, %v", out, err)
	}

	_, _, err = runCLI(t, "mapping", "validate", good, bad)
	if !errors.Is(err, errors.ErrCodeInvalidMapping) {
		t.Errorf("validate bad error = %v", err)
	}
}

func TestMappingBuildCommand(t *testing.T) {
	dir := isolate(t)
	inv := writeFile(t, dir, "inventory.yaml", `
classy.widgets:
  - classy.widgets.Button
foo.baz:
  - foo.Bar
  - foo.Qux.method
`)

	out, _, err := runCLI(t, "mapping", "build", inv, "--format", "toml")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out, `classy = "classy.widgets"`) || !strings.Contains(out, `foo = "foo.baz"`) {
		t.Errorf("build output = %s", out)
	}

	target := filepath.Join(dir, "out.json")
	if _, _, err := runCLI(t, "mapping", "build", inv, "-o", target); err != nil {
		t.Fatalf("build -o: %v", err)
	}
	out, _, err = runCLI(t, "resolve", "-m", target, "foo.Qux.method")
	if err != nil || out != "/docs/api/foo/baz/#foo-Qux-method\n" {
		t.Errorf("resolve against built table = %q, %v", out, err)
	}

	conflict := writeFile(t, dir, "conflict.yaml", "other.pkg:\n  - classy.Thing\n")
	_, _, err = runCLI(t, "mapping", "build", inv, conflict)
	if !errors.Is(err, errors.ErrCodeInvalidMapping) {
		t.Errorf("conflict error = %v", err)
	}
}

func TestMappingPublishRequiresStore(t *testing.T) {
	dir := isolate(t)
	good := writeFile(t, dir, "mapping.json", testMapping)

	_, _, err := runCLI(t, "mapping", "publish", good)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("publish without store error = %v", err)
	}

	_, _, err = runCLI(t, "mapping", "publish", good, "--to", "s3")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown target error = %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := isolate(t)

	out, _, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if want := filepath.Join(dir, "cache", appName) + "\n"; out != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}

	out, _, err = runCLI(t, "cache", "clear")
	if err != nil || !strings.Contains(out, "Cache is empty") {
		t.Errorf("cache clear = %q, %v", out, err)
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the command name")
	}
}
