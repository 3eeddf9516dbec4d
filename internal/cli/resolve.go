package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/render"
	"github.com/matzehuels/apilink/pkg/symbol"
)

// resolveOpts holds flags for the resolve command.
type resolveOpts struct {
	pkg     string
	display string
	format  string
	table   bool
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	opts := resolveOpts{format: string(render.FormatURL)}

	cmd := &cobra.Command{
		Use:   "resolve SYMBOL...",
		Short: "Print the documentation URL of symbols",
		Long: `Resolve symbols to documentation URLs.

Each SYMBOL is a dotted name, optionally followed by @package and |display text:

  classy.widgets.Button.onClick
  foo.Bar@foo.baz
  "a.b@a|Click me"`,
		Example: `  apilink resolve classy.widgets.Button.onClick
  apilink resolve foo.Bar --package foo.baz
  apilink resolve classy.A classy.B --table`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.pkg, "package", "p", "", "explicit package for every symbol")
	cmd.Flags().StringVarP(&opts.display, "display", "d", "", "display text for every symbol")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: url, html, markdown, json")
	cmd.Flags().BoolVarP(&opts.table, "table", "t", false, "print a table of symbols, packages and URLs")

	return cmd
}

// parseRefs reads the compact symbol form and applies flag overrides.
func parseRefs(args []string, pkg, display string) ([]symbol.Ref, error) {
	refs := make([]symbol.Ref, len(args))
	for i, arg := range args {
		ref, err := symbol.Parse(arg)
		if err != nil {
			return nil, err
		}
		if pkg != "" {
			ref = ref.WithPackage(pkg)
		}
		if display != "" {
			ref = ref.WithDisplayName(display)
		}
		if err := ref.Validate(); err != nil {
			return nil, err
		}
		refs[i] = ref
	}
	return refs, nil
}

// batchError summarises several failures. When every non-nil error in errs
// carries the same code the summary keeps it, so exit codes stay specific.
func batchError(errs []error, format string, args ...any) error {
	var code errors.Code
	for _, err := range errs {
		if err == nil {
			continue
		}
		c := errors.GetCode(err)
		if c == "" || (code != "" && c != code) {
			return fmt.Errorf(format, args...)
		}
		code = c
	}
	if code == "" {
		return fmt.Errorf(format, args...)
	}
	return errors.New(code, format, args...)
}

func (c *CLI) runResolve(cmd *cobra.Command, args []string, opts resolveOpts) error {
	ctx := cmd.Context()
	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	refs, err := parseRefs(args, opts.pkg, opts.display)
	if err != nil {
		return err
	}
	r, err := c.newResolver(ctx)
	if err != nil {
		return err
	}

	links, errs := r.ResolveAll(ctx, refs)
	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}

	if opts.table {
		rows := make([][]string, len(refs))
		bad := make(map[int]bool)
		for i, ref := range refs {
			if errs[i] != nil {
				rows[i] = []string{ref.Name, "-", errors.UserMessage(errs[i])}
				bad[i] = true
				continue
			}
			rows[i] = []string{ref.Name, links[i].Package, links[i].URL}
		}
		printTable(c.out, []string{"Symbol", "Package", "URL"}, rows, bad)
	} else {
		for i, link := range links {
			if errs[i] != nil {
				printError(c.errOut, "%s: %s", refs[i].Name, errors.UserMessage(errs[i]))
				continue
			}
			if err := render.Render(c.out, link, format); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		if len(refs) == 1 {
			return errs[0]
		}
		return batchError(errs, "%d of %d symbols could not be resolved", failed, len(refs))
	}
	return nil
}
