package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/render"
)

// renderOpts holds flags for the render command.
type renderOpts struct {
	pkg     string
	display string
	format  string
	class   string
	target  string
	noTitle bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: string(render.FormatHTML)}

	cmd := &cobra.Command{
		Use:   "render SYMBOL",
		Short: "Print a symbol as an HTML or Markdown link",
		Example: `  apilink render a.b --package a --display "Click me"
  apilink render classy.widgets.Button --format markdown
  apilink render classy.widgets.Button --class api-link --target _blank`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.pkg, "package", "p", "", "explicit package")
	cmd.Flags().StringVarP(&opts.display, "display", "d", "", "link text (default: the symbol name)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: html, markdown, url, json")
	cmd.Flags().StringVar(&opts.class, "class", "", "class attribute for HTML output")
	cmd.Flags().StringVar(&opts.target, "target", "", "target attribute for HTML output")
	cmd.Flags().BoolVar(&opts.noTitle, "no-title", false, "omit the title attribute in HTML output")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, arg string, opts renderOpts) error {
	ctx := cmd.Context()
	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if format != render.FormatHTML && (opts.class != "" || opts.target != "" || opts.noTitle) {
		return errors.New(errors.ErrCodeInvalidInput, "--class, --target and --no-title only apply to html output")
	}

	refs, err := parseRefs([]string{arg}, opts.pkg, opts.display)
	if err != nil {
		return err
	}
	r, err := c.newResolver(ctx)
	if err != nil {
		return err
	}
	link, err := r.Resolve(ctx, refs[0])
	if err != nil {
		return err
	}

	if format != render.FormatHTML {
		return render.Render(c.out, link, format)
	}

	var htmlOpts []render.HTMLOption
	if opts.class != "" {
		htmlOpts = append(htmlOpts, render.WithClass(opts.class))
	}
	if opts.target != "" {
		htmlOpts = append(htmlOpts, render.WithTarget(opts.target))
	}
	if opts.noTitle {
		htmlOpts = append(htmlOpts, render.WithoutTitle())
	}
	_, err = fmt.Fprintln(c.out, render.HTML(link, htmlOpts...))
	return err
}
