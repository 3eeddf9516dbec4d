package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/render"
)

// expandOpts holds flags for the expand command.
type expandOpts struct {
	format    string
	write     bool
	keepGoing bool
	check     bool
}

// expandCommand creates the expand command.
func (c *CLI) expandCommand() *cobra.Command {
	opts := expandOpts{format: string(render.FormatHTML)}

	cmd := &cobra.Command{
		Use:   "expand FILE...",
		Short: "Replace <ApiLink /> tags in documents with links",
		Long: `Expand <ApiLink name="..." package="..." displayName="..." /> tags in MDX or
Markdown files into HTML or Markdown links.

Without --write the result of a single FILE is printed to stdout. Use - to read
from stdin. With --keep-going, tags that cannot be resolved are left in place
and reported; the command still fails at the end.`,
		Example: `  apilink expand docs/guide.mdx
  apilink expand --write --keep-going docs/*.mdx
  apilink expand --check docs/*.mdx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExpand(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "link format: html, markdown, url")
	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "rewrite files in place")
	cmd.Flags().BoolVarP(&opts.keepGoing, "keep-going", "k", false, "continue past unresolvable tags")
	cmd.Flags().BoolVar(&opts.check, "check", false, "only report unresolvable tags; write nothing (not with --write)")

	return cmd
}

func (c *CLI) runExpand(cmd *cobra.Command, files []string, opts expandOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.check && opts.write {
		return errors.New(errors.ErrCodeInvalidInput, "--check and --write cannot be combined")
	}
	toStdout := !opts.write && !opts.check
	if toStdout && len(files) > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "expanding %d files requires --write or --check", len(files))
	}
	for _, f := range files {
		if f == stdinPath && opts.write {
			return errors.New(errors.ErrCodeInvalidInput, "cannot --write stdin")
		}
	}

	r, err := c.newResolver(ctx)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	keepGoing := opts.keepGoing || opts.check
	replaced := 0
	var failed []error
	for _, path := range files {
		src, err := readInput(path)
		if err != nil {
			return err
		}

		res, err := render.Expand(ctx, src, r, render.ExpandOptions{Format: format, KeepGoing: keepGoing})
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for _, tagErr := range res.Errors {
			logger.Warn("unresolved tag", "file", path, "line", tagErr.Line, "error", errors.UserMessage(tagErr.Err))
			failed = append(failed, tagErr.Err)
		}
		replaced += res.Replaced

		switch {
		case toStdout:
			if _, err := c.out.Write(res.Output); err != nil {
				return err
			}
		case opts.write && res.Replaced > 0:
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, res.Output, info.Mode().Perm()); err != nil {
				return err
			}
			logger.Debug("wrote file", "file", path, "tags", res.Replaced)
		}
	}

	prog.done(fmt.Sprintf("Expanded %d tags in %d files", replaced, len(files)))
	if len(failed) > 0 {
		return batchError(failed, "%d tags could not be resolved", len(failed))
	}
	return nil
}
