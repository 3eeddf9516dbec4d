package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/mapping"
)

// mappingCommand creates the mapping management command.
func (c *CLI) mappingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Manage the package mapping table",
		Long: `The package mapping table tells apilink which package documents each
top-level name: {"classy": "classy.widgets", "foo": "foo.baz"}.

Tables are read from a JSON, TOML or YAML file, a Redis hash or a MongoDB
collection, as configured in apilink.toml.`,
	}

	cmd.AddCommand(c.mappingShowCommand())
	cmd.AddCommand(c.mappingValidateCommand())
	cmd.AddCommand(c.mappingBuildCommand())
	cmd.AddCommand(c.mappingPublishCommand())

	return cmd
}

// mappingShowCommand creates the "mapping show" subcommand.
func (c *CLI) mappingShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the configured mapping table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			if format != "" {
				f, err := mapping.ParseFormat(format)
				if err != nil {
					return err
				}
				return mapping.Encode(c.out, t, f)
			}

			if t.Len() == 0 {
				printInfo(c.out, "Mapping table is empty")
				return nil
			}
			rows := make([][]string, 0, t.Len())
			for _, e := range t.Entries() {
				rows = append(rows, []string{e.Segment, e.Package})
			}
			printTable(c.out, []string{"Segment", "Package"}, rows, nil)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "print as json, toml or yaml instead of a table")
	return cmd
}

// mappingValidateCommand creates the "mapping validate" subcommand.
func (c *CLI) mappingValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check mapping files for errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invalid := 0
			for _, path := range args {
				t, err := mapping.LoadFile(path)
				if err != nil {
					printError(c.out, "%s: %s", path, errors.UserMessage(err))
					invalid++
					continue
				}
				printSuccess(c.out, "%s: %d entries", path, t.Len())
			}
			if invalid > 0 {
				return errors.New(errors.ErrCodeInvalidMapping, "%d of %d mapping files are invalid", invalid, len(args))
			}
			return nil
		},
	}
}

// mappingBuildCommand creates the "mapping build" subcommand.
func (c *CLI) mappingBuildCommand() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "build INVENTORY...",
		Short: "Build a mapping table from package inventories",
		Long: `Build a mapping table from inventories emitted by the documentation build.

An inventory lists, per package, the symbols it documents:

  classy.widgets:
    - classy.widgets.Button
    - classy.widgets.Slider
  foo.baz:
    - foo.Bar

The top-level segment of every symbol is mapped to its package. A segment
claimed by two different packages is an error.`,
		Example: `  apilink mapping build inventory/*.yaml -o package-mapping.json`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := mapping.NewBuilder()
			for _, path := range args {
				inv, err := mapping.LoadInventory(path)
				if err != nil {
					return err
				}
				if err := b.AddInventory(inv); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidMapping, err, "%s", path)
				}
			}
			t, err := b.Build()
			if err != nil {
				return err
			}

			if output != "" {
				if err := mapping.WriteFile(output, t); err != nil {
					return err
				}
				printSuccess(c.errOut, "Built mapping with %d entries", t.Len())
				printFile(c.errOut, output)
				return nil
			}

			f := mapping.FormatJSON
			if format != "" {
				if f, err = mapping.ParseFormat(format); err != nil {
					return err
				}
			}
			return mapping.Encode(c.out, t, f)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file (format from extension)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "stdout format: json, toml or yaml")
	return cmd
}

// mappingPublishCommand creates the "mapping publish" subcommand.
func (c *CLI) mappingPublishCommand() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "publish FILE",
		Short: "Publish a mapping file to Redis or MongoDB",
		Long: `Replace the mapping table in the configured Redis hash or MongoDB collection
with the contents of FILE. Servers pick the new table up on their next reload.`,
		Example: `  APILINK_REDIS_ADDR=localhost:6379 apilink mapping publish package-mapping.json
  apilink mapping publish package-mapping.yaml --to mongo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := mapping.LoadFile(args[0])
			if err != nil {
				return err
			}

			pub, release, err := c.openPublisher(ctx, to)
			if err != nil {
				return err
			}
			defer release()

			spin := newSpinner(ctx, c.errOut, "Publishing to "+pub.Name())
			spin.Start()
			err = pub.Publish(ctx, t)
			spin.Stop()
			if err != nil {
				return err
			}
			printSuccess(c.out, "Published %d entries", t.Len())
			printDetail(c.out, "Destination: %s", pub.Name())
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "destination: redis or mongo (default: from config)")
	return cmd
}
