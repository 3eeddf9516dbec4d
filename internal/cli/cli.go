// Package cli implements the apilink command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/apilink/pkg/buildinfo"
	"github.com/matzehuels/apilink/pkg/cache"
	"github.com/matzehuels/apilink/pkg/config"
	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/mapping"
	"github.com/matzehuels/apilink/pkg/mapping/mongostore"
	"github.com/matzehuels/apilink/pkg/mapping/redisstore"
	"github.com/matzehuels/apilink/pkg/resolver"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "apilink"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out    io.Writer
	errOut io.Writer

	// Persistent flags.
	configPath  string
	mappingFile string
	noCache     bool

	// cfg is loaded by the root command's pre-run hook.
	cfg *config.Config
}

// New creates a new CLI instance writing results to out and logs to errOut.
func New(out, errOut io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(errOut, level),
		out:    out,
		errOut: errOut,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "apilink resolves API symbols to documentation links",
		Long: `apilink turns dotted symbol names such as classy.widgets.Button.onClick into
links to the API reference, using a table that maps each top-level name to the
package that documents it.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.preRun,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default ./apilink.toml)")
	flags.StringVarP(&c.mappingFile, "mapping", "m", "", "package mapping file (overrides config)")
	flags.BoolVar(&c.noCache, "no-cache", false, "bypass the mapping snapshot cache")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.expandCommand())
	root.AddCommand(c.mappingCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// preRun loads the configuration and attaches the logger to the context.
func (c *CLI) preRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if c.mappingFile != "" {
		cfg.Mapping.File = c.mappingFile
	}
	if c.noCache {
		cfg.Cache.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	c.cfg = cfg

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// settings returns the loaded configuration, falling back to defaults for
// commands run without the root pre-run hook.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Mapping and Resolver Factories
// =============================================================================

// openSource returns the configured mapping source and a function that
// releases its connections. Without any configured source the table is
// empty, so only symbols with an explicit package resolve.
func (c *CLI) openSource(ctx context.Context) (mapping.Source, func(), error) {
	m := c.settings().Mapping
	noop := func() {}

	switch {
	case m.File != "":
		return mapping.FileSource{Path: m.File}, noop, nil

	case m.RedisAddr != "":
		store, err := redisstore.New(m.RedisConfig())
		if err != nil {
			return nil, nil, err
		}
		return c.withSnapshots(store), func() { _ = store.Close() }, nil

	case m.MongoURI != "":
		store, err := mongostore.New(ctx, m.MongoConfig())
		if err != nil {
			return nil, nil, err
		}
		return c.withSnapshots(store), func() { _ = store.Close(context.Background()) }, nil
	}

	c.Logger.Debug("no package mapping configured")
	return mapping.StaticSource{}, noop, nil
}

// openPublisher returns a writable mapping store selected by target
// ("redis", "mongo" or "file"), or by configuration when target is empty.
func (c *CLI) openPublisher(ctx context.Context, target string) (mapping.Publisher, func(), error) {
	m := c.settings().Mapping
	if target == "" {
		switch {
		case m.RedisAddr != "":
			target = "redis"
		case m.MongoURI != "":
			target = "mongo"
		default:
			return nil, nil, errors.New(errors.ErrCodeInvalidConfig,
				"no mapping store configured: set mapping.redis_addr or mapping.mongo_uri")
		}
	}

	switch target {
	case "redis":
		store, err := redisstore.New(m.RedisConfig())
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "mongo":
		store, err := mongostore.New(ctx, m.MongoConfig())
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close(context.Background()) }, nil
	}
	return nil, nil, errors.New(errors.ErrCodeInvalidInput, "unknown publish target %q (want redis or mongo)", target)
}

// withSnapshots wraps a remote source with the snapshot cache. Disabled
// snapshots use a null cache, so loads still report cache misses.
func (c *CLI) withSnapshots(src mapping.Source) mapping.Source {
	cfg := c.settings().Cache
	fc, err := newCache(!cfg.Enabled)
	if err != nil {
		c.Logger.Warn("snapshot cache unavailable", "error", err)
		return src
	}
	cs := mapping.NewCachedSource(src, fc, cfg.TTL, c.Logger)
	if cfg.Scope != "" {
		cs.Keyer = cache.NewScopedKeyer(cs.Keyer, cfg.Scope+":")
	}
	return cs
}

// loadTable loads the configured mapping table. Remote loads show a spinner
// on the error stream.
func (c *CLI) loadTable(ctx context.Context) (*mapping.Table, error) {
	src, release, err := c.openSource(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if !c.settings().Mapping.Remote() {
		return mapping.Load(ctx, src, c.Logger)
	}

	spin := newSpinner(ctx, c.errOut, "Loading package mapping from "+src.Name())
	spin.Start()
	t, err := mapping.Load(ctx, src, c.Logger)
	spin.Stop()
	return t, err
}

// newResolver loads the mapping table and builds a resolver from the
// configuration.
func (c *CLI) newResolver(ctx context.Context) (*resolver.Resolver, error) {
	table, err := c.loadTable(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := c.settings().ResolverOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = c.Logger
	return resolver.New(table, opts)
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/apilink/).
func cacheDir() (string, error) {
	return cache.DefaultDir(appName)
}

// stdinPath is the argument that selects standard input.
const stdinPath = "-"

func readInput(path string) ([]byte, error) {
	if path == stdinPath {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "%s not found", path)
	}
	return data, err
}
