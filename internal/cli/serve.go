package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/apilink/internal/server"
	"github.com/matzehuels/apilink/pkg/mapping"
	"github.com/matzehuels/apilink/pkg/observability"
	"github.com/matzehuels/apilink/pkg/resolver"
)

// serveOpts holds flags for the serve command.
type serveOpts struct {
	addr    string
	siteURL string
	reload  time.Duration
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve link resolution over HTTP",
		Long: `Run an HTTP server that resolves symbols to documentation links.

  GET  /v1/resolve?name=classy.widgets.Button     JSON link
  POST /v1/resolve                                batch of refs
  GET  /v1/link?name=a.b&display=Click+me         rendered anchor
  GET  /v1/mapping                                mapping table
  GET  /go/classy.widgets.Button                  redirect to the docs
  GET  /healthz                                   health check

With --reload the mapping table is re-read periodically, so tables published
with "apilink mapping publish" go live without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.siteURL, "site-url", "", "documentation site prepended to redirect targets")
	cmd.Flags().DurationVar(&opts.reload, "reload", 0, "mapping reload interval (0 disables)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg := c.settings()
	if opts.addr == "" {
		opts.addr = cfg.Server.Addr
	}
	if opts.siteURL == "" {
		opts.siteURL = cfg.Server.SiteURL
	}

	hooks := logHooks{logger: c.Logger}
	observability.SetResolveHooks(hooks)
	observability.SetMappingHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	src, release, err := c.openSource(ctx)
	if err != nil {
		return err
	}
	defer release()

	ropts, err := cfg.ResolverOptions()
	if err != nil {
		return err
	}
	ropts.Logger = c.Logger

	r, err := buildResolver(ctx, src, ropts)
	if err != nil {
		return err
	}

	srv, err := server.New(r, server.Options{
		Addr:    opts.addr,
		SiteURL: opts.siteURL,
		Logger:  c.Logger,
	})
	if err != nil {
		return err
	}

	if opts.reload > 0 {
		go c.reloadLoop(ctx, src, srv, ropts, opts.reload)
	}
	return srv.Run(ctx)
}

func buildResolver(ctx context.Context, src mapping.Source, opts resolver.Options) (*resolver.Resolver, error) {
	t, err := mapping.Load(ctx, src, opts.Logger)
	if err != nil {
		return nil, err
	}
	return resolver.New(t, opts)
}

// reloadLoop re-reads the mapping table every interval and swaps the
// server's resolver. A failed reload keeps the previous table.
func (c *CLI) reloadLoop(ctx context.Context, src mapping.Source, srv *server.Server, opts resolver.Options, interval time.Duration) {
	if cs, ok := src.(*mapping.CachedSource); ok {
		cs.Refresh = true
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		r, err := buildResolver(ctx, src, opts)
		if err != nil {
			c.Logger.Warn("mapping reload failed, keeping previous table", "source", src.Name(), "error", err)
			continue
		}
		if !r.Table().Equal(srv.Resolver().Table()) {
			c.Logger.Info("mapping changed", "source", src.Name(), "entries", r.Table().Len())
		}
		srv.SetResolver(r)
	}
}
