package cli

import (
	"context"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/familytree/internal/config"
	"github.com/matzehuels/familytree/pkg/buildinfo"
	"github.com/matzehuels/familytree/pkg/cache"
	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/integrations/familyapi"
	"github.com/matzehuels/familytree/pkg/pipeline"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	apiURL     string
	noCache    bool
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "familytree",
		Short:         "Familytree records people and their families",
		Long:          `Familytree is a client for a family-tree service. It lists, searches and edits family members, records marriages and parent/child links, and draws family trees in the terminal, as files, or in a browser.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/familytree/config.toml)")
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "family-tree service base URL (overrides config and "+config.EnvAPIURL+")")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable response caching")

	root.AddCommand(c.peopleCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.relateCommand())
	root.AddCommand(c.relationshipsCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.lineageCommand("descendants", "List descendants of a person (up to 5 generations)"))
	root.AddCommand(c.lineageCommand("ancestors", "List ancestors of a person (up to 5 generations)"))
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Service Access
// =============================================================================

// loadConfig reads the config file, applies global flag overrides and
// validates the result once.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Read(c.configPath)
	if err != nil {
		return cfg, err
	}
	if c.apiURL != "" {
		cfg.API.BaseURL = c.apiURL
	}
	if c.noCache {
		cfg.Cache.Backend = config.BackendNull
	}
	if !c.verbose {
		if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
			c.SetLogLevel(lvl)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// session bundles what a command needs to talk to the service.
type session struct {
	cfg    config.Config
	api    *familyapi.Client
	cache  cache.Cache
	runner *pipeline.Runner
}

func (s *session) Close() error { return s.cache.Close() }

// newSession loads config, opens the cache and builds the service client.
// The caller closes the session.
func (c *CLI) newSession(ctx context.Context) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	ch, err := cfg.OpenCache(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "err", err)
		ch = cache.NewNullCache()
	}

	api, err := familyapi.NewClient(familyapi.Options{
		BaseURL:    cfg.API.BaseURL,
		Cache:      ch,
		CacheTTL:   cfg.Cache.TTL.Duration,
		Retries:    cfg.API.Retries,
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout.Duration},
	})
	if err != nil {
		ch.Close()
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidConfig, err, "api.base_url")
	}
	c.Logger.Debug("using service", "url", api.BaseURL(), "cache", cfg.Cache.Backend)

	return &session{
		cfg:    cfg,
		api:    api,
		cache:  ch,
		runner: pipeline.NewRunner(api, ch, nil, c.Logger),
	}, nil
}
