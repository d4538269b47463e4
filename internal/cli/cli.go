package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/peerscan/pkg/buildinfo"
	"github.com/matzehuels/peerscan/pkg/cache"
	"github.com/matzehuels/peerscan/pkg/errors"
	"github.com/matzehuels/peerscan/pkg/integrations/npm"
	"github.com/matzehuels/peerscan/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = buildinfo.Name

	// defaultTimeout bounds a whole command, registry lookups included.
	defaultTimeout = 2 * time.Minute
)

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
	Config Config

	// global flags
	configFile string
	registry   string
	noCache    bool
	timeout    time.Duration
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
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
		Short: "peerscan finds peer dependency conflicts in npm projects",
		Long: `peerscan reads package.json and package-lock.json, rebuilds the installed
package tree, and reports unsatisfied peer dependencies and singleton packages
installed at more than one major version, with the npm commands that fix them.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/peerscan/config.toml)")
	flags.StringVar(&c.registry, "registry", "", "npm registry URL (overrides config)")
	flags.BoolVar(&c.noCache, "no-cache", false, "bypass the registry cache")
	flags.DurationVar(&c.timeout, "timeout", defaultTimeout, "overall time limit")

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.suggestCommand())
	root.AddCommand(c.auditCommand())
	root.AddCommand(c.fixCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig(cmd *cobra.Command, _ []string) error {
	path, explicit := c.configFile, c.configFile != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			c.Logger.Debug("no config path", "err", err)
		}
		path = p
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}
	if c.registry != "" {
		if err := errors.ValidateURL(c.registry); err != nil {
			return err
		}
		cfg.Registry = c.registry
	}
	if c.noCache {
		cfg.Cache.Backend = backendNone
	}
	c.Config = cfg
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// commandContext applies --timeout to ctx.
func (c *CLI) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// =============================================================================
// Registry & Runner Factory
// =============================================================================

// newRegistry creates an npm client backed by the configured cache. The
// returned cache must be closed by the caller.
func (c *CLI) newRegistry(ctx context.Context) (*npm.Client, cache.Cache, error) {
	backing, err := c.newCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	client := npm.NewClient(backing, c.Config.Cache.TTL.Duration,
		npm.WithBaseURL(c.Config.Registry),
		npm.WithLogger(c.Logger),
	)
	return client, backing, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, cache.Cache, error) {
	reg, backing, err := c.newRegistry(ctx)
	if err != nil {
		return nil, nil, err
	}
	return pipeline.NewRunner(reg, c.Logger), backing, nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	switch c.Config.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendMemory:
		return cache.NewMemoryCache(), nil
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr: c.Config.Cache.RedisAddr,
			DB:   c.Config.Cache.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/peerscan/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// scanOptions builds pipeline options for dir from the config.
func (c *CLI) scanOptions(dir string) pipeline.Options {
	return pipeline.Options{
		Dir:         dir,
		Singletons:  c.Config.Singletons,
		Concurrency: c.Config.Concurrency,
		Logger:      c.Logger,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// projectDir returns the first positional argument or ".".
func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
