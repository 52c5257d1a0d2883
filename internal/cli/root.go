// Package cli implements the content-proxy command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/Sternrassler/content-client/internal/config"
	"github.com/Sternrassler/content-client/pkg/cache"
	"github.com/Sternrassler/content-client/pkg/client"
	"github.com/Sternrassler/content-client/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// app carries state shared by all subcommands.
type app struct {
	configFile string
	baseURL    string
	logLevel   string
	logFormat  string
	redisURL   string

	cfg *config.Config
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "content-proxy",
		Short: "Caching client and proxy for the research content API.",
		Long: `content-proxy talks to the research content API (videos, articles,
categories, statistics) through a response cache.

Use "serve" to run it as a caching HTTP proxy, or one of the query
commands to fetch data directly.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config-file", "", "YAML config file path")
	flags.StringVar(&a.baseURL, "base-url", "", "content API base URL (overrides CONTENT_BASE_URL)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: json or console")
	flags.StringVar(&a.redisURL, "redis-url", "", "use Redis as cache backend (redis://host:port/db or host:port)")

	root.AddCommand(
		a.newServeCommand(),
		a.newListCommand("videos", "List videos", listVideos),
		a.newListCommand("articles", "List articles", listArticles),
		a.newGetCommand("video", "Show one video", getVideo),
		a.newGetCommand("article", "Show one article", getArticle),
		a.newSimpleCommand("stats", "Show aggregate statistics", getStats),
		a.newSimpleCommand("categories", "List categories", getCategories),
		a.newSimpleCommand("health", "Probe the content API", getHealth),
	)

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// init loads configuration: defaults, file, environment, then flags.
func (a *app) init(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}

	if a.baseURL != "" {
		cfg.API.BaseURL = a.baseURL
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if a.redisURL != "" {
		cfg.Cache.Backend = config.BackendRedis
		cfg.Cache.RedisURL = a.redisURL
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logCfg, err := cfg.Logging()
	if err != nil {
		return err
	}
	logCfg.Output = cmd.ErrOrStderr()
	logging.Setup(logCfg)

	a.cfg = cfg
	return nil
}

// newClient builds the caching client for the configured backend. The
// returned close function releases the Redis connection, if any.
func (a *app) newClient(ctx context.Context) (*client.Client, func(), error) {
	ttl, err := a.cfg.CacheTTL()
	if err != nil {
		return nil, nil, err
	}
	timeout, err := a.cfg.Timeout()
	if err != nil {
		return nil, nil, err
	}

	clientCfg := client.DefaultConfig(a.cfg.API.BaseURL, a.cfg.API.UserAgent)
	clientCfg.AdminToken = a.cfg.API.AdminToken
	clientCfg.CacheTTL = ttl
	clientCfg.Timeout = timeout

	closeFn := func() {}
	storeLogger := logging.NewLogger("cache")

	switch a.cfg.Cache.Backend {
	case config.BackendRedis:
		opts, err := a.cfg.RedisOptions()
		if err != nil {
			return nil, nil, err
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
		}
		clientCfg.Store = cache.NewRedisStore(redisClient, cache.WithTTL(ttl), cache.WithLogger(storeLogger))
		closeFn = func() { redisClient.Close() }
	default:
		clientCfg.Store = cache.NewMemoryStore(cache.WithTTL(ttl), cache.WithLogger(storeLogger))
	}

	c, err := client.New(clientCfg)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return c, closeFn, nil
}
