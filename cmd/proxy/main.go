package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jammie-jelly/Roadmap.sh-009/internal/cache"
	"github.com/jammie-jelly/Roadmap.sh-009/internal/config"
	"github.com/jammie-jelly/Roadmap.sh-009/internal/proxy"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath  string
		port        int
		backend     string
		cacheDir    string
		ttl         int
		metricsPort int
		clear       bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:     "caching-proxy",
		Short:   "Forwarding HTTP proxy that caches backend responses on disk",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}

			cfg, err := loadConfig(cmd, configPath, port, backend, cacheDir, ttl, metricsPort)
			if err != nil {
				return err
			}

			if clear {
				return clearCache(cfg)
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			store, err := newStore(cfg)
			if err != nil {
				return err
			}

			server, err := proxy.New(cfg, store)
			if err != nil {
				return fmt.Errorf("creating proxy server: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	cmd.Flags().IntVar(&port, "port", 3000, "port to listen on")
	cmd.Flags().StringVar(&backend, "backend", "", "backend base URL (required unless --clear)")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "/tmp/proxy_cache", "directory for persisted cache entries")
	cmd.Flags().IntVar(&ttl, "ttl", 300, "cache TTL in seconds")
	cmd.Flags().IntVar(&metricsPort, "metrics-port", 0, "port for /metrics and /healthz (0 disables)")
	cmd.Flags().BoolVar(&clear, "clear", false, "clear the cache and exit")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

// loadConfig merges the optional YAML file with any flags the user set
// explicitly. Flags win over the file, the file wins over defaults.
func loadConfig(cmd *cobra.Command, configPath string, port int, backend, cacheDir string, ttl, metricsPort int) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("port") || cfg.Server.Port == 0 {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("backend") || cfg.Server.Backend == "" {
		cfg.Server.Backend = backend
	}
	if cmd.Flags().Changed("cache-dir") || cfg.Cache.Dir == "" {
		cfg.Cache.Dir = cacheDir
	}
	if cmd.Flags().Changed("ttl") || cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = ttl
	}
	if cmd.Flags().Changed("metrics-port") {
		cfg.Server.MetricsPort = metricsPort
	}

	return cfg, nil
}

func newStore(cfg *config.Config) (cache.Store, error) {
	if cfg.Cache.Backend == config.BackendMemory {
		store, err := cache.NewMemory(cfg.TTL(), nil)
		if err != nil {
			return nil, fmt.Errorf("creating memory cache: %w", err)
		}
		return store, nil
	}

	store := cache.NewDisk(cfg.Cache.Dir, cfg.TTL(), nil)
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return store, nil
}

// clearCache wipes the disk store and exits without binding the listener.
func clearCache(cfg *config.Config) error {
	store := cache.NewDisk(cfg.Cache.Dir, cfg.TTL(), nil)
	removed, err := store.Clear()
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	fmt.Printf("Cache cleared. (%d entries removed)\n", removed)
	return nil
}
