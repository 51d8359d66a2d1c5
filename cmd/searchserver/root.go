package main

import (
	"context"
	"io"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-server/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "searchserver",
		Short:         "In-memory TF-IDF document index with sequential and parallel search.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	cmd.AddCommand(newRunCmd(opts), newBenchCmd(opts))
	return cmd
}

// loadConfig reads the config and installs the default logger on stderr.
func (o *rootOptions) loadConfig(stderr io.Writer) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	logger.Setup(stderr, cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

// services holds the optional collaborators built from config. close
// releases them in reverse order of creation.
type services struct {
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	cache     *cache.QueryCache
	collector *analytics.Collector
	closers   []func()
}

func startServices(ctx context.Context, cfg *config.Config) *services {
	log := logger.WithComponent("searchserver")
	s := &services{registry: prometheus.NewRegistry()}
	s.metrics = metrics.New(s.registry)

	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port, s.registry)
		s.closers = append(s.closers, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error("metrics server shutdown", "error", err)
			}
		})
	}

	if cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			s.closers = append(s.closers, func() { _ = client.Close() })
			s.cache = cache.New(client, cfg.Redis.CacheTTL, s.metrics)
			if err := s.cache.Invalidate(ctx); err != nil {
				log.Warn("clearing stale cache entries", "error", err)
			}
			log.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		s.collector = analytics.NewCollector(producer, cfg.Kafka.BufferSize, cfg.Kafka.BatchSize, time.Second)
		s.collector.Start(ctx)
		s.closers = append(s.closers,
			func() {
				if err := producer.Close(); err != nil {
					log.Error("closing kafka producer", "error", err)
				}
			},
			s.collector.Close,
		)
		log.Info("analytics events enabled", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	}
	return s
}

func (s *services) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}
