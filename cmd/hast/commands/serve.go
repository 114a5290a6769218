package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hast"
	"github.com/hupe1980/hast/internal/config"
	"github.com/hupe1980/hast/internal/ingest"
	"github.com/hupe1980/hast/internal/metrics"
	"github.com/hupe1980/hast/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var (
		address       string
		sharedLookups bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Long: `Recover the index from the working directory and serve POST /insert and
GET /lookup until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			extra := map[string]any{}
			if cmd.Flags().Changed("server") {
				extra["server.address"] = address
			}
			if cmd.Flags().Changed("shared-lookups") {
				extra["server.shared_lookups"] = sharedLookups
			}

			cfg, err := loadConfig(cmd, extra)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&address, "server", "s", config.DefaultAddress, "listen address")
	cmd.Flags().BoolVar(&sharedLookups, "shared-lookups", false, "let lookups run concurrently")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}

	var (
		prom     *metrics.Prometheus
		hastOpts []hast.Option
	)
	if cfg.Server.Metrics {
		prom = metrics.NewPrometheus()
		hastOpts = append(hastOpts, hast.WithMetricsCollector(prom))
	}

	storage, err := openStorage(ctx, cfg, logger, hastOpts...)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	stats := storage.Stats()
	logger.Info("storage ready",
		"location", storage.Location(),
		"reports", stats.Reports,
		"hashes", stats.Hashes,
		"names", stats.Names,
	)

	locker := hast.Locker(hast.NewExclusiveLocker())
	if cfg.Server.SharedLookups {
		locker = hast.NewSharedLocker(cfg.Server.MaxReaders)
	}
	guarded := hast.NewGuarded(storage, locker)

	limit, err := cfg.Server.BodyLimit()
	if err != nil {
		return err
	}

	srvOpts := []server.Option{
		server.WithLogger(logger.Logger),
		server.WithBodyLimit(limit),
		server.WithRateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst),
		server.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	}
	if prom != nil {
		srvOpts = append(srvOpts, server.WithMetrics(prom))
	}
	srv := server.New(guarded, srvOpts...)

	var consumer *ingest.Consumer
	if cfg.Kafka.Enabled {
		consumer, err = ingest.NewConsumer(ingest.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			Group:   cfg.Kafka.Group,
		}, guarded, logger.Logger)
		if err != nil {
			return err
		}
		defer consumer.Close()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Server.Address)
	})

	if consumer != nil {
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}

	return g.Wait()
}
