// Package commands implements the hast subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/hast"
	"github.com/hupe1980/hast/blobstore"
	miniostore "github.com/hupe1980/hast/blobstore/minio"
	s3store "github.com/hupe1980/hast/blobstore/s3"
	"github.com/hupe1980/hast/codec"
	"github.com/hupe1980/hast/internal/config"
)

// Global flag values shared by all subcommands.
var (
	configPath string
	workdir    string
	logLevel   string
)

// AddGlobalFlags registers the flags every subcommand understands.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./hast.yaml, ~/.config/hast/hast.yaml, /etc/hast/hast.yaml)")
	root.PersistentFlags().StringVarP(&workdir, "workdir", "w", "", "working directory of the local backend (default "+config.DefaultWorkdir+")")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// loadConfig loads the configuration with flag values applied on top.
func loadConfig(cmd *cobra.Command, extra map[string]any) (*config.Config, error) {
	overrides := make(map[string]any, len(extra)+2)
	if cmd.Flags().Changed("workdir") {
		overrides["storage.workdir"] = workdir
	}
	if cmd.Flags().Changed("log-level") {
		overrides["logging.level"] = logLevel
	}
	for k, v := range extra {
		overrides[k] = v
	}
	return config.Load(configPath, overrides)
}

// newLogger builds the logger described by cfg.
func newLogger(cfg config.LoggingConfig) (*hast.Logger, error) {
	level, err := hast.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == config.LogFormatJSON {
		return hast.NewLogger(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return hast.NewLogger(slog.NewTextHandler(os.Stderr, opts)), nil
}

// newBackend returns the backend selected by cfg.
func newBackend(ctx context.Context, cfg config.StorageConfig) (hast.Backend, error) {
	switch cfg.Backend {
	case config.BackendS3:
		store, err := s3store.New(ctx, cfg.S3.Bucket,
			s3store.WithPrefix(cfg.S3.Prefix),
			s3store.WithRegion(cfg.S3.Region),
			s3store.WithEndpoint(cfg.S3.Endpoint),
		)
		if err != nil {
			return nil, err
		}
		return hast.Remote(store), nil

	case config.BackendMinio:
		client, err := miniostore.Dial(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Secure)
		if err != nil {
			return nil, err
		}
		return hast.Remote(miniostore.NewStore(client, cfg.Minio.Bucket, cfg.Minio.Prefix)), nil

	default:
		var opts []blobstore.LocalOption
		if cfg.AtomicWrites {
			opts = append(opts, blobstore.WithAtomicWrites())
		}
		if cfg.Sync {
			opts = append(opts, blobstore.WithSync())
		}
		return hast.Local(cfg.Workdir, opts...), nil
	}
}

// openStorage opens the configured storage and runs recovery.
func openStorage(ctx context.Context, cfg *config.Config, logger *hast.Logger, extra ...hast.Option) (*hast.Storage, error) {
	backend, err := newBackend(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("storage backend: %w", err)
	}

	c := codec.Default
	if cfg.Storage.Codec != "" {
		var ok bool
		if c, ok = codec.ByName(cfg.Storage.Codec); !ok {
			return nil, fmt.Errorf("%w: %q", config.ErrUnknownCodec, cfg.Storage.Codec)
		}
	}
	comp, err := codec.ParseCompression(cfg.Storage.Compression)
	if err != nil {
		return nil, err
	}

	opts := append([]hast.Option{
		hast.WithLogger(logger),
		hast.WithCodec(c),
		hast.WithCompression(comp),
		hast.WithRecoveryConcurrency(cfg.Storage.RecoveryConcurrency),
	}, extra...)

	return hast.Open(ctx, backend, opts...)
}
