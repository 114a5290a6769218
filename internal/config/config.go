// Package config loads the hast service configuration from a YAML file,
// HAST_* environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Config is the top-level configuration struct for hast.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
}

// StorageConfig selects and tunes the report store.
type StorageConfig struct {
	Workdir             string      `mapstructure:"workdir"`
	Backend             string      `mapstructure:"backend"`
	AtomicWrites        bool        `mapstructure:"atomic_writes"`
	Sync                bool        `mapstructure:"sync"`
	Codec               string      `mapstructure:"codec"`
	Compression         string      `mapstructure:"compression"`
	RecoveryConcurrency int         `mapstructure:"recovery_concurrency"`
	S3                  S3Config    `mapstructure:"s3"`
	Minio               MinioConfig `mapstructure:"minio"`
}

// S3Config holds settings for the s3 backend.
type S3Config struct {
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

// MinioConfig holds settings for the minio backend.
type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Secure    bool   `mapstructure:"secure"`
}

// ServerConfig holds HTTP transport settings.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	MaxBodyBytes    string        `mapstructure:"max_body_bytes"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst"`
	SharedLookups   bool          `mapstructure:"shared_lookups"`
	MaxReaders      int           `mapstructure:"max_readers"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Metrics         bool          `mapstructure:"metrics"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// KafkaConfig holds settings for the optional Kafka ingest consumer.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	Group   string   `mapstructure:"group"`
}

// Default values.
const (
	DefaultWorkdir         = "/tmp/hast/storage"
	DefaultBackend         = BackendLocal
	DefaultCodec           = "go-json"
	DefaultCompression     = "none"
	DefaultAddress         = "0.0.0.0:8888"
	DefaultMaxBodyBytes    = "32MiB"
	DefaultRateBurst       = 100
	DefaultMaxReaders      = 16
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = LogFormatText
	DefaultKafkaTopic      = "hast-reports"
	DefaultKafkaGroup      = "hast"
)

// Storage backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendMinio = "minio"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var (
	// ErrEmptyWorkdir indicates a local backend without a working directory.
	ErrEmptyWorkdir = errors.New("storage.workdir must be set for the local backend")
	// ErrUnknownBackend indicates an unsupported storage backend.
	ErrUnknownBackend = errors.New("storage.backend must be one of local, s3, minio")
	// ErrUnknownCodec indicates an unsupported codec name.
	ErrUnknownCodec = errors.New("storage.codec must be json or go-json")
	// ErrUnknownCompression indicates an unsupported compression name.
	ErrUnknownCompression = errors.New("storage.compression must be one of none, lz4, zstd")
	// ErrInvalidRecoveryConcurrency indicates a negative recovery concurrency.
	ErrInvalidRecoveryConcurrency = errors.New("storage.recovery_concurrency must be non-negative")
	// ErrMissingBucket indicates an object-store backend without a bucket.
	ErrMissingBucket = errors.New("a bucket must be set for the s3 and minio backends")
	// ErrMissingEndpoint indicates a minio backend without an endpoint.
	ErrMissingEndpoint = errors.New("storage.minio.endpoint must be set")
	// ErrEmptyAddress indicates a server without a listen address.
	ErrEmptyAddress = errors.New("server.address must be set")
	// ErrInvalidBodyLimit indicates an unparsable or non-positive body limit.
	ErrInvalidBodyLimit = errors.New("server.max_body_bytes must be a positive size")
	// ErrInvalidRateLimit indicates a negative rate limit.
	ErrInvalidRateLimit = errors.New("server.rate_limit must be non-negative")
	// ErrInvalidRateBurst indicates a rate limit without a positive burst.
	ErrInvalidRateBurst = errors.New("server.rate_burst must be positive when server.rate_limit is set")
	// ErrInvalidMaxReaders indicates a negative reader count.
	ErrInvalidMaxReaders = errors.New("server.max_readers must be non-negative")
	// ErrUnknownLogFormat indicates an unsupported log format.
	ErrUnknownLogFormat = errors.New("logging.format must be text or json")
	// ErrMissingBrokers indicates Kafka ingest without brokers.
	ErrMissingBrokers = errors.New("kafka.brokers must be set when kafka.enabled is true")
	// ErrMissingTopic indicates Kafka ingest without a topic.
	ErrMissingTopic = errors.New("kafka.topic must be set when kafka.enabled is true")
)

// BodyLimit returns MaxBodyBytes in bytes. Human-readable sizes such as
// "32MiB" are accepted.
func (s ServerConfig) BodyLimit() (int64, error) {
	n, err := humanize.ParseBytes(s.MaxBodyBytes)
	if err != nil || n == 0 {
		return 0, ErrInvalidBodyLimit
	}
	return int64(n), nil
}

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if c.Logging.Format != "" && !slices.Contains([]string{LogFormatText, LogFormatJSON}, c.Logging.Format) {
		return ErrUnknownLogFormat
	}
	return c.validateKafka()
}

func (c *Config) validateStorage() error {
	s := c.Storage

	switch s.Backend {
	case BackendLocal, "":
		if strings.TrimSpace(s.Workdir) == "" {
			return ErrEmptyWorkdir
		}
	case BackendS3:
		if s.S3.Bucket == "" {
			return ErrMissingBucket
		}
	case BackendMinio:
		if s.Minio.Endpoint == "" {
			return ErrMissingEndpoint
		}
		if s.Minio.Bucket == "" {
			return ErrMissingBucket
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, s.Backend)
	}

	if s.Codec != "" && !slices.Contains([]string{"json", "go-json"}, s.Codec) {
		return ErrUnknownCodec
	}
	if s.Compression != "" && !slices.Contains([]string{"none", "lz4", "zstd"}, s.Compression) {
		return ErrUnknownCompression
	}
	if s.RecoveryConcurrency < 0 {
		return ErrInvalidRecoveryConcurrency
	}
	return nil
}

func (c *Config) validateServer() error {
	s := c.Server

	if strings.TrimSpace(s.Address) == "" {
		return ErrEmptyAddress
	}
	if s.MaxBodyBytes != "" {
		if _, err := s.BodyLimit(); err != nil {
			return err
		}
	}
	if s.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if s.RateLimit > 0 && s.RateBurst <= 0 {
		return ErrInvalidRateBurst
	}
	if s.MaxReaders < 0 {
		return ErrInvalidMaxReaders
	}
	return nil
}

func (c *Config) validateKafka() error {
	if !c.Kafka.Enabled {
		return nil
	}
	if len(c.Kafka.Brokers) == 0 {
		return ErrMissingBrokers
	}
	if c.Kafka.Topic == "" {
		return ErrMissingTopic
	}
	return nil
}
