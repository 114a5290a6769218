package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = "hast"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for hast settings.
const envPrefix = "HAST"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Load loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, hast.yaml is searched in CWD, $HOME/.config/hast and /etc/hast.
// Missing config file is not an error; defaults are used.
//
// overrides are applied last, above every other source. Keys use the dotted
// form, e.g. "storage.workdir".
func Load(configPath string, overrides map[string]any) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home + "/.config/hast")
		}
		viperCfg.AddConfigPath("/etc/hast")
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	for key, value := range overrides {
		viperCfg.Set(key, value)
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("storage.workdir", DefaultWorkdir)
	viperCfg.SetDefault("storage.backend", DefaultBackend)
	viperCfg.SetDefault("storage.atomic_writes", false)
	viperCfg.SetDefault("storage.sync", false)
	viperCfg.SetDefault("storage.codec", DefaultCodec)
	viperCfg.SetDefault("storage.compression", DefaultCompression)
	viperCfg.SetDefault("storage.recovery_concurrency", 0)
	viperCfg.SetDefault("storage.s3.bucket", "")
	viperCfg.SetDefault("storage.s3.prefix", "")
	viperCfg.SetDefault("storage.s3.region", "")
	viperCfg.SetDefault("storage.s3.endpoint", "")
	viperCfg.SetDefault("storage.minio.endpoint", "")
	viperCfg.SetDefault("storage.minio.bucket", "")
	viperCfg.SetDefault("storage.minio.prefix", "")
	viperCfg.SetDefault("storage.minio.access_key", "")
	viperCfg.SetDefault("storage.minio.secret_key", "")
	viperCfg.SetDefault("storage.minio.secure", false)

	viperCfg.SetDefault("server.address", DefaultAddress)
	viperCfg.SetDefault("server.max_body_bytes", DefaultMaxBodyBytes)
	viperCfg.SetDefault("server.rate_limit", 0.0)
	viperCfg.SetDefault("server.rate_burst", DefaultRateBurst)
	viperCfg.SetDefault("server.shared_lookups", false)
	viperCfg.SetDefault("server.max_readers", DefaultMaxReaders)
	viperCfg.SetDefault("server.read_timeout", DefaultReadTimeout)
	viperCfg.SetDefault("server.write_timeout", DefaultWriteTimeout)
	viperCfg.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	viperCfg.SetDefault("server.metrics", true)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("kafka.enabled", false)
	viperCfg.SetDefault("kafka.brokers", []string{})
	viperCfg.SetDefault("kafka.topic", DefaultKafkaTopic)
	viperCfg.SetDefault("kafka.group", DefaultKafkaGroup)
}
