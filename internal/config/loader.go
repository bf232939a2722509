package config

import (
	stderrors "errors"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/minhaarvore/arvore/pkg/errors"
)

const envPrefix = "ARVORE"

// configKeys lists every known key so environment-only values survive
// Unmarshal; viper ignores env variables for keys it has never seen.
var configKeys = []string{
	"server.host", "server.port", "server.mode",
	"server.read_timeout", "server.write_timeout", "server.shutdown_timeout",
	"storage.backend",
	"database.host", "database.port", "database.database",
	"database.username", "database.password", "database.ssl_mode",
	"database.max_conns", "database.min_conns",
	"database.conn_max_lifetime", "database.conn_max_idle_time",
	"database.migrations_dir",
	"neo4j.uri", "neo4j.username", "neo4j.password", "neo4j.database",
	"neo4j.max_connection_pool_size", "neo4j.max_connection_lifetime",
	"redis.mode", "redis.addr", "redis.master_name",
	"redis.sentinel_addrs", "redis.cluster_addrs",
	"redis.username", "redis.password", "redis.db", "redis.pool_size",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"kafka.enabled", "kafka.brokers", "kafka.acks",
	"kafka.batch_timeout", "kafka.write_timeout", "kafka.max_attempts",
	"log.level", "log.format", "log.output_paths", "log.error_output_paths",
	"engine.duplicate_threshold", "engine.max_ancestry_depth",
	"engine.kinship_max_depth", "engine.reconcile_interval",
	"engine.duplicate_scan_interval", "engine.birthday_scan_hour_utc",
	"engine.snapshot_cache_ttl", "engine.pass_lock_ttl",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads configuration from the given file path, overlays environment
// variables (ARVORE_ prefix, dots replaced with underscores), applies
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file")
		}
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds the configuration from environment variables and
// defaults alone; useful for containers that mount no config file.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to unmarshal config")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "config validation failed")
	}
	return cfg, nil
}

// Watch re-reads the config file on change and delivers the new snapshot to
// onChange.  Snapshots that fail validation are dropped.
func Watch(path string, onChange func(*Config)) error {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file")
	}
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is Load that panics on error, for main() wiring.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}
