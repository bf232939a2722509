// Package config provides configuration loading, defaults, and validation.
// Section types owned by infrastructure packages are reused directly so the
// parsed file maps one-to-one onto the components it configures.
package config

import (
	"fmt"
	"time"

	neo4jdrv "github.com/minhaarvore/arvore/internal/infrastructure/database/neo4j"
	"github.com/minhaarvore/arvore/internal/infrastructure/database/postgres"
	redisdb "github.com/minhaarvore/arvore/internal/infrastructure/database/redis"
	"github.com/minhaarvore/arvore/internal/infrastructure/messaging/kafka"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
)

// Storage backends selectable for the person graph.
const (
	BackendPostgres = "postgres"
	BackendNeo4j    = "neo4j"
	BackendMemory   = "memory"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig selects the graph backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
}

// EngineConfig holds the graph-engine tunables.
type EngineConfig struct {
	DuplicateThreshold    int           `mapstructure:"duplicate_threshold"`
	MaxAncestryDepth      int           `mapstructure:"max_ancestry_depth"`
	KinshipMaxDepth       int           `mapstructure:"kinship_max_depth"`
	ReconcileInterval     time.Duration `mapstructure:"reconcile_interval"`
	DuplicateScanInterval time.Duration `mapstructure:"duplicate_scan_interval"`
	BirthdayScanHourUTC   int           `mapstructure:"birthday_scan_hour_utc"`
	SnapshotCacheTTL      time.Duration `mapstructure:"snapshot_cache_ttl"`
	PassLockTTL           time.Duration `mapstructure:"pass_lock_ttl"`
}

// KafkaConfig wraps the producer settings with an enable switch; event
// publishing is optional in local setups.
type KafkaConfig struct {
	Enabled  bool                 `mapstructure:"enabled"`
	Producer kafka.ProducerConfig `mapstructure:",squash"`
}

// Config is the root configuration.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Storage  StorageConfig     `mapstructure:"storage"`
	Database postgres.Config   `mapstructure:"database"`
	Neo4j    neo4jdrv.Config   `mapstructure:"neo4j"`
	Redis    redisdb.Config    `mapstructure:"redis"`
	Kafka    KafkaConfig       `mapstructure:"kafka"`
	Log      logging.LogConfig `mapstructure:"log"`
	Engine   EngineConfig      `mapstructure:"engine"`
}

// Validate checks cross-field constraints after defaults are applied.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Storage.Backend {
	case BackendPostgres, BackendNeo4j, BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be one of postgres, neo4j, memory; got %q", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendPostgres && c.Database.Host == "" {
		return fmt.Errorf("database.host required for the postgres backend")
	}
	if c.Storage.Backend == BackendNeo4j && c.Neo4j.URI == "" {
		return fmt.Errorf("neo4j.uri required for the neo4j backend")
	}
	if c.Engine.DuplicateThreshold <= 0 || c.Engine.DuplicateThreshold > 100 {
		return fmt.Errorf("engine.duplicate_threshold must be in (0,100]: %d", c.Engine.DuplicateThreshold)
	}
	if c.Engine.MaxAncestryDepth <= 0 {
		return fmt.Errorf("engine.max_ancestry_depth must be positive: %d", c.Engine.MaxAncestryDepth)
	}
	if c.Engine.KinshipMaxDepth <= 0 {
		return fmt.Errorf("engine.kinship_max_depth must be positive: %d", c.Engine.KinshipMaxDepth)
	}
	if c.Engine.BirthdayScanHourUTC < 0 || c.Engine.BirthdayScanHourUTC > 23 {
		return fmt.Errorf("engine.birthday_scan_hour_utc must be an hour of day: %d", c.Engine.BirthdayScanHourUTC)
	}
	if c.Kafka.Enabled && len(c.Kafka.Producer.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	return nil
}
