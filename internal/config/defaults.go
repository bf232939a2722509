package config

import "time"

// Default values applied to any field left unset by the file and environment.
const (
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultStorageBackend = BackendMemory

	DefaultDatabasePort  = 5432
	DefaultDatabaseName  = "arvore"
	DefaultDatabaseUser  = "arvore"
	DefaultMigrationsDir = "migrations"

	DefaultNeo4jDatabase = "neo4j"

	DefaultRedisMode = "standalone"
	DefaultRedisAddr = "localhost:6379"

	DefaultKafkaAcks         = "all"
	DefaultKafkaBatchTimeout = 100 * time.Millisecond
	DefaultKafkaWriteTimeout = 10 * time.Second
	DefaultKafkaMaxAttempts  = 3

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultDuplicateThreshold    = 80
	DefaultMaxAncestryDepth      = 64
	DefaultKinshipMaxDepth       = 32
	DefaultReconcileInterval     = 10 * time.Minute
	DefaultDuplicateScanInterval = time.Hour
	DefaultBirthdayScanHourUTC   = 6
	DefaultSnapshotCacheTTL      = 5 * time.Minute
	DefaultPassLockTTL           = 5 * time.Minute
)

// ApplyDefaults fills zero-valued fields in place.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.Mode == "" {
		c.Server.Mode = DefaultServerMode
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = DefaultStorageBackend
	}

	if c.Database.Port == 0 {
		c.Database.Port = DefaultDatabasePort
	}
	if c.Database.Database == "" {
		c.Database.Database = DefaultDatabaseName
	}
	if c.Database.Username == "" {
		c.Database.Username = DefaultDatabaseUser
	}
	if c.Database.MigrationsDir == "" {
		c.Database.MigrationsDir = DefaultMigrationsDir
	}

	if c.Neo4j.Database == "" {
		c.Neo4j.Database = DefaultNeo4jDatabase
	}

	if c.Redis.Mode == "" {
		c.Redis.Mode = DefaultRedisMode
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = DefaultRedisAddr
	}

	if c.Kafka.Producer.Acks == "" {
		c.Kafka.Producer.Acks = DefaultKafkaAcks
	}
	if c.Kafka.Producer.BatchTimeout == 0 {
		c.Kafka.Producer.BatchTimeout = DefaultKafkaBatchTimeout
	}
	if c.Kafka.Producer.WriteTimeout == 0 {
		c.Kafka.Producer.WriteTimeout = DefaultKafkaWriteTimeout
	}
	if c.Kafka.Producer.MaxAttempts == 0 {
		c.Kafka.Producer.MaxAttempts = DefaultKafkaMaxAttempts
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	if c.Engine.DuplicateThreshold == 0 {
		c.Engine.DuplicateThreshold = DefaultDuplicateThreshold
	}
	if c.Engine.MaxAncestryDepth == 0 {
		c.Engine.MaxAncestryDepth = DefaultMaxAncestryDepth
	}
	if c.Engine.KinshipMaxDepth == 0 {
		c.Engine.KinshipMaxDepth = DefaultKinshipMaxDepth
	}
	if c.Engine.ReconcileInterval == 0 {
		c.Engine.ReconcileInterval = DefaultReconcileInterval
	}
	if c.Engine.DuplicateScanInterval == 0 {
		c.Engine.DuplicateScanInterval = DefaultDuplicateScanInterval
	}
	if c.Engine.BirthdayScanHourUTC == 0 {
		c.Engine.BirthdayScanHourUTC = DefaultBirthdayScanHourUTC
	}
	if c.Engine.SnapshotCacheTTL == 0 {
		c.Engine.SnapshotCacheTTL = DefaultSnapshotCacheTTL
	}
	if c.Engine.PassLockTTL == 0 {
		c.Engine.PassLockTTL = DefaultPassLockTTL
	}
}
