// Package config defines all configuration structures for the Urban-DDS
// platform.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// PublicDataConfig controls the government open-data gateway.  Enabled is the
// external-data feature flag; when false no gateway call is ever attempted.
// A non-positive TimeoutMS falls back to the gateway default.
type PublicDataConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	ServiceKey       string        `mapstructure:"service_key"`
	TimeoutMS        int           `mapstructure:"timeout_ms"`
	BuildingEndpoint string        `mapstructure:"building_endpoint"`
	TradeEndpoint    string        `mapstructure:"trade_endpoint"`
	TradeMonths      int           `mapstructure:"trade_months"`
	FactsCacheTTL    time.Duration `mapstructure:"facts_cache_ttl"`
}

// NarrativeConfig selects and parameterises the generative-model backend.
type NarrativeConfig struct {
	Backend          string        `mapstructure:"backend"` // "googleai" | "vertex"
	APIKey           string        `mapstructure:"api_key"`
	Model            string        `mapstructure:"model"`
	BaseURL          string        `mapstructure:"base_url"`
	VertexProject    string        `mapstructure:"vertex_project"`
	VertexLocation   string        `mapstructure:"vertex_location"`
	MetadataTokenURL string        `mapstructure:"metadata_token_url"`
	Temperature      float64       `mapstructure:"temperature"`
	MaxOutputTokens  int           `mapstructure:"max_output_tokens"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters for report storage.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis connection parameters for the external-facts cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds report-event producer/consumer parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	GroupID      string        `mapstructure:"group_id"`
	ReportTopic  string        `mapstructure:"report_topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// MinIOConfig holds object-storage parameters for the markdown report archive.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// OpenSearchConfig holds report search index parameters.
type OpenSearchConfig struct {
	Enabled            bool     `mapstructure:"enabled"`
	Addresses          []string `mapstructure:"addresses"`
	User               string   `mapstructure:"user"`
	Password           string   `mapstructure:"password"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
	Index              string   `mapstructure:"index"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// PersistenceConfig controls best-effort report persistence.
type PersistenceConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	SaveTimeout time.Duration `mapstructure:"save_timeout"`
	Owner       string        `mapstructure:"owner"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server      ServerConfig       `mapstructure:"server"`
	Log         logging.LogConfig  `mapstructure:"log"`
	PublicData  PublicDataConfig   `mapstructure:"public_data"`
	Narrative   NarrativeConfig    `mapstructure:"narrative"`
	Database    DatabaseConfig     `mapstructure:"database"`
	Redis       RedisConfig        `mapstructure:"redis"`
	Kafka       KafkaConfig        `mapstructure:"kafka"`
	MinIO       MinIOConfig        `mapstructure:"minio"`
	OpenSearch  OpenSearchConfig   `mapstructure:"opensearch"`
	Metrics     MetricsConfig      `mapstructure:"metrics"`
	Persistence PersistenceConfig  `mapstructure:"persistence"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config and
// returns the first problem found.  Optional integrations are validated only
// when enabled.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.PublicData.TradeMonths < 1 || c.PublicData.TradeMonths > 24 {
		return fmt.Errorf("config: public_data.trade_months %d is out of range [1, 24]", c.PublicData.TradeMonths)
	}

	switch c.Narrative.Backend {
	case NarrativeBackendGoogleAI, NarrativeBackendVertex:
	default:
		return fmt.Errorf("config: narrative.backend %q is invalid; expected googleai|vertex", c.Narrative.Backend)
	}
	if c.Narrative.Model == "" {
		return fmt.Errorf("config: narrative.model is required")
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required")
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.ReportTopic == "" {
			return fmt.Errorf("config: kafka.report_topic is required")
		}
	}

	if c.MinIO.Enabled && (c.MinIO.Endpoint == "" || c.MinIO.Bucket == "") {
		return fmt.Errorf("config: minio.endpoint and minio.bucket are required")
	}

	if c.OpenSearch.Enabled && len(c.OpenSearch.Addresses) == 0 {
		return fmt.Errorf("config: opensearch.addresses must contain at least one address")
	}

	return nil
}

//Personal.AI order the ending
