package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all platform settings.
const envPrefix = "URBANDDS"

// legacyEnv maps config keys to the bare environment variable names used by
// existing deployments.  Prefixed names take precedence over these.
var legacyEnv = map[string][]string{
	"public_data.enabled":           {"REALDATA_ENABLED"},
	"public_data.service_key":       {"DATA_GO_KR_SERVICE_KEY"},
	"public_data.timeout_ms":        {"DATA_GO_KR_TIMEOUT_MS"},
	"public_data.building_endpoint": {"DATA_GO_KR_BUILDING_ENDPOINT"},
	"public_data.trade_endpoint":    {"DATA_GO_KR_APT_TRADE_ENDPOINT"},
	"narrative.api_key":             {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"narrative.model":               {"GEMINI_MODEL"},
	"narrative.backend":             {"GEMINI_API_MODE"},
	"narrative.vertex_location":     {"VERTEX_LOCATION"},
	"narrative.vertex_project":      {"GOOGLE_CLOUD_PROJECT", "GCP_PROJECT"},
}

// configKeys lists every leaf key so that AutomaticEnv resolves them during
// Unmarshal even when no config file mentions them.
var configKeys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.shutdown_timeout", "server.allowed_origins",
	"log.level", "log.format", "log.output_paths", "log.error_output_paths",
	"public_data.enabled", "public_data.service_key", "public_data.timeout_ms",
	"public_data.building_endpoint", "public_data.trade_endpoint",
	"public_data.trade_months", "public_data.facts_cache_ttl",
	"narrative.backend", "narrative.api_key", "narrative.model", "narrative.base_url",
	"narrative.vertex_project", "narrative.vertex_location", "narrative.metadata_token_url",
	"narrative.temperature", "narrative.max_output_tokens", "narrative.timeout",
	"database.enabled", "database.host", "database.port", "database.user",
	"database.password", "database.db_name", "database.ssl_mode",
	"database.max_open_conns", "database.max_idle_conns", "database.conn_max_lifetime",
	"database.conn_max_idle_time", "database.auto_migrate",
	"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.pool_size",
	"redis.min_idle_conns", "redis.dial_timeout", "redis.read_timeout",
	"redis.write_timeout", "redis.key_prefix",
	"kafka.enabled", "kafka.brokers", "kafka.group_id", "kafka.report_topic",
	"kafka.write_timeout", "kafka.max_retries",
	"minio.enabled", "minio.endpoint", "minio.access_key", "minio.secret_key",
	"minio.bucket", "minio.region", "minio.use_ssl",
	"opensearch.enabled", "opensearch.addresses", "opensearch.user",
	"opensearch.password", "opensearch.insecure_skip_verify", "opensearch.index",
	"metrics.enabled", "metrics.namespace", "metrics.path",
	"persistence.enabled", "persistence.save_timeout", "persistence.owner",
}

// newViper builds a pre-configured Viper instance with the platform's standard
// settings: YAML file type, URBANDDS_ env prefix, automatic env binding, and a
// key replacer that maps "." → "_" so that nested keys like "database.host"
// resolve to "URBANDDS_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvs(v)
	return v
}

func bindEnvs(v *viper.Viper) {
	for _, key := range configKeys {
		names := []string{envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
		names = append(names, legacyEnv[key]...)
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
}

// Load reads the YAML file at configPath, merges any URBANDDS_* or legacy
// environment variable overrides, applies platform defaults for unset fields,
// and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from environment variables, with no
// config file required.
//
// Environment variable naming convention:
//
//	URBANDDS_<SECTION>_<FIELD>   e.g.  URBANDDS_DATABASE_HOST, URBANDDS_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOptional loads configPath when non-empty and falls back to LoadFromEnv
// otherwise.  Used by the binaries, where the --config flag is optional.
func LoadOptional(configPath string) (*Config, error) {
	if strings.TrimSpace(configPath) == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, normalises enum-like values, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)
	normalize(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

func normalize(cfg *Config) {
	cfg.Narrative.Backend = strings.ToLower(strings.TrimSpace(cfg.Narrative.Backend))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.PublicData.ServiceKey = strings.TrimSpace(cfg.PublicData.ServiceKey)
	cfg.Narrative.APIKey = strings.TrimSpace(cfg.Narrative.APIKey)
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  Only the log level is
// applied at runtime by the binaries.
//
// If the changed file fails to parse or validate, onChange is NOT called and
// onError (when non-nil) receives the error.
func Watch(configPath string, onChange func(*Config), onError func(error)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read; callers are expected to have called Load first.
	_ = v.ReadInConfig()

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad is a convenience wrapper around Load that panics on any error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
