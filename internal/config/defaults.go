// Package config provides configuration loading, defaults, and validation for
// the Urban-DDS platform.
package config

import "time"

// Narrative backends.
const (
	NarrativeBackendGoogleAI = "googleai"
	NarrativeBackendVertex   = "vertex"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultPublicDataTimeoutMS    = 8000
	DefaultBuildingEndpoint       = "https://apis.data.go.kr/1613000/BldRgstHubService/getBrRecapTitleInfo"
	DefaultTradeEndpoint          = "https://apis.data.go.kr/1613000/RTMSDataSvcAptTrade/getRTMSDataSvcAptTrade"
	DefaultTradeMonths            = 3
	DefaultFactsCacheTTL          = 6 * time.Hour
	DefaultNarrativeModel         = "gemini-2.5-flash"
	DefaultNarrativeBaseURL       = "https://generativelanguage.googleapis.com/v1beta"
	DefaultVertexLocation         = "us-central1"
	DefaultMetadataTokenURL       = "http://metadata.google.internal/computeMetadata/v1/instance/service-accounts/default/token"
	DefaultNarrativeTemperature   = 0.2
	DefaultNarrativeMaxTokens     = 500
	DefaultNarrativeTimeout       = 20 * time.Second
	DefaultPersistenceOwner       = "anonymous"
	DefaultPersistenceSaveTimeout = 5 * time.Second

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "urbandds"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "urbandds:"

	DefaultKafkaBroker      = "localhost:9092"
	DefaultKafkaGroupID     = "urbandds-worker"
	DefaultKafkaReportTopic = "analysis.report.created"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "urbandds-reports"

	DefaultOpenSearchAddr  = "http://localhost:9200"
	DefaultOpenSearchIndex = "urbandds-reports"

	DefaultMetricsNamespace = "urbandds"
	DefaultMetricsPath      = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling raw config data and before Validate()
// so that optional-but-defaulted fields are never seen as missing.
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  Feature flags are
// never defaulted on.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}

	// ── Public data ───────────────────────────────────────────────────────────
	if cfg.PublicData.TimeoutMS <= 0 {
		cfg.PublicData.TimeoutMS = DefaultPublicDataTimeoutMS
	}
	if cfg.PublicData.BuildingEndpoint == "" {
		cfg.PublicData.BuildingEndpoint = DefaultBuildingEndpoint
	}
	if cfg.PublicData.TradeEndpoint == "" {
		cfg.PublicData.TradeEndpoint = DefaultTradeEndpoint
	}
	if cfg.PublicData.TradeMonths == 0 {
		cfg.PublicData.TradeMonths = DefaultTradeMonths
	}
	if cfg.PublicData.FactsCacheTTL == 0 {
		cfg.PublicData.FactsCacheTTL = DefaultFactsCacheTTL
	}

	// ── Narrative ─────────────────────────────────────────────────────────────
	if cfg.Narrative.Backend == "" {
		cfg.Narrative.Backend = NarrativeBackendGoogleAI
	}
	if cfg.Narrative.Model == "" {
		cfg.Narrative.Model = DefaultNarrativeModel
	}
	if cfg.Narrative.BaseURL == "" {
		cfg.Narrative.BaseURL = DefaultNarrativeBaseURL
	}
	if cfg.Narrative.VertexLocation == "" {
		cfg.Narrative.VertexLocation = DefaultVertexLocation
	}
	if cfg.Narrative.MetadataTokenURL == "" {
		cfg.Narrative.MetadataTokenURL = DefaultMetadataTokenURL
	}
	if cfg.Narrative.Temperature == 0 {
		cfg.Narrative.Temperature = DefaultNarrativeTemperature
	}
	if cfg.Narrative.MaxOutputTokens == 0 {
		cfg.Narrative.MaxOutputTokens = DefaultNarrativeMaxTokens
	}
	if cfg.Narrative.Timeout == 0 {
		cfg.Narrative.Timeout = DefaultNarrativeTimeout
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = DefaultDBMaxConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 10 * time.Minute
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	// DB is an int; 0 is a valid explicit value and also the default.

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.ReportTopic == "" {
		cfg.Kafka.ReportTopic = DefaultKafkaReportTopic
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.Region == "" {
		cfg.MinIO.Region = "us-east-1"
	}

	// ── OpenSearch ────────────────────────────────────────────────────────────
	if len(cfg.OpenSearch.Addresses) == 0 {
		cfg.OpenSearch.Addresses = []string{DefaultOpenSearchAddr}
	}
	if cfg.OpenSearch.Index == "" {
		cfg.OpenSearch.Index = DefaultOpenSearchIndex
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Persistence ───────────────────────────────────────────────────────────
	if cfg.Persistence.SaveTimeout == 0 {
		cfg.Persistence.SaveTimeout = DefaultPersistenceSaveTimeout
	}
	if cfg.Persistence.Owner == "" {
		cfg.Persistence.Owner = DefaultPersistenceOwner
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

//Personal.AI order the ending
