package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Source kinds
const (
	SourceXLSX    = "xlsx"
	SourceGSheets = "gsheets"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Sync          SyncConfig
	Source        SourceConfig
	Admin         AdminConfig
	Snapshot      SnapshotConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int32
	MinConns       int32
	CACertPath     string
	MigrationsPath string
}

// SyncConfig is the static configuration of the sync pipeline itself.
type SyncConfig struct {
	AllowedSheets         []string // ordered; only these sheets are ever published
	WebhookURL            string   // downstream consumer notified on every edit
	WebhookSecret         string   // sent as X-Webhook-Secret
	WebhookTimeoutSeconds int
	EditSecret            string // expected X-Webhook-Secret on inbound edit events
}

type SourceConfig struct {
	Kind            string
	XLSXPath        string
	Watch           bool
	SpreadsheetID   string
	CredentialsFile string
}

type AdminConfig struct {
	JWTSecret     string
	JWTIssuer     string
	TokenTTLHours int
}

type SnapshotConfig struct {
	Bucket          string
	Prefix          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether snapshot archiving has enough configuration to run
func (s SnapshotConfig) Enabled() bool {
	return s.Bucket != "" && s.AccessKeyID != "" && s.SecretAccessKey != ""
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
	SampleRatio       float64
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "")
	v.SetDefault("DB_MAX_CONNS", 5)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("DB_MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("SYNC_WEBHOOK_TIMEOUT_SECONDS", 10)
	v.SetDefault("SOURCE_KIND", SourceXLSX)
	v.SetDefault("SOURCE_WATCH", false)
	v.SetDefault("ADMIN_JWT_ISSUER", "sheetsync")
	v.SetDefault("ADMIN_TOKEN_TTL_HOURS", 12)
	v.SetDefault("SNAPSHOT_PREFIX", "snapshots")
	v.SetDefault("SNAPSHOT_REGION", "us-east-1")
	v.SetDefault("O11Y_BE_SERVICE_NAME", "sheetsync")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "sheetsync")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_TRACE_SAMPLE_RATIO", 1.0)
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,inuse_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			AllowedOrigins: SplitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			URL:            v.GetString("DATABASE_URL"),
			MaxConns:       v.GetInt32("DB_MAX_CONNS"),
			MinConns:       v.GetInt32("DB_MIN_CONNS"),
			CACertPath:     v.GetString("DATABASE_CA_CERT"),
			MigrationsPath: v.GetString("DB_MIGRATIONS_PATH"),
		},
		Sync: SyncConfig{
			AllowedSheets:         SplitList(v.GetString("SYNC_ALLOWED_SHEETS")),
			WebhookURL:            v.GetString("SYNC_WEBHOOK_URL"),
			WebhookSecret:         v.GetString("SYNC_WEBHOOK_SECRET"),
			WebhookTimeoutSeconds: v.GetInt("SYNC_WEBHOOK_TIMEOUT_SECONDS"),
			EditSecret:            v.GetString("SYNC_EDIT_SECRET"),
		},
		Source: SourceConfig{
			Kind:            strings.ToLower(v.GetString("SOURCE_KIND")),
			XLSXPath:        v.GetString("SOURCE_XLSX_PATH"),
			Watch:           v.GetBool("SOURCE_WATCH"),
			SpreadsheetID:   v.GetString("SOURCE_SPREADSHEET_ID"),
			CredentialsFile: v.GetString("SOURCE_GOOGLE_CREDENTIALS_FILE"),
		},
		Admin: AdminConfig{
			JWTSecret:     v.GetString("ADMIN_JWT_SECRET"),
			JWTIssuer:     v.GetString("ADMIN_JWT_ISSUER"),
			TokenTTLHours: v.GetInt("ADMIN_TOKEN_TTL_HOURS"),
		},
		Snapshot: SnapshotConfig{
			Bucket:          v.GetString("SNAPSHOT_BUCKET"),
			Prefix:          v.GetString("SNAPSHOT_PREFIX"),
			Endpoint:        v.GetString("SNAPSHOT_ENDPOINT"),
			Region:          v.GetString("SNAPSHOT_REGION"),
			AccessKeyID:     v.GetString("SNAPSHOT_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("SNAPSHOT_SECRET_ACCESS_KEY"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
			SampleRatio:       v.GetFloat64("O11Y_TRACE_SAMPLE_RATIO"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SplitList parses a comma-separated list, trimming blanks and preserving order
func SplitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Sync.AllowedSheets) == 0 {
		return fmt.Errorf("SYNC_ALLOWED_SHEETS is required")
	}
	if c.Sync.WebhookURL != "" && c.Sync.WebhookSecret == "" {
		return fmt.Errorf("SYNC_WEBHOOK_SECRET is required when SYNC_WEBHOOK_URL is set")
	}
	if c.Sync.WebhookTimeoutSeconds <= 0 {
		return fmt.Errorf("SYNC_WEBHOOK_TIMEOUT_SECONDS must be positive")
	}

	switch c.Source.Kind {
	case SourceXLSX:
		if c.Source.XLSXPath == "" {
			return fmt.Errorf("SOURCE_XLSX_PATH is required for the xlsx source")
		}
	case SourceGSheets:
		if c.Source.SpreadsheetID == "" {
			return fmt.Errorf("SOURCE_SPREADSHEET_ID is required for the gsheets source")
		}
		if c.Source.CredentialsFile == "" {
			return fmt.Errorf("SOURCE_GOOGLE_CREDENTIALS_FILE is required for the gsheets source")
		}
		if c.Source.Watch {
			return fmt.Errorf("SOURCE_WATCH is only supported for the xlsx source")
		}
	case "memory":
		// the in-process source has no writer outside tests, so a server would publish nothing
		return fmt.Errorf("SOURCE_KIND=memory is test-only; use xlsx or gsheets")
	default:
		return fmt.Errorf("SOURCE_KIND must be one of xlsx, gsheets (got %q)", c.Source.Kind)
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > 1 {
		return fmt.Errorf("O11Y_TRACE_SAMPLE_RATIO must be between 0 and 1")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
