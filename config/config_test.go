package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Sync: SyncConfig{
			AllowedSheets:         []string{"Checklist"},
			WebhookURL:            "https://ingest.example.com/webhook/sync",
			WebhookSecret:         "s3cret",
			WebhookTimeoutSeconds: 10,
		},
		Source: SourceConfig{Kind: SourceXLSX, XLSXPath: "/data/book.xlsx"},
		Observability: ObservabilityConfig{
			SampleRatio: 1,
		},
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{"development environment", &Config{Server: ServerConfig{AppEnv: "development"}}, true},
		{"debug gin mode", &Config{Server: ServerConfig{GinMode: "debug"}}, true},
		{"production environment", &Config{Server: ServerConfig{AppEnv: "production"}}, false},
		{"release mode", &Config{Server: ServerConfig{GinMode: "release", AppEnv: "production"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.IsDevelopment())
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	assert.True(t, (&Config{Server: ServerConfig{AppEnv: "production"}}).IsProduction())
	assert.False(t, (&Config{Server: ServerConfig{AppEnv: "staging"}}).IsProduction())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "PORT is required"},
		{"empty allow-list", func(c *Config) { c.Sync.AllowedSheets = nil }, "SYNC_ALLOWED_SHEETS is required"},
		{"webhook without secret", func(c *Config) { c.Sync.WebhookSecret = "" }, "SYNC_WEBHOOK_SECRET is required"},
		{"no webhook is allowed", func(c *Config) { c.Sync.WebhookURL = ""; c.Sync.WebhookSecret = "" }, ""},
		{"zero timeout", func(c *Config) { c.Sync.WebhookTimeoutSeconds = 0 }, "must be positive"},
		{"xlsx without path", func(c *Config) { c.Source.XLSXPath = "" }, "SOURCE_XLSX_PATH"},
		{"gsheets without id", func(c *Config) { c.Source = SourceConfig{Kind: SourceGSheets, CredentialsFile: "sa.json"} }, "SOURCE_SPREADSHEET_ID"},
		{"gsheets without credentials", func(c *Config) { c.Source = SourceConfig{Kind: SourceGSheets, SpreadsheetID: "abc"} }, "SOURCE_GOOGLE_CREDENTIALS_FILE"},
		{"gsheets cannot watch", func(c *Config) {
			c.Source = SourceConfig{Kind: SourceGSheets, SpreadsheetID: "abc", CredentialsFile: "sa.json", Watch: true}
		}, "SOURCE_WATCH"},
		{"memory source is test-only", func(c *Config) { c.Source = SourceConfig{Kind: "memory"} }, "SOURCE_KIND=memory is test-only"},
		{"unknown source", func(c *Config) { c.Source.Kind = "csv" }, "SOURCE_KIND"},
		{"bad sample ratio", func(c *Config) { c.Observability.SampleRatio = 2 }, "O11Y_TRACE_SAMPLE_RATIO"},
		{"profiling without endpoint", func(c *Config) { c.Profiling.Enabled = true }, "O11Y_PROFILING_ENDPOINT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SYNC_ALLOWED_SHEETS", "Checklist, Orders ,,Inventory")
	t.Setenv("SYNC_WEBHOOK_URL", "https://ingest.example.com/webhook/sync")
	t.Setenv("SYNC_WEBHOOK_SECRET", "s3cret")
	t.Setenv("SOURCE_KIND", "XLSX")
	t.Setenv("SOURCE_XLSX_PATH", "/data/book.xlsx")
	t.Setenv("SOURCE_WATCH", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Checklist", "Orders", "Inventory"}, cfg.Sync.AllowedSheets)
	assert.Equal(t, SourceXLSX, cfg.Source.Kind)
	assert.True(t, cfg.Source.Watch)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Sync.WebhookTimeoutSeconds)
	assert.Equal(t, "sheetsync", cfg.Admin.JWTIssuer)
	assert.False(t, cfg.Snapshot.Enabled())
}

func TestLoad_MissingAllowList(t *testing.T) {
	t.Setenv("SYNC_ALLOWED_SHEETS", "")
	t.Setenv("SOURCE_XLSX_PATH", "book.xlsx")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsMemorySource(t *testing.T) {
	t.Setenv("SYNC_ALLOWED_SHEETS", "Checklist")
	t.Setenv("SOURCE_KIND", "memory")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test-only")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{}, SplitList(""))
	assert.Equal(t, []string{"a", "b"}, SplitList(" a ,, b ,"))
}
