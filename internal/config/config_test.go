package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/tzverify/internal/tz"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
  request_timeout_seconds: 5
auth:
  enabled: true
  api_key: secret
timezone:
  default: Europe/Paris
  cache_ttl_seconds: 300
logging:
  development: false
  level: warn
storage:
  backend: local
  base_dir: /var/lib/tzverify
  prefix: runs
db:
  dsn: postgres://localhost/tz
  table: samples
  max_conns: 8
pubsub:
  project_id: proj
  topic_name: tz-runs
report:
  format: yaml
`
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout())
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout(), "unset keys keep defaults")
	require.True(t, cfg.Auth.Enabled)
	require.Equal(t, "Europe/Paris", cfg.Timezone.Default)
	require.Equal(t, 5*time.Minute, cfg.ZoneCacheTTL())
	require.Equal(t, LoggingConfig{Development: false, Level: "warn"}, cfg.Logging)
	require.Equal(t, StorageConfig{Backend: "local", BaseDir: "/var/lib/tzverify", Prefix: "runs"}, cfg.Storage)
	require.Equal(t, DBConfig{DSN: "postgres://localhost/tz", Table: "samples", MaxConns: 8}, cfg.DB)
	require.Equal(t, "tz-runs", cfg.PubSub.TopicName)
	require.Equal(t, "yaml", cfg.Report.Format)
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "memory", cfg.Storage.Backend)
	require.Equal(t, "reports", cfg.Storage.Prefix)
	require.Equal(t, "json", cfg.Report.Format)
	require.Equal(t, "tz_samples", cfg.DB.Table)
	require.Zero(t, cfg.ZoneCacheTTL())
	require.True(t, cfg.Logging.Development)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("TZVERIFY_TIMEZONE_DEFAULT", "America/Los_Angeles")
	t.Setenv("TZVERIFY_SERVER_PORT", "7070")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "America/Los_Angeles", cfg.Timezone.Default)
	require.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorContains(t, err, "read config")
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:  ServerConfig{Port: 8080, RequestTimeoutSeconds: 10},
		Storage: StorageConfig{Backend: "memory"},
		Report:  ReportConfig{Format: "json"},
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "invalid port", mutate: func(c *Config) { c.Server.Port = 0 }, want: "server.port"},
		{name: "invalid timeout", mutate: func(c *Config) { c.Server.RequestTimeoutSeconds = 0 }, want: "server.request_timeout_seconds"},
		{name: "auth missing api key", mutate: func(c *Config) { c.Auth.Enabled = true }, want: "auth.api_key"},
		{name: "unknown default zone", mutate: func(c *Config) { c.Timezone.Default = "Mars/Olympus" }, want: "timezone.default"},
		{name: "negative cache ttl", mutate: func(c *Config) { c.Timezone.CacheTTLSeconds = -1 }, want: "timezone.cache_ttl_seconds"},
		{name: "local without dir", mutate: func(c *Config) { c.Storage.Backend = "local" }, want: "storage.base_dir"},
		{name: "gcs without bucket", mutate: func(c *Config) { c.Storage.Backend = "gcs" }, want: "storage.gcs_bucket"},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "s3" }, want: "storage.backend"},
		{name: "topic without project", mutate: func(c *Config) { c.PubSub.TopicName = "t" }, want: "pubsub.project_id"},
		{name: "report format", mutate: func(c *Config) { c.Report.Format = "xml" }, want: "report.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			require.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidateUnknownZoneWrapsSentinel(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Server:   ServerConfig{Port: 1, RequestTimeoutSeconds: 1},
		Storage:  StorageConfig{Backend: "memory"},
		Report:   ReportConfig{Format: "json"},
		Timezone: TimezoneConfig{Default: "Nowhere/Land"},
	}
	require.ErrorIs(t, cfg.Validate(), tz.ErrUnknownTimezone)
}
