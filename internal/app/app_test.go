package app_test

import (
	"context"
	"testing"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/JakeFAU/tzverify/internal/app"
	"github.com/JakeFAU/tzverify/internal/config"
	"github.com/JakeFAU/tzverify/internal/storage/local"
	"github.com/JakeFAU/tzverify/internal/storage/memory"
	"github.com/JakeFAU/tzverify/internal/tz"
	"github.com/JakeFAU/tzverify/internal/verifier"
)

func baseConfig() config.Config {
	return config.Config{
		Server:  config.ServerConfig{Port: 8080, RequestTimeoutSeconds: 5},
		Storage: config.StorageConfig{Backend: "memory", Prefix: "reports"},
		Report:  config.ReportConfig{Format: "json"},
	}
}

func TestNewMemoryApp(t *testing.T) {
	t.Parallel()

	a, err := app.New(context.Background(), baseConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	require.IsType(t, &memory.BlobStore{}, a.Store())
	require.NotNil(t, a.Runner())
	require.Len(t, a.Catalog(), len(verifier.Catalog()))
	require.NoError(t, a.Ready(context.Background()))
	require.NotNil(t, a.Server().Handler())
	require.Same(t, tz.Process(), a.Ambient())

	report, err := a.Runner().Run(context.Background(), a.Catalog())
	require.NoError(t, err)
	require.True(t, report.OK())
}

func TestNewLocalApp(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Storage = config.StorageConfig{Backend: "local", BaseDir: t.TempDir(), Prefix: "runs"}
	cfg.Report.Format = "yaml"

	a, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.IsType(t, &local.BlobStore{}, a.Store())

	report, err := a.Runner().Run(context.Background(), a.Catalog()[:2])
	require.NoError(t, err)

	loaded, err := verifier.LoadReport(context.Background(), a.Store(), "runs", report.RunID, "yaml")
	require.NoError(t, err)
	require.Equal(t, report.Passed, loaded.Passed)
	require.NoError(t, a.Close())
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Storage.Backend = "tape"
	_, err := app.New(context.Background(), cfg, nil)
	require.ErrorContains(t, err, "unknown storage backend")
}

func TestNewRejectsBadDSN(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.DB = config.DBConfig{DSN: "postgres://%zz", Table: "tz_samples"}
	_, err := app.New(context.Background(), cfg, nil)
	require.ErrorContains(t, err, "init timestamp store")
}
