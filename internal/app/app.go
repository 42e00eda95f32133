// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"

	gcstorage "cloud.google.com/go/storage"
	pubsubv2 "cloud.google.com/go/pubsub/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/tzverify/internal/api"
	"github.com/JakeFAU/tzverify/internal/clock/system"
	"github.com/JakeFAU/tzverify/internal/config"
	"github.com/JakeFAU/tzverify/internal/id/uuid"
	"github.com/JakeFAU/tzverify/internal/metrics"
	"github.com/JakeFAU/tzverify/internal/publisher/pubsub"
	"github.com/JakeFAU/tzverify/internal/storage/gcs"
	"github.com/JakeFAU/tzverify/internal/storage/local"
	"github.com/JakeFAU/tzverify/internal/storage/memory"
	"github.com/JakeFAU/tzverify/internal/storage/postgres"
	"github.com/JakeFAU/tzverify/internal/telemetry"
	"github.com/JakeFAU/tzverify/internal/tz"
	"github.com/JakeFAU/tzverify/internal/verifier"
)

// App holds the shared, long-lived services built from configuration.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	ambient    *tz.Ambient
	store      verifier.BlobStore
	timestamps *postgres.TimestampStore
	runner     *verifier.Runner
	catalog    []verifier.Scenario
	closers    []func() error
}

// New builds every service the configuration asks for and fails fast if one
// cannot be initialized. Services built before the failure are released.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{cfg: cfg, logger: logger, ambient: tz.Process()}
	if err := a.init(ctx); err != nil {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("release partially initialized services", zap.Error(closeErr))
		}
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	metrics.Init()
	tp, err := telemetry.InitTracerProvider(ctx, "tzverify")
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	a.closers = append(a.closers, func() error { return tp.Shutdown(context.Background()) })

	tz.ConfigureZoneCache(a.cfg.ZoneCacheTTL())
	if a.cfg.Timezone.Default != "" {
		if err := a.ambient.SetName(a.cfg.Timezone.Default); err != nil {
			return fmt.Errorf("set default timezone: %w", err)
		}
	}
	a.logger.Info("ambient timezone", zap.String("zone", a.ambient.DefaultZone().Name()))

	store, err := a.newBlobStore(ctx)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	a.store = store

	a.catalog = verifier.Catalog()
	if a.cfg.DB.DSN != "" {
		ts, err := postgres.NewTimestampStore(ctx, postgres.TimestampStoreConfig{
			DSN:      a.cfg.DB.DSN,
			Table:    a.cfg.DB.Table,
			MaxConns: a.cfg.DB.MaxConns,
		})
		if err != nil {
			return fmt.Errorf("init timestamp store: %w", err)
		}
		a.closers = append(a.closers, func() error { ts.Close(); return nil })
		if err := ts.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("init timestamp store: %w", err)
		}
		a.timestamps = ts
		a.catalog = append(a.catalog, verifier.StoreScenarios(ts)...)
		a.logger.Info("postgres timestamp store enabled", zap.String("table", a.cfg.DB.Table))
	}

	opts := verifier.Options{
		Store:  a.store,
		IDs:    uuid.New(),
		Clock:  system.New(),
		Logger: a.logger.Named("verifier"),
		Prefix: a.cfg.Storage.Prefix,
		Format: a.cfg.Report.Format,
	}
	if a.cfg.PubSub.TopicName != "" {
		client, err := pubsubv2.NewClient(ctx, a.cfg.PubSub.ProjectID)
		if err != nil {
			return fmt.Errorf("init pubsub client: %w", err)
		}
		publisher := pubsub.New(client.Publisher(a.cfg.PubSub.TopicName))
		a.closers = append(a.closers, client.Close, publisher.Close)
		opts.Publisher = publisher
		opts.Topic = a.cfg.PubSub.TopicName
		a.logger.Info("publishing run summaries", zap.String("topic", a.cfg.PubSub.TopicName))
	}

	runner, err := verifier.NewRunner(opts)
	if err != nil {
		return fmt.Errorf("init runner: %w", err)
	}
	a.runner = runner
	return nil
}

func (a *App) newBlobStore(ctx context.Context) (verifier.BlobStore, error) {
	switch a.cfg.Storage.Backend {
	case "", "memory":
		a.logger.Info("using in-memory blob store; reports are lost on exit")
		return memory.NewBlobStore(), nil
	case "local":
		a.logger.Info("using local blob store", zap.String("base_dir", a.cfg.Storage.BaseDir))
		return local.New(local.Config{BaseDir: a.cfg.Storage.BaseDir})
	case "gcs":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create gcs client: %w", err)
		}
		store, err := gcs.New(client, gcs.Config{Bucket: a.cfg.Storage.GCSBucket})
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		a.logger.Info("using gcs blob store", zap.String("bucket", a.cfg.Storage.GCSBucket))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", a.cfg.Storage.Backend)
	}
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Ambient returns the process-wide ambient zone.
func (a *App) Ambient() *tz.Ambient {
	return a.ambient
}

// Store returns the configured blob store.
func (a *App) Store() verifier.BlobStore {
	return a.store
}

// Runner returns the scenario runner.
func (a *App) Runner() *verifier.Runner {
	return a.runner
}

// Catalog returns the scenarios this deployment runs, including the database
// scenarios when a timestamp store is configured.
func (a *App) Catalog() []verifier.Scenario {
	return a.catalog
}

// Ready reports whether downstream dependencies are reachable.
func (a *App) Ready(ctx context.Context) error {
	if a.timestamps != nil {
		return a.timestamps.Ping(ctx)
	}
	return nil
}

// Server builds the HTTP API on top of the App's services.
func (a *App) Server() *api.Server {
	return api.NewServer(api.Deps{
		Ambient: a.ambient,
		Runner:  a.runner,
		Catalog: a.catalog,
		Ready:   a.Ready,
	}, a.cfg, a.logger.Named("api"))
}

// Close releases services in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
