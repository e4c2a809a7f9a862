package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/config"
	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/facetdex/internal/db/redis"
	"github.com/kailas-cloud/facetdex/internal/metrics"
	"github.com/kailas-cloud/facetdex/internal/repository/bench"
	"github.com/kailas-cloud/facetdex/internal/repository/schemacache"
	"github.com/kailas-cloud/facetdex/internal/usecase/panel"
	sdk "github.com/kailas-cloud/facetdex/pkg/sdk"
)

// app holds the collaborators shared by the HTTP and terminal front-ends.
type app struct {
	store   db.Store
	catalog *sdk.Client
	deps    panel.Deps
}

// newApp connects the KV store and builds the catalog client and panel dependencies.
func newApp(ctx context.Context, cfg config.Config, reg prometheus.Registerer, logger *zap.Logger) (*app, error) {
	store, err := newStore(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, cfg.Database.ReadinessTimeoutDuration()); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}

	opts := []sdk.Option{
		sdk.WithTimeout(cfg.Catalog.Timeout()),
		sdk.WithEndpoints(sdk.Endpoints{
			SearchFields: cfg.Catalog.Endpoints.SearchFields,
			Filters:      cfg.Catalog.Endpoints.Filters,
			SearchModule: cfg.Catalog.Endpoints.SearchModule,
			BenchAdd:     cfg.Catalog.Endpoints.BenchAdd,
		}),
	}
	if cfg.Catalog.UserAgent != "" {
		opts = append(opts, sdk.WithUserAgent(cfg.Catalog.UserAgent))
	}
	if reg != nil {
		opts = append(opts, sdk.WithPrometheus(reg))
	}
	client, err := sdk.New(cfg.Catalog.BaseURL, opts...)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("catalog client: %w", err)
	}

	var schema panel.SchemaSource = client
	if ttl := cfg.Catalog.SchemaCacheTTL(); ttl > 0 {
		var cacheTotal *prometheus.CounterVec
		if reg != nil {
			cacheTotal = metrics.SchemaCacheTotal
		}
		schema = schemacache.New(client, store, cfg.Storage.KeyPrefix, ttl, cacheTotal, logger)
	}

	return &app{
		store:   store,
		catalog: client,
		deps: panel.Deps{
			Schema:   schema,
			Searcher: client,
			Bench:    client,
			Counter:  bench.New(store, cfg.Storage.KeyPrefix, cfg.Session.BenchTTL()),
		},
	}, nil
}

func (a *app) Close() { a.store.Close() }

func newStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return s, nil
	case config.DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
