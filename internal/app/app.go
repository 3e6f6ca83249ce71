// Package app assembles stores, adapters and services from configuration.
// Both binaries share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"almanac/internal/config"
	"almanac/internal/domain"
	"almanac/internal/publisher"
	"almanac/internal/service"
	"almanac/internal/source"
	"almanac/internal/source/manual"
	"almanac/internal/source/rss"
	"almanac/internal/storage/memory"
	"almanac/internal/storage/postgres"
)

// SourceAdmin is the source store plus the operator switch for activation.
type SourceAdmin interface {
	service.SourceStore
	SetActive(ctx context.Context, id string, active bool) error
}

type itemStore interface {
	service.ItemStore
	service.QueueStore
}

type App struct {
	Sources SourceAdmin
	Harvest *service.HarvestService
	Publish *service.PublishService
	Queue   *service.QueueService

	closers []func() error
}

type Options struct {
	// Memory keeps everything in process; nothing survives the run and no
	// broker is contacted.
	Memory bool
}

// NewRegistry registers an adapter for every source type that has one.
func NewRegistry(cfg config.HarvestConfig, logger *slog.Logger) *source.Registry {
	return source.NewRegistry(logger).
		Register(domain.SourceRSS, rss.New(rss.Config{
			Timeout:   cfg.FetchTimeout,
			UserAgent: cfg.UserAgent,
		}, logger)).
		Register(domain.SourceManual, manual.New(logger)).
		Register(domain.SourceImport, manual.NewImporter(manual.ImporterConfig{
			Timeout:   cfg.FetchTimeout,
			UserAgent: cfg.UserAgent,
		}, logger))
}

func Open(cfg *config.Config, opts Options, logger *slog.Logger) (*App, error) {
	a := &App{}

	var (
		sources   SourceAdmin
		items     itemStore
		projects  service.ProjectStore
		accounts  service.AccountStore
		txManager service.TransactionManager
		events    service.Publisher
	)

	if opts.Memory {
		projectStore := memory.NewProjectStore()
		sources = memory.NewSourceStore()
		items = memory.NewItemStore()
		projects, accounts = projectStore, projectStore
		txManager = memory.TransactionManager{}
	} else {
		db, err := sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		logger.Info("connected to database")

		sources = postgres.NewSourceStore(db)
		items = postgres.NewItemStore(db)
		projects = postgres.NewProjectStore(db)
		accounts = postgres.NewAccountStore(db)
		txManager = postgres.NewTransactionManager(db)

		if cfg.RabbitMQ.Enabled {
			rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
				URL:        cfg.RabbitMQ.URL,
				Exchange:   cfg.RabbitMQ.Exchange,
				RoutingKey: cfg.RabbitMQ.RoutingKey,
				QueueName:  cfg.RabbitMQ.QueueName,
			}, logger)
			if err != nil {
				_ = a.Close()
				return nil, err
			}
			a.closers = append(a.closers, rabbitMQ.Close)
			events = rabbitMQ
		}
	}

	registry := NewRegistry(cfg.Harvest, logger)

	a.Sources = sources
	a.Harvest = service.NewHarvestService(sources, items, registry, logger, cfg.Harvest)
	a.Publish = service.NewPublishService(items, projects, accounts, txManager, events, logger, cfg.Harvest)
	a.Queue = service.NewQueueService(sources, items, logger)

	return a, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
