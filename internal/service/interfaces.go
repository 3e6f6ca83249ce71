package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"iter"
	"time"

	"almanac/internal/domain"
)

type SourceStore interface {
	// Upsert inserts or updates by slug and reports whether a row was created.
	// Updates never change is_active.
	Upsert(ctx context.Context, src *domain.Source) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Source, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Source, error)
	List(ctx context.Context) ([]domain.Source, error)
	// ListActive returns active sources ordered by priority, highest first.
	ListActive(ctx context.Context) ([]domain.Source, error)
	RecordRun(ctx context.Context, id string, at time.Time, lastError *string) error
}

type ItemStore interface {
	FindByExternalID(ctx context.Context, sourceID, externalID string) (*domain.Item, error)
	// Create returns domain.ErrDuplicate when (source, external id) already exists.
	Create(ctx context.Context, item *domain.Item) error
	ListPublishable(ctx context.Context) ([]domain.Item, error)
	MarkPublished(ctx context.Context, id, projectID string, at time.Time) error
}

type QueueStore interface {
	Get(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, int, error)
	Update(ctx context.Context, id string, update domain.ItemUpdate) (*domain.Item, error)
	// BulkUpdateStatus skips PUBLISHED items and returns the number updated.
	BulkUpdateStatus(ctx context.Context, ids []string, status domain.HarvestStatus, at time.Time) (int, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[domain.HarvestStatus]int, error)
	CountBySourceAndStatus(ctx context.Context) ([]domain.SourceStatusCount, error)
}

type ProjectStore interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, project *domain.Project) error
	// LinkCategories and LinkSDGs ignore identifiers that do not exist.
	LinkCategories(ctx context.Context, projectID string, slugs []string) error
	LinkSDGs(ctx context.Context, projectID string, sdgs []int) error
}

type AccountStore interface {
	GetOrCreateSystemUser(ctx context.Context, email, name string) (string, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	PublishProject(ctx context.Context, project *domain.Project) error
	Close() error
}

type Adapter interface {
	Harvest(ctx context.Context, src domain.Source) iter.Seq2[domain.HarvestResult, error]
}
