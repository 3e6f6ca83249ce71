package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"almanac/internal/config"
	"almanac/internal/domain"
	"almanac/internal/quality"
	"almanac/internal/source"
	"almanac/internal/source/manual"
)

// HarvestService drives sources end to end: adapter, dedup, queue insert and
// source bookkeeping. Runs of one source are expected to be serialized by the
// caller; the (source, external id) unique key catches any overlap.
type HarvestService struct {
	sources SourceStore
	items   ItemStore
	adapter Adapter
	logger  *slog.Logger
	config  config.HarvestConfig
}

func NewHarvestService(
	sources SourceStore,
	items ItemStore,
	adapter Adapter,
	logger *slog.Logger,
	cfg config.HarvestConfig,
) *HarvestService {
	return &HarvestService{
		sources: sources,
		items:   items,
		adapter: adapter,
		logger:  logger,
		config:  cfg,
	}
}

// RunByID harvests one active source.
func (s *HarvestService) RunByID(ctx context.Context, id string) (*domain.HarvestStats, error) {
	src, err := s.sources.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get source %s: %w", id, err)
	}
	if !src.IsActive {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceInactive, src.Slug)
	}
	return s.runSource(ctx, src)
}

// RunBySlug harvests one source whether or not it is active.
func (s *HarvestService) RunBySlug(ctx context.Context, slug string) (*domain.HarvestStats, error) {
	src, err := s.sources.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get source %s: %w", slug, err)
	}
	return s.runSource(ctx, src)
}

// RunAll harvests every active source in descending priority. A source that
// fails to start is reported as a FAILED entry and the batch continues.
func (s *HarvestService) RunAll(ctx context.Context) ([]domain.HarvestStats, error) {
	sources, err := s.sources.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active sources: %w", err)
	}

	s.logger.Info("starting batch harvest", "sources", len(sources))

	results := make([]domain.HarvestStats, 0, len(sources))
	for i := range sources {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		src := &sources[i]
		stats, err := s.runSource(ctx, src)
		if err != nil {
			now := time.Now()
			results = append(results, domain.HarvestStats{
				SourceID:    src.ID,
				SourceName:  src.Name,
				Status:      domain.RunFailed,
				StartedAt:   now,
				CompletedAt: now,
				Errors:      []string{err.Error()},
			})
			continue
		}
		results = append(results, *stats)
	}

	return results, nil
}

// Import runs records supplied by an operator through the standard loop
// against the named source. Inactive sources are accepted.
func (s *HarvestService) Import(
	ctx context.Context,
	slug string,
	contentType domain.ContentType,
	records []any,
) (*domain.HarvestStats, error) {
	if !contentType.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedContentType, contentType)
	}

	src, err := s.sources.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get source %s: %w", slug, err)
	}

	return s.run(ctx, src, manual.Import(*src, contentType, records))
}

// InitializeSources upserts the given definitions by slug.
func (s *HarvestService) InitializeSources(ctx context.Context, defs []domain.Source) (created, updated int, err error) {
	for i := range defs {
		def := &defs[i]
		if err := source.Validate(*def); err != nil {
			return created, updated, err
		}

		isNew, err := s.sources.Upsert(ctx, def)
		if err != nil {
			return created, updated, fmt.Errorf("upsert source %s: %w", def.Slug, err)
		}
		if isNew {
			created++
		} else {
			updated++
		}
	}

	s.logger.Info("sources initialized", "created", created, "updated", updated)

	return created, updated, nil
}

func (s *HarvestService) runSource(ctx context.Context, src *domain.Source) (*domain.HarvestStats, error) {
	return s.run(ctx, src, s.adapter.Harvest(ctx, *src))
}

func (s *HarvestService) run(
	ctx context.Context,
	src *domain.Source,
	results iter.Seq2[domain.HarvestResult, error],
) (*domain.HarvestStats, error) {
	logger := s.logger.With("source", src.Slug)

	stats := &domain.HarvestStats{
		SourceID:   src.ID,
		SourceName: src.Name,
		StartedAt:  time.Now(),
		Errors:     []string{},
	}

	logger.Info("starting harvest", "type", src.Type)

	for result, err := range results {
		if err != nil {
			logger.Error("adapter failed", "error", err)
			stats.Errors = append(stats.Errors, err.Error())
			break
		}

		stats.ItemsProcessed++

		created, err := s.store(ctx, src, result)
		switch {
		case err != nil:
			logger.Warn("failed to store item", "external_id", result.ExternalID, "error", err)
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", result.ExternalID, err))
			stats.ItemsSkipped++
		case created:
			stats.ItemsCreated++
		default:
			stats.ItemsDuplicate++
		}
	}

	stats.Status = domain.RunCompleted
	stats.CompletedAt = time.Now()

	var lastError *string
	if len(stats.Errors) > 0 {
		joined := strings.Join(stats.Errors, "; ")
		lastError = &joined
	}

	if err := s.sources.RecordRun(ctx, src.ID, stats.CompletedAt, lastError); err != nil {
		return stats, fmt.Errorf("record run: %w", err)
	}

	logger.Info("harvest completed",
		"processed", stats.ItemsProcessed,
		"created", stats.ItemsCreated,
		"duplicate", stats.ItemsDuplicate,
		"skipped", stats.ItemsSkipped,
		"errors", len(stats.Errors),
		"duration", stats.CompletedAt.Sub(stats.StartedAt),
	)

	return stats, nil
}

// store reports false when the item already exists for this source.
func (s *HarvestService) store(ctx context.Context, src *domain.Source, result domain.HarvestResult) (bool, error) {
	existing, err := s.items.FindByExternalID(ctx, src.ID, result.ExternalID)
	switch {
	case err == nil && existing != nil:
		return false, nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return false, fmt.Errorf("find item: %w", err)
	}

	raw, err := json.Marshal(result.RawData)
	if err != nil {
		return false, fmt.Errorf("encode raw data: %w", err)
	}

	item := &domain.Item{
		SourceID:    src.ID,
		ExternalID:  result.ExternalID,
		ExternalURL: result.ExternalURL,
		RawData:     raw,
		ContentType: result.ContentType,
		Project:     result.Project,
		Article:     result.Article,
		Quality:     result.Quality,
		Status:      s.initialStatus(result),
	}

	if err := s.items.Create(ctx, item); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("create item: %w", err)
	}

	return true, nil
}

func (s *HarvestService) initialStatus(result domain.HarvestResult) domain.HarvestStatus {
	if result.Quality >= s.config.AutoApproveThreshold && quality.MeetsMinimum(result.Quality, result.ContentType) {
		return domain.StatusApproved
	}
	return domain.StatusPending
}
