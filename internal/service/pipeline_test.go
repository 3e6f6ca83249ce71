package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almanac/internal/config"
	"almanac/internal/domain"
	"almanac/internal/source"
	"almanac/internal/source/manual"
	"almanac/internal/storage/memory"
)

type pipeline struct {
	sources  *memory.SourceStore
	items    *memory.ItemStore
	projects *memory.ProjectStore
	harvest  *HarvestService
	publish  *PublishService
	queue    *QueueService
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default().Harvest

	p := &pipeline{
		sources:  memory.NewSourceStore(),
		items:    memory.NewItemStore(),
		projects: memory.NewProjectStore(),
	}

	registry := source.NewRegistry(logger).Register(domain.SourceManual, manual.New(logger))

	p.harvest = NewHarvestService(p.sources, p.items, registry, logger, cfg)
	p.publish = NewPublishService(p.items, p.projects, p.projects, memory.TransactionManager{}, nil, logger, cfg)
	p.queue = NewQueueService(p.sources, p.items, logger)

	_, _, err := p.harvest.InitializeSources(context.Background(), source.Definitions())
	require.NoError(t, err)

	return p
}

func TestPipeline_RerunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)

	first, err := p.harvest.RunBySlug(ctx, source.FlagshipSlug)
	require.NoError(t, err)
	assert.Equal(t, 10, first.ItemsCreated)
	assert.Equal(t, 0, first.ItemsDuplicate)

	second, err := p.harvest.RunBySlug(ctx, source.FlagshipSlug)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ItemsCreated)
	assert.Equal(t, first.ItemsCreated, second.ItemsDuplicate)

	src, err := p.sources.GetBySlug(ctx, source.FlagshipSlug)
	require.NoError(t, err)
	assert.NotNil(t, src.LastHarvest)
	assert.Nil(t, src.LastError)
}

func TestPipeline_HarvestModeratePublish(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)

	_, err := p.harvest.RunBySlug(ctx, source.FlagshipSlug)
	require.NoError(t, err)

	report, err := p.publish.PublishApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, report.Published)
	assert.Empty(t, report.Errors)

	stats, err := p.queue.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Totals.Published)
	assert.Equal(t, 10, stats.Totals.Total)

	again, err := p.publish.PublishApproved(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Published)

	page, err := p.queue.List(ctx, domain.ItemFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, page.Items)

	_, err = p.queue.Update(ctx, page.Items[0].ID, domain.ItemUpdate{ReviewNotes: new(string)})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPipeline_ImportThenModerate(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)

	stats, err := p.harvest.Import(ctx, "community-energy", domain.ContentProject, []any{
		map[string]any{"name": "Brixton Energy", "type": "solar", "location": "London"},
		map[string]any{"name": "Bristol Energy Cooperative", "type": "Wind", "website": "bristolenergy.coop"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ItemsCreated)

	status := domain.StatusPending
	page, err := p.queue.List(ctx, domain.ItemFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	for _, item := range page.Items {
		assert.Equal(t, []string{"energy"}, item.Project.Categories)
	}

	ids := []string{page.Items[0].ID, page.Items[1].ID}
	n, err := p.queue.BulkUpdateStatus(ctx, ids, domain.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	report, err := p.publish.PublishApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Published)
}
