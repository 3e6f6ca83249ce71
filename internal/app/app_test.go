package app

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
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRegistry_SupportedTypes(t *testing.T) {
	registry := NewRegistry(config.Default().Harvest, testLogger())

	for _, typ := range []domain.SourceType{domain.SourceRSS, domain.SourceManual, domain.SourceImport} {
		assert.True(t, registry.Supports(typ), typ)
	}
	for _, typ := range []domain.SourceType{domain.SourceAPI, domain.SourceScrape, domain.SourceSocial, domain.SourceForm} {
		assert.False(t, registry.Supports(typ), typ)
	}
}

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()

	a, err := Open(config.Default(), Options{Memory: true}, testLogger())
	require.NoError(t, err)
	defer a.Close()

	created, _, err := a.Harvest.InitializeSources(ctx, source.Definitions())
	require.NoError(t, err)
	assert.Equal(t, len(source.Definitions()), created)

	src, err := a.Sources.GetBySlug(ctx, source.FlagshipSlug)
	require.NoError(t, err)
	require.NoError(t, a.Sources.SetActive(ctx, src.ID, false))

	_, err = a.Harvest.RunByID(ctx, src.ID)
	assert.ErrorIs(t, err, domain.ErrSourceInactive)

	stats, err := a.Harvest.RunBySlug(ctx, source.FlagshipSlug)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.ItemsCreated)

	report, err := a.Publish.PublishApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, report.Published)
}

func TestClose_Idempotent(t *testing.T) {
	a, err := Open(config.Default(), Options{Memory: true}, testLogger())
	require.NoError(t, err)

	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}
