package source

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almanac/internal/domain"
)

type staticAdapter struct {
	results []domain.HarvestResult
	err     error
}

func (a staticAdapter) Harvest(_ context.Context, _ domain.Source) iter.Seq2[domain.HarvestResult, error] {
	return func(yield func(domain.HarvestResult, error) bool) {
		for _, r := range a.results {
			if !yield(r, nil) {
				return
			}
		}
		if a.err != nil {
			yield(domain.HarvestResult{}, a.err)
		}
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistry_DispatchesByType(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(testLogger()).
		Register(domain.SourceManual, staticAdapter{results: []domain.HarvestResult{
			{ExternalID: "a"}, {ExternalID: "b"},
		}})

	var ids []string
	for r, err := range reg.Harvest(context.Background(), domain.Source{Type: domain.SourceManual}) {
		require.NoError(t, err)
		ids = append(ids, r.ExternalID)
	}

	assert.Equal(t, []string{"a", "b"}, ids)
	assert.True(t, reg.Supports(domain.SourceManual))
	assert.False(t, reg.Supports(domain.SourceAPI))
}

func TestRegistry_UnregisteredTypeYieldsNothing(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(testLogger())

	count := 0
	for range reg.Harvest(context.Background(), domain.Source{Slug: "gen-ecovillages", Type: domain.SourceAPI}) {
		count++
	}
	assert.Zero(t, count)
}

func TestRegistry_EarlyStop(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(testLogger()).
		Register(domain.SourceRSS, staticAdapter{
			results: []domain.HarvestResult{{ExternalID: "a"}, {ExternalID: "b"}},
			err:     errors.New("unreachable"),
		})

	for r, err := range reg.Harvest(context.Background(), domain.Source{Type: domain.SourceRSS}) {
		require.NoError(t, err)
		assert.Equal(t, "a", r.ExternalID)
		break
	}
}
