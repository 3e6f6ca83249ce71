// Package source holds the adapter registry and the built-in source definitions.
package source

import (
	"context"
	"iter"
	"log/slog"

	"almanac/internal/domain"
)

// Adapter produces harvest results for one source. The sequence is lazy: a
// caller may stop ranging at any point. A non-nil error ends the sequence and
// fails the whole run.
type Adapter interface {
	Harvest(ctx context.Context, src domain.Source) iter.Seq2[domain.HarvestResult, error]
}

// Registry dispatches to the adapter registered for a source's type.
type Registry struct {
	adapters map[domain.SourceType]Adapter
	logger   *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		adapters: make(map[domain.SourceType]Adapter),
		logger:   logger,
	}
}

// Register binds adapter to t, replacing any previous binding.
func (r *Registry) Register(t domain.SourceType, adapter Adapter) *Registry {
	r.adapters[t] = adapter
	return r
}

func (r *Registry) Supports(t domain.SourceType) bool {
	_, ok := r.adapters[t]
	return ok
}

// Harvest yields nothing for source types without an adapter.
func (r *Registry) Harvest(ctx context.Context, src domain.Source) iter.Seq2[domain.HarvestResult, error] {
	adapter, ok := r.adapters[src.Type]
	if !ok {
		r.logger.Warn("no adapter registered for source type",
			"source", src.Slug,
			"type", src.Type,
		)
		return func(func(domain.HarvestResult, error) bool) {}
	}
	return adapter.Harvest(ctx, src)
}
