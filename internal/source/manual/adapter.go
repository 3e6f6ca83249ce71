// Package manual provides the curated and bulk import adapters.
package manual

import (
	"context"
	"iter"
	"log/slog"

	"almanac/internal/domain"
	"almanac/internal/normalize"
	"almanac/internal/quality"
	"almanac/internal/source"
)

// Adapter serves MANUAL sources. Only the flagship source carries built-in
// records; other manual sources are fed through Import.
type Adapter struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Adapter {
	return &Adapter{logger: logger.With("adapter", "manual")}
}

func (a *Adapter) Harvest(ctx context.Context, src domain.Source) iter.Seq2[domain.HarvestResult, error] {
	return func(yield func(domain.HarvestResult, error) bool) {
		if src.Slug != source.FlagshipSlug {
			a.logger.Debug("manual source has no built-in records", "source", src.Slug)
			return
		}

		for _, project := range Flagship() {
			if err := ctx.Err(); err != nil {
				yield(domain.HarvestResult{}, err)
				return
			}

			result := domain.HarvestResult{
				ExternalID:  normalize.GenerateSlug(project.Name),
				ExternalURL: project.Website,
				RawData:     project,
				ContentType: domain.ContentProject,
				Project:     &project,
				Quality:     quality.ScoreProject(project, quality.DefaultWeights),
			}
			if !yield(result, nil) {
				return
			}
		}
	}
}
