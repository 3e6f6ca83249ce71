package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"almanac/internal/domain"
	"almanac/internal/quality"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	similarScanLimit = 500
)

type ItemPage struct {
	Items      []domain.Item `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
}

type SimilarItem struct {
	Item  domain.Item `json:"item"`
	Score int         `json:"score"`
}

// QueueService backs moderation: listing, review updates and statistics.
type QueueService struct {
	sources SourceStore
	queue   QueueStore
	logger  *slog.Logger
}

func NewQueueService(sources SourceStore, queue QueueStore, logger *slog.Logger) *QueueService {
	return &QueueService{
		sources: sources,
		queue:   queue,
		logger:  logger.With("component", "queue"),
	}
}

// List returns one page ordered by quality, best first, then newest first.
func (s *QueueService) List(ctx context.Context, filter domain.ItemFilter) (*ItemPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	items, total, err := s.queue.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return &ItemPage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
	}, nil
}

func (s *QueueService) Get(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.queue.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	return item, nil
}

// Update applies a moderation decision. Published items are frozen and
// PUBLISHED cannot be set by hand.
func (s *QueueService) Update(ctx context.Context, id string, update domain.ItemUpdate) (*domain.Item, error) {
	current, err := s.queue.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}

	if current.Status == domain.StatusPublished {
		return nil, fmt.Errorf("%w: item %s is already published", domain.ErrInvalidTransition, id)
	}
	if update.Status != nil && !current.Status.CanModerate(*update.Status) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, current.Status, *update.Status)
	}
	if update.Project != nil && current.ContentType != domain.ContentProject {
		return nil, fmt.Errorf("%w: project payload for %s item", domain.ErrUnsupportedContentType, current.ContentType)
	}
	if update.Article != nil && current.ContentType != domain.ContentArticle {
		return nil, fmt.Errorf("%w: article payload for %s item", domain.ErrUnsupportedContentType, current.ContentType)
	}

	update.ReviewedAt = time.Now()

	item, err := s.queue.Update(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("update item %s: %w", id, err)
	}

	s.logger.Info("item reviewed", "item_id", id, "status", item.Status)

	return item, nil
}

// BulkUpdateStatus moves many items at once. Published items are left alone.
func (s *QueueService) BulkUpdateStatus(ctx context.Context, ids []string, status domain.HarvestStatus) (int, error) {
	if status == domain.StatusPublished {
		return 0, fmt.Errorf("%w: %s cannot be set by moderation", domain.ErrInvalidTransition, status)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	n, err := s.queue.BulkUpdateStatus(ctx, ids, status, time.Now())
	if err != nil {
		return 0, fmt.Errorf("bulk update status: %w", err)
	}

	s.logger.Info("bulk status update", "requested", len(ids), "updated", n, "status", status)

	return n, nil
}

func (s *QueueService) Delete(ctx context.Context, id string) error {
	if err := s.queue.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return nil
}

// Stats aggregates queue counts overall and per source.
func (s *QueueService) Stats(ctx context.Context) (*domain.QueueStats, error) {
	byStatus, err := s.queue.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	counts, err := s.queue.CountBySourceAndStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by source: %w", err)
	}

	sources, err := s.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	stats := &domain.QueueStats{
		Totals: domain.StatusTotals{
			Pending:   byStatus[domain.StatusPending],
			Approved:  byStatus[domain.StatusApproved],
			Rejected:  byStatus[domain.StatusRejected],
			Published: byStatus[domain.StatusPublished],
			Duplicate: byStatus[domain.StatusDuplicate],
			NeedsInfo: byStatus[domain.StatusNeedsInfo],
		},
		BySource: make([]domain.SourceQueueStats, 0, len(sources)),
	}
	for _, n := range byStatus {
		stats.Totals.Total += n
	}

	perSource := make(map[string]map[string]int, len(sources))
	for _, c := range counts {
		if perSource[c.SourceID] == nil {
			perSource[c.SourceID] = map[string]int{}
		}
		perSource[c.SourceID][string(c.Status)] = c.Count
	}

	for _, src := range sources {
		sourceCounts := perSource[src.ID]
		if sourceCounts == nil {
			sourceCounts = map[string]int{}
		}
		stats.BySource = append(stats.BySource, domain.SourceQueueStats{
			ID:          src.ID,
			Name:        src.Name,
			Slug:        src.Slug,
			LastHarvest: src.LastHarvest,
			Counts:      sourceCounts,
		})
	}

	return stats, nil
}

// SimilarItems ranks other project items by likely duplication of item id.
// Only scores at or above minScore are returned.
func (s *QueueService) SimilarItems(ctx context.Context, id string, minScore int) ([]SimilarItem, error) {
	target, err := s.queue.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	if target.ContentType != domain.ContentProject || target.Project == nil {
		return []SimilarItem{}, nil
	}

	contentType := domain.ContentProject
	candidates, _, err := s.queue.List(ctx, domain.ItemFilter{
		ContentType: &contentType,
		Page:        1,
		Limit:       similarScanLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	similar := []SimilarItem{}
	for _, c := range candidates {
		if c.ID == target.ID || c.Project == nil {
			continue
		}
		score := quality.Similarity(*target.Project, *c.Project)
		if score >= minScore {
			similar = append(similar, SimilarItem{Item: c, Score: score})
		}
	}

	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Score > similar[j].Score
	})

	return similar, nil
}
