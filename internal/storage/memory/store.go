// Package memory implements the persistence interfaces in process. It backs
// dry runs and tests; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"almanac/internal/domain"
)

// Categories seeded into every project store.
var Categories = []string{"energy", "food", "housing", "transport", "community", "tech", "education", "art"}

type SourceStore struct {
	mu      sync.RWMutex
	sources map[string]*domain.Source
}

func NewSourceStore() *SourceStore {
	return &SourceStore{sources: make(map[string]*domain.Source)}
}

func (s *SourceStore) Upsert(_ context.Context, src *domain.Source) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, existing := range s.sources {
		if existing.Slug != src.Slug {
			continue
		}
		existing.Name = src.Name
		existing.Type = src.Type
		existing.URL = src.URL
		existing.Description = src.Description
		existing.Config = src.Config
		existing.Mapping = src.Mapping
		existing.Priority = src.Priority
		existing.Schedule = src.Schedule
		existing.UpdatedAt = now
		*src = *existing
		return false, nil
	}

	stored := *src
	stored.ID = uuid.NewString()
	stored.IsActive = true
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.sources[stored.ID] = &stored
	*src = stored
	return true, nil
}

func (s *SourceStore) GetByID(_ context.Context, id string) (*domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src, ok := s.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *src
	return &out, nil
}

func (s *SourceStore) GetBySlug(_ context.Context, slug string) (*domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, src := range s.sources {
		if src.Slug == slug {
			out := *src
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *SourceStore) List(_ context.Context) ([]domain.Source, error) {
	return s.list(func(domain.Source) bool { return true }), nil
}

func (s *SourceStore) ListActive(_ context.Context) ([]domain.Source, error) {
	return s.list(func(src domain.Source) bool { return src.IsActive }), nil
}

func (s *SourceStore) list(keep func(domain.Source) bool) []domain.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Source{}
	for _, src := range s.sources {
		if keep(*src) {
			out = append(out, *src)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}

func (s *SourceStore) RecordRun(_ context.Context, id string, at time.Time, lastError *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.sources[id]
	if !ok {
		return domain.ErrNotFound
	}
	src.LastHarvest = &at
	src.LastError = lastError
	src.UpdatedAt = at
	return nil
}

// SetActive toggles a source. Operators use it; harvest runs never do.
func (s *SourceStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.sources[id]
	if !ok {
		return domain.ErrNotFound
	}
	src.IsActive = active
	return nil
}

// ItemStore serves both the orchestrator and the moderation queue.
type ItemStore struct {
	mu    sync.RWMutex
	items map[string]*domain.Item
}

func NewItemStore() *ItemStore {
	return &ItemStore{items: make(map[string]*domain.Item)}
}

func (s *ItemStore) FindByExternalID(_ context.Context, sourceID, externalID string) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.SourceID == sourceID && item.ExternalID == externalID {
			out := *item
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *ItemStore) Create(_ context.Context, item *domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.SourceID == item.SourceID && existing.ExternalID == item.ExternalID {
			return domain.ErrDuplicate
		}
	}

	now := time.Now()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = now
	item.UpdatedAt = now

	stored := *item
	s.items[stored.ID] = &stored
	return nil
}

func (s *ItemStore) ListPublishable(_ context.Context) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Item{}
	for _, item := range s.items {
		if item.Status == domain.StatusApproved && item.ProjectID == nil && item.ArticleID == nil {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *ItemStore) MarkPublished(_ context.Context, id, projectID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	item.Status = domain.StatusPublished
	item.ProjectID = &projectID
	item.UpdatedAt = at
	return nil
}

func (s *ItemStore) Get(_ context.Context, id string) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *item
	return &out, nil
}

func (s *ItemStore) List(_ context.Context, filter domain.ItemFilter) ([]domain.Item, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []domain.Item{}
	for _, item := range s.items {
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		if filter.SourceID != nil && item.SourceID != *filter.SourceID {
			continue
		}
		if filter.ContentType != nil && item.ContentType != *filter.ContentType {
			continue
		}
		if item.Quality < filter.MinQuality {
			continue
		}
		matched = append(matched, *item)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Quality != matched[j].Quality {
			return matched[i].Quality > matched[j].Quality
		}
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return strings.Compare(matched[i].ID, matched[j].ID) < 0
	})

	total := len(matched)
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return matched, total, nil
	}

	start := (page - 1) * limit
	if start >= total {
		return []domain.Item{}, total, nil
	}
	end := min(start+limit, total)
	return matched[start:end], total, nil
}

func (s *ItemStore) Update(_ context.Context, id string, update domain.ItemUpdate) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	if update.Status != nil {
		item.Status = *update.Status
	}
	if update.ReviewNotes != nil {
		item.ReviewNotes = update.ReviewNotes
	}
	if update.Project != nil {
		item.Project = update.Project
	}
	if update.Article != nil {
		item.Article = update.Article
	}
	reviewedAt := update.ReviewedAt
	item.ReviewedAt = &reviewedAt
	item.UpdatedAt = reviewedAt

	out := *item
	return &out, nil
}

func (s *ItemStore) BulkUpdateStatus(_ context.Context, ids []string, status domain.HarvestStatus, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for _, id := range ids {
		item, ok := s.items[id]
		if !ok || item.Status == domain.StatusPublished {
			continue
		}
		item.Status = status
		item.ReviewedAt = &at
		item.UpdatedAt = at
		updated++
	}
	return updated, nil
}

func (s *ItemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *ItemStore) CountByStatus(_ context.Context) (map[domain.HarvestStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[domain.HarvestStatus]int{}
	for _, item := range s.items {
		counts[item.Status]++
	}
	return counts, nil
}

func (s *ItemStore) CountBySourceAndStatus(_ context.Context) ([]domain.SourceStatusCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct {
		source string
		status domain.HarvestStatus
	}
	grouped := map[key]int{}
	for _, item := range s.items {
		grouped[key{item.SourceID, item.Status}]++
	}

	out := make([]domain.SourceStatusCount, 0, len(grouped))
	for k, n := range grouped {
		out = append(out, domain.SourceStatusCount{SourceID: k.source, Status: k.status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceID != out[j].SourceID {
			return out[i].SourceID < out[j].SourceID
		}
		return out[i].Status < out[j].Status
	})
	return out, nil
}

// ProjectStore holds published projects and the system account.
type ProjectStore struct {
	mu         sync.RWMutex
	projects   map[string]*domain.Project
	categories map[string]struct{}
	users      map[string]string
}

func NewProjectStore() *ProjectStore {
	categories := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		categories[c] = struct{}{}
	}
	return &ProjectStore{
		projects:   make(map[string]*domain.Project),
		categories: categories,
		users:      make(map[string]string),
	}
}

func (s *ProjectStore) SlugExists(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.projects {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *ProjectStore) Create(_ context.Context, project *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.projects {
		if p.Slug == project.Slug {
			return domain.ErrDuplicate
		}
	}

	project.ID = uuid.NewString()
	stored := *project
	stored.Categories = nil
	stored.SDGs = nil
	s.projects[stored.ID] = &stored
	return nil
}

func (s *ProjectStore) LinkCategories(_ context.Context, projectID string, slugs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[projectID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, slug := range slugs {
		if _, known := s.categories[slug]; known {
			p.Categories = append(p.Categories, slug)
		}
	}
	return nil
}

func (s *ProjectStore) LinkSDGs(_ context.Context, projectID string, sdgs []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[projectID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, n := range sdgs {
		if n >= 1 && n <= 17 {
			p.SDGs = append(p.SDGs, n)
		}
	}
	return nil
}

func (s *ProjectStore) Get(_ context.Context, id string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (s *ProjectStore) GetOrCreateSystemUser(_ context.Context, email, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.users[email]; ok {
		return id, nil
	}
	id := uuid.NewString()
	s.users[email] = id
	return id, nil
}

// TransactionManager runs fn directly; the memory stores have no rollback.
type TransactionManager struct{}

func (TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
