package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"almanac/internal/config"
	"almanac/internal/domain"
	"almanac/internal/normalize"
)

const projectStatusPublished = "PUBLISHED"

// PublishService promotes approved queue items into permanent content.
type PublishService struct {
	items     ItemStore
	projects  ProjectStore
	accounts  AccountStore
	txManager TransactionManager
	publisher Publisher
	logger    *slog.Logger
	config    config.HarvestConfig
}

func NewPublishService(
	items ItemStore,
	projects ProjectStore,
	accounts AccountStore,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.HarvestConfig,
) *PublishService {
	return &PublishService{
		items:     items,
		projects:  projects,
		accounts:  accounts,
		txManager: txManager,
		publisher: publisher,
		logger:    logger.With("component", "publisher"),
		config:    cfg,
	}
}

// PublishApproved promotes every approved, unlinked item. Article items are
// reported as unsupported and stay APPROVED. Failures are collected per item.
func (s *PublishService) PublishApproved(ctx context.Context) (*domain.PublishReport, error) {
	items, err := s.items.ListPublishable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list publishable items: %w", err)
	}

	report := &domain.PublishReport{
		Errors:      []string{},
		Unsupported: []string{},
	}

	for i := range items {
		item := &items[i]

		project, err := s.promote(ctx, item)
		switch {
		case errors.Is(err, domain.ErrUnsupportedContentType):
			report.Unsupported = append(report.Unsupported, item.ID)
			continue
		case err != nil:
			s.logger.Warn("failed to promote item", "item_id", item.ID, "error", err)
			report.Errors = append(report.Errors, fmt.Sprintf("Item %s: %v", item.ID, err))
			continue
		}

		report.Published++

		if s.publisher != nil {
			if err := s.publisher.PublishProject(ctx, project); err != nil {
				s.logger.Warn("failed to publish project event", "project_id", project.ID, "error", err)
			}
		}
	}

	s.logger.Info("promotion completed",
		"candidates", len(items),
		"published", report.Published,
		"errors", len(report.Errors),
		"unsupported", len(report.Unsupported),
	)

	return report, nil
}

func (s *PublishService) promote(ctx context.Context, item *domain.Item) (*domain.Project, error) {
	if item.ContentType != domain.ContentProject {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedContentType, item.ContentType)
	}
	if item.Project == nil {
		return nil, errors.New("item has no normalized project")
	}

	var project *domain.Project
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		ownerID, err := s.accounts.GetOrCreateSystemUser(txCtx, s.config.SystemUserEmail, s.config.SystemUserName)
		if err != nil {
			return fmt.Errorf("get system user: %w", err)
		}

		slug, err := s.projectSlug(txCtx, item)
		if err != nil {
			return err
		}

		project = newProject(item.Project, slug, ownerID)
		if err := s.projects.Create(txCtx, project); err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		if len(project.Categories) > 0 {
			if err := s.projects.LinkCategories(txCtx, project.ID, project.Categories); err != nil {
				return fmt.Errorf("link categories: %w", err)
			}
		}
		if len(project.SDGs) > 0 {
			if err := s.projects.LinkSDGs(txCtx, project.ID, project.SDGs); err != nil {
				return fmt.Errorf("link sdgs: %w", err)
			}
		}

		if err := s.items.MarkPublished(txCtx, item.ID, project.ID, time.Now()); err != nil {
			return fmt.Errorf("mark published: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return project, nil
}

// projectSlug falls back to a suffix of the item id when the name slug is taken.
func (s *PublishService) projectSlug(ctx context.Context, item *domain.Item) (string, error) {
	slug := normalize.GenerateSlug(item.Project.Name)
	if slug == "" {
		slug = "project"
	}

	taken, err := s.projects.SlugExists(ctx, slug)
	if err != nil {
		return "", fmt.Errorf("check slug: %w", err)
	}
	if !taken {
		return slug, nil
	}

	suffix := item.ID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return slug + "-" + suffix, nil
}

func newProject(p *domain.NormalizedProject, slug, ownerID string) *domain.Project {
	return &domain.Project{
		Slug:          slug,
		Name:          p.Name,
		Tagline:       p.Tagline,
		Description:   p.Description,
		Website:       p.Website,
		Location:      p.Location,
		Coordinates:   p.Coordinates,
		CoverImage:    p.CoverImage,
		Logo:          p.Logo,
		Status:        projectStatusPublished,
		SubmittedByID: ownerID,
		Categories:    p.Categories,
		SDGs:          p.SDGs,
	}
}
