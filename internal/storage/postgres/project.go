package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"almanac/internal/domain"
)

type ProjectStore struct {
	db *sqlx.DB
}

func NewProjectStore(db *sqlx.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func (s *ProjectStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &exists,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE slug = $1)`, slug)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func (s *ProjectStore) Create(ctx context.Context, project *domain.Project) error {
	var lat, lng *float64
	if c := project.Coordinates; c != nil {
		lat, lng = &c.Lat, &c.Lng
	}
	id := uuid.NewString()

	query := `
		INSERT INTO projects (
			id, slug, name, tagline, description, website, location,
			latitude, longitude, cover_image, logo, status, submitted_by_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		id,
		project.Slug,
		project.Name,
		project.Tagline,
		project.Description,
		project.Website,
		project.Location,
		lat,
		lng,
		project.CoverImage,
		project.Logo,
		project.Status,
		project.SubmittedByID,
	)
	if err != nil {
		return fmt.Errorf("create project %s: %w", project.Slug, mapError(err))
	}

	project.ID = id
	return nil
}

// LinkCategories attaches categories by slug. Unknown slugs match no row and
// are skipped.
func (s *ProjectStore) LinkCategories(ctx context.Context, projectID string, slugs []string) error {
	query := `
		INSERT INTO project_categories (project_id, category_id)
		SELECT $1, id FROM categories WHERE slug = ANY($2)
		ON CONFLICT DO NOTHING`

	if _, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, projectID, pq.Array(slugs)); err != nil {
		return fmt.Errorf("link categories: %w", mapError(err))
	}
	return nil
}

func (s *ProjectStore) LinkSDGs(ctx context.Context, projectID string, sdgs []int) error {
	ids := make([]int64, len(sdgs))
	for i, n := range sdgs {
		ids[i] = int64(n)
	}

	query := `
		INSERT INTO project_sdgs (project_id, sdg_id)
		SELECT $1, id FROM sdgs WHERE id = ANY($2)
		ON CONFLICT DO NOTHING`

	if _, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, projectID, pq.Array(ids)); err != nil {
		return fmt.Errorf("link sdgs: %w", mapError(err))
	}
	return nil
}

type projectRow struct {
	ID            string         `db:"id"`
	Slug          string         `db:"slug"`
	Name          string         `db:"name"`
	Tagline       string         `db:"tagline"`
	Description   string         `db:"description"`
	Website       *string        `db:"website"`
	Location      *string        `db:"location"`
	Latitude      *float64       `db:"latitude"`
	Longitude     *float64       `db:"longitude"`
	CoverImage    *string        `db:"cover_image"`
	Logo          *string        `db:"logo"`
	Status        string         `db:"status"`
	SubmittedByID string         `db:"submitted_by_id"`
	Categories    pq.StringArray `db:"categories"`
	SDGs          pq.Int64Array  `db:"sdgs"`
}

// Get loads a project with its category slugs and SDG numbers.
func (s *ProjectStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	query := `
		SELECT
			p.id, p.slug, p.name, p.tagline, p.description, p.website, p.location,
			p.latitude, p.longitude, p.cover_image, p.logo, p.status, p.submitted_by_id,
			ARRAY(
				SELECT c.slug FROM project_categories pc
				JOIN categories c ON c.id = pc.category_id
				WHERE pc.project_id = p.id ORDER BY c.slug
			) AS categories,
			ARRAY(
				SELECT ps.sdg_id FROM project_sdgs ps
				WHERE ps.project_id = p.id ORDER BY ps.sdg_id
			) AS sdgs
		FROM projects p
		WHERE p.id = $1`

	var row projectRow
	if err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, id); err != nil {
		return nil, mapError(err)
	}

	project := &domain.Project{
		ID:            row.ID,
		Slug:          row.Slug,
		Name:          row.Name,
		Tagline:       row.Tagline,
		Description:   row.Description,
		Website:       row.Website,
		Location:      row.Location,
		CoverImage:    row.CoverImage,
		Logo:          row.Logo,
		Status:        row.Status,
		SubmittedByID: row.SubmittedByID,
		Categories:    []string(row.Categories),
		SDGs:          make([]int, len(row.SDGs)),
	}
	if row.Latitude != nil && row.Longitude != nil {
		project.Coordinates = &domain.Coordinates{Lat: *row.Latitude, Lng: *row.Longitude}
	}
	for i, n := range row.SDGs {
		project.SDGs[i] = int(n)
	}
	return project, nil
}
