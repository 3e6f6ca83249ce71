package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"almanac/internal/domain"
)

const sourceColumns = `id, slug, name, type, url, description, config, mapping, priority,
	schedule, is_active, last_harvest, last_error, created_at, updated_at`

type sourceRow struct {
	ID          string     `db:"id"`
	Slug        string     `db:"slug"`
	Name        string     `db:"name"`
	Type        string     `db:"type"`
	URL         *string    `db:"url"`
	Description string     `db:"description"`
	Config      []byte     `db:"config"`
	Mapping     []byte     `db:"mapping"`
	Priority    int        `db:"priority"`
	Schedule    *string    `db:"schedule"`
	IsActive    bool       `db:"is_active"`
	LastHarvest *time.Time `db:"last_harvest"`
	LastError   *string    `db:"last_error"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r sourceRow) toDomain() (domain.Source, error) {
	src := domain.Source{
		ID:          r.ID,
		Slug:        r.Slug,
		Name:        r.Name,
		Type:        domain.SourceType(r.Type),
		URL:         r.URL,
		Description: r.Description,
		Priority:    r.Priority,
		Schedule:    r.Schedule,
		IsActive:    r.IsActive,
		LastHarvest: r.LastHarvest,
		LastError:   r.LastError,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if err := json.Unmarshal(r.Config, &src.Config); err != nil {
		return src, fmt.Errorf("decode config of source %s: %w", r.Slug, err)
	}
	if err := json.Unmarshal(r.Mapping, &src.Mapping); err != nil {
		return src, fmt.Errorf("decode mapping of source %s: %w", r.Slug, err)
	}
	return src, nil
}

type SourceStore struct {
	db *sqlx.DB
}

func NewSourceStore(db *sqlx.DB) *SourceStore {
	return &SourceStore{db: db}
}

// Upsert inserts or updates a source by slug. The active flag is set only on
// insert so operator decisions survive re-initialization.
func (s *SourceStore) Upsert(ctx context.Context, src *domain.Source) (bool, error) {
	config, err := json.Marshal(src.Config)
	if err != nil {
		return false, fmt.Errorf("encode config: %w", err)
	}
	mapping, err := json.Marshal(src.Mapping)
	if err != nil {
		return false, fmt.Errorf("encode mapping: %w", err)
	}

	query := `
		INSERT INTO harvest_sources (
			id, slug, name, type, url, description, config, mapping, priority, schedule
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			url = EXCLUDED.url,
			description = EXCLUDED.description,
			config = EXCLUDED.config,
			mapping = EXCLUDED.mapping,
			priority = EXCLUDED.priority,
			schedule = EXCLUDED.schedule,
			updated_at = NOW()
		RETURNING id, (xmax = 0) AS inserted, is_active, created_at, updated_at`

	var inserted bool
	err = GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		uuid.NewString(),
		src.Slug,
		src.Name,
		string(src.Type),
		src.URL,
		src.Description,
		string(config),
		string(mapping),
		src.Priority,
		src.Schedule,
	).Scan(&src.ID, &inserted, &src.IsActive, &src.CreatedAt, &src.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("upsert source %s: %w", src.Slug, mapError(err))
	}

	return inserted, nil
}

func (s *SourceStore) GetByID(ctx context.Context, id string) (*domain.Source, error) {
	return s.get(ctx, "id", id)
}

func (s *SourceStore) GetBySlug(ctx context.Context, slug string) (*domain.Source, error) {
	return s.get(ctx, "slug", slug)
}

func (s *SourceStore) get(ctx context.Context, column, value string) (*domain.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM harvest_sources WHERE ` + column + ` = $1`

	var row sourceRow
	if err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, value); err != nil {
		return nil, mapError(err)
	}

	src, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &src, nil
}

func (s *SourceStore) List(ctx context.Context) ([]domain.Source, error) {
	return s.list(ctx, `SELECT `+sourceColumns+` FROM harvest_sources ORDER BY priority DESC, slug`)
}

func (s *SourceStore) ListActive(ctx context.Context) ([]domain.Source, error) {
	return s.list(ctx, `SELECT `+sourceColumns+` FROM harvest_sources WHERE is_active ORDER BY priority DESC, slug`)
}

func (s *SourceStore) list(ctx context.Context, query string) ([]domain.Source, error) {
	var rows []sourceRow
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	sources := make([]domain.Source, 0, len(rows))
	for _, row := range rows {
		src, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func (s *SourceStore) RecordRun(ctx context.Context, id string, at time.Time, lastError *string) error {
	query := `
		UPDATE harvest_sources
		SET last_harvest = $2, last_error = $3, updated_at = NOW()
		WHERE id = $1`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, id, at, lastError)
	if err != nil {
		return fmt.Errorf("record run: %w", mapError(err))
	}
	return requireAffected(res)
}

func (s *SourceStore) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE harvest_sources SET is_active = $2, updated_at = NOW() WHERE id = $1`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("set active: %w", mapError(err))
	}
	return requireAffected(res)
}
