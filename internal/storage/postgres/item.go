package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"almanac/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var itemColumns = []string{
	"id", "source_id", "external_id", "external_url", "raw_data", "normalized", "content_type",
	"quality", "status", "review_notes", "reviewed_at", "project_id", "article_id",
	"created_at", "updated_at",
}

type itemRow struct {
	ID          string     `db:"id"`
	SourceID    string     `db:"source_id"`
	ExternalID  string     `db:"external_id"`
	ExternalURL *string    `db:"external_url"`
	RawData     []byte     `db:"raw_data"`
	Normalized  []byte     `db:"normalized"`
	ContentType string     `db:"content_type"`
	Quality     int        `db:"quality"`
	Status      string     `db:"status"`
	ReviewNotes *string    `db:"review_notes"`
	ReviewedAt  *time.Time `db:"reviewed_at"`
	ProjectID   *string    `db:"project_id"`
	ArticleID   *string    `db:"article_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r itemRow) toDomain() (domain.Item, error) {
	item := domain.Item{
		ID:          r.ID,
		SourceID:    r.SourceID,
		ExternalID:  r.ExternalID,
		ExternalURL: r.ExternalURL,
		RawData:     r.RawData,
		ContentType: domain.ContentType(r.ContentType),
		Quality:     r.Quality,
		Status:      domain.HarvestStatus(r.Status),
		ReviewNotes: r.ReviewNotes,
		ReviewedAt:  r.ReviewedAt,
		ProjectID:   r.ProjectID,
		ArticleID:   r.ArticleID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if err := item.SetNormalizedJSON(r.Normalized); err != nil {
		return item, fmt.Errorf("decode item %s: %w", r.ID, err)
	}
	return item, nil
}

func toItems(rows []itemRow) ([]domain.Item, error) {
	items := make([]domain.Item, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// jsonParam passes encoded JSON as text; lib/pq would send a []byte as bytea.
func jsonParam(data []byte) *string {
	if data == nil {
		return nil
	}
	s := string(data)
	return &s
}

func marshalJSON(v any) (*string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonParam(data), nil
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}

// ItemStore persists harvest items and backs the moderation queue.
type ItemStore struct {
	db *sqlx.DB
}

func NewItemStore(db *sqlx.DB) *ItemStore {
	return &ItemStore{db: db}
}

func (s *ItemStore) FindByExternalID(ctx context.Context, sourceID, externalID string) (*domain.Item, error) {
	query, args, err := psql.Select(itemColumns...).
		From("harvest_items").
		Where(sq.Eq{"source_id": sourceID, "external_id": externalID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return s.getOne(ctx, query, args...)
}

// Create inserts a new item. The (source_id, external_id) constraint is the
// authoritative dedup check: a conflicting insert affects no row and yields
// domain.ErrDuplicate.
func (s *ItemStore) Create(ctx context.Context, item *domain.Item) error {
	normalized, err := item.NormalizedJSON()
	if err != nil {
		return fmt.Errorf("encode normalized: %w", err)
	}
	raw := []byte(item.RawData)
	if len(raw) == 0 {
		raw = []byte("null")
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Status == "" {
		item.Status = domain.StatusPending
	}

	query := `
		INSERT INTO harvest_items (
			id, source_id, external_id, external_url, raw_data, normalized,
			content_type, quality, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (source_id, external_id) DO NOTHING
		RETURNING created_at, updated_at`

	err = GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		item.ID,
		item.SourceID,
		item.ExternalID,
		item.ExternalURL,
		string(raw),
		jsonParam(normalized),
		string(item.ContentType),
		item.Quality,
		string(item.Status),
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create item: %w", mapError(err))
	}

	return nil
}

func (s *ItemStore) ListPublishable(ctx context.Context) ([]domain.Item, error) {
	query, args, err := psql.Select(itemColumns...).
		From("harvest_items").
		Where(sq.Eq{
			"status":     string(domain.StatusApproved),
			"project_id": nil,
			"article_id": nil,
		}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, err
	}
	return s.selectMany(ctx, query, args...)
}

func (s *ItemStore) MarkPublished(ctx context.Context, id, projectID string, at time.Time) error {
	query := `
		UPDATE harvest_items
		SET status = $2, project_id = $3, updated_at = $4
		WHERE id = $1`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, id, string(domain.StatusPublished), projectID, at)
	if err != nil {
		return fmt.Errorf("mark published: %w", mapError(err))
	}
	return requireAffected(res)
}

func (s *ItemStore) Get(ctx context.Context, id string) (*domain.Item, error) {
	query, args, err := psql.Select(itemColumns...).
		From("harvest_items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return s.getOne(ctx, query, args...)
}

func filterConditions(filter domain.ItemFilter) sq.And {
	where := sq.And{}
	if filter.Status != nil {
		where = append(where, sq.Eq{"status": string(*filter.Status)})
	}
	if filter.SourceID != nil {
		where = append(where, sq.Eq{"source_id": *filter.SourceID})
	}
	if filter.ContentType != nil {
		where = append(where, sq.Eq{"content_type": string(*filter.ContentType)})
	}
	if filter.MinQuality > 0 {
		where = append(where, sq.GtOrEq{"quality": filter.MinQuality})
	}
	return where
}

// List returns one page of items ordered best first, plus the total number
// of matching items.
func (s *ItemStore) List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, int, error) {
	where := filterConditions(filter)

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("harvest_items").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", mapError(err))
	}

	builder := psql.Select(itemColumns...).
		From("harvest_items").
		Where(where).
		OrderBy("quality DESC", "created_at DESC", "id")
	if filter.Limit > 0 {
		page := max(filter.Page, 1)
		builder = builder.
			Limit(uint64(filter.Limit)).
			Offset(uint64((page - 1) * filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	items, err := s.selectMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *ItemStore) Update(ctx context.Context, id string, update domain.ItemUpdate) (*domain.Item, error) {
	builder := psql.Update("harvest_items").
		Set("reviewed_at", update.ReviewedAt).
		Set("updated_at", update.ReviewedAt).
		Where(sq.Eq{"id": id})

	if update.Status != nil {
		builder = builder.Set("status", string(*update.Status))
	}
	if update.ReviewNotes != nil {
		builder = builder.Set("review_notes", *update.ReviewNotes)
	}
	var payload any
	switch {
	case update.Project != nil:
		payload = update.Project
	case update.Article != nil:
		payload = update.Article
	}
	if payload != nil {
		normalized, err := marshalJSON(payload)
		if err != nil {
			return nil, fmt.Errorf("encode normalized: %w", err)
		}
		builder = builder.Set("normalized", normalized)
	}

	query, args, err := builder.Suffix("RETURNING " + joinColumns(itemColumns)).ToSql()
	if err != nil {
		return nil, err
	}
	return s.getOne(ctx, query, args...)
}

func (s *ItemStore) BulkUpdateStatus(ctx context.Context, ids []string, status domain.HarvestStatus, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := psql.Update("harvest_items").
		Set("status", string(status)).
		Set("reviewed_at", at).
		Set("updated_at", at).
		Where(sq.And{
			sq.Eq{"id": ids},
			sq.NotEq{"status": string(domain.StatusPublished)},
		}).
		ToSql()
	if err != nil {
		return 0, err
	}

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk update status: %w", mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *ItemStore) Delete(ctx context.Context, id string) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, `DELETE FROM harvest_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", mapError(err))
	}
	return requireAffected(res)
}

func (s *ItemStore) CountByStatus(ctx context.Context) (map[domain.HarvestStatus]int, error) {
	query := `SELECT status, COUNT(*) AS count FROM harvest_items GROUP BY status`

	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query); err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	counts := make(map[domain.HarvestStatus]int, len(rows))
	for _, row := range rows {
		counts[domain.HarvestStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func (s *ItemStore) CountBySourceAndStatus(ctx context.Context) ([]domain.SourceStatusCount, error) {
	query := `
		SELECT source_id, status, COUNT(*) AS count
		FROM harvest_items
		GROUP BY source_id, status
		ORDER BY source_id, status`

	var counts []domain.SourceStatusCount
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &counts, query); err != nil {
		return nil, fmt.Errorf("count by source and status: %w", err)
	}
	return counts, nil
}

func (s *ItemStore) getOne(ctx context.Context, query string, args ...any) (*domain.Item, error) {
	var row itemRow
	if err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, args...); err != nil {
		return nil, mapError(err)
	}
	item, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *ItemStore) selectMany(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	var rows []itemRow
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", mapError(err))
	}
	return toItems(rows)
}
