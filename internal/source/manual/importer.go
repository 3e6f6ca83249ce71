package manual

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"almanac/internal/domain"
	"almanac/internal/normalize"
	"almanac/internal/quality"
)

const defaultUserAgent = "SolarpunkAlmanac/1.0 (content harvester)"

// ImportProjects normalizes externally supplied records as projects using the
// source mapping. Records that are not objects or fail normalization are skipped.
func ImportProjects(src domain.Source, records []any) iter.Seq2[domain.HarvestResult, error] {
	return func(yield func(domain.HarvestResult, error) bool) {
		for _, record := range records {
			project, ok := normalize.ToProject(record, src.Mapping)
			if !ok {
				continue
			}

			externalID := recordID(record, project.Name)
			if externalID == "" {
				continue
			}

			result := domain.HarvestResult{
				ExternalID:  externalID,
				ExternalURL: project.Website,
				RawData:     record,
				ContentType: domain.ContentProject,
				Project:     project,
				Quality:     quality.ScoreProject(*project, quality.DefaultWeights),
			}
			if !yield(result, nil) {
				return
			}
		}
	}
}

// ImportArticles is ImportProjects for articles.
func ImportArticles(src domain.Source, records []any) iter.Seq2[domain.HarvestResult, error] {
	return func(yield func(domain.HarvestResult, error) bool) {
		for _, record := range records {
			article, ok := normalize.ToArticle(record, src.Mapping)
			if !ok {
				continue
			}

			externalID := recordID(record, article.Title)
			if externalID == "" {
				continue
			}

			result := domain.HarvestResult{
				ExternalID:  externalID,
				ExternalURL: article.SourceURL,
				RawData:     record,
				ContentType: domain.ContentArticle,
				Article:     article,
				Quality:     quality.ScoreArticle(*article),
			}
			if !yield(result, nil) {
				return
			}
		}
	}
}

// Import dispatches on contentType, defaulting to projects.
func Import(src domain.Source, contentType domain.ContentType, records []any) iter.Seq2[domain.HarvestResult, error] {
	if contentType == domain.ContentArticle {
		return ImportArticles(src, records)
	}
	return ImportProjects(src, records)
}

// recordID uses the record's own id or slug, else a slug of its display name.
func recordID(record any, name string) string {
	for _, key := range []string{"id", "slug"} {
		v, ok := normalize.Resolve(record, domain.P(key))
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case json.Number:
			return t.String()
		case float64, int, int64:
			return fmt.Sprint(t)
		}
	}
	return normalize.GenerateSlug(name)
}

type ImporterConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// Importer serves IMPORT sources by fetching a JSON array from the source URL.
// The source config's contentType selects project or article normalization.
type Importer struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

func NewImporter(cfg ImporterConfig, logger *slog.Logger) *Importer {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Importer{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  userAgent,
		logger:     logger.With("adapter", "import"),
	}
}

func (i *Importer) Harvest(ctx context.Context, src domain.Source) iter.Seq2[domain.HarvestResult, error] {
	return func(yield func(domain.HarvestResult, error) bool) {
		if src.URL == nil || *src.URL == "" {
			yield(domain.HarvestResult{}, fmt.Errorf("import source %s has no url", src.Slug))
			return
		}

		records, err := i.fetch(ctx, *src.URL)
		if err != nil {
			yield(domain.HarvestResult{}, fmt.Errorf("fetch import %s: %w", src.Slug, err))
			return
		}

		i.logger.Debug("fetched import", "source", src.Slug, "records", len(records))

		for result, err := range Import(src, src.Config.ContentType, records) {
			if !yield(result, err) {
				return
			}
		}
	}
}

func (i *Importer) fetch(ctx context.Context, url string) ([]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", i.userAgent)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return DecodeRecords(resp.Body)
}

// DecodeRecords reads a JSON array of records, keeping numbers exact.
func DecodeRecords(r io.Reader) ([]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}
