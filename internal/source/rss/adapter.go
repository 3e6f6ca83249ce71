// Package rss harvests articles from RSS 2.0 and Atom feeds.
package rss

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"time"

	"almanac/internal/domain"
	"almanac/internal/normalize"
	"almanac/internal/quality"
)

const (
	DefaultUserAgent = "SolarpunkAlmanac/1.0 (content harvester)"
	acceptHeader     = "application/rss+xml, application/atom+xml, application/xml, text/xml"
	maxFeedBytes     = 10 << 20
)

// defaultMapping is overlaid by each source's own mapping.
var defaultMapping = domain.FieldMapping{
	Title:      domain.P("title"),
	Content:    domain.P("content"),
	Excerpt:    domain.P("description", "summary"),
	Author:     domain.P("author"),
	CoverImage: domain.P("coverImage"),
	Website:    domain.P("link"),
}

type Config struct {
	Timeout   time.Duration
	UserAgent string
}

type Adapter struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Adapter {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Adapter{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: userAgent,
		logger:    logger.With("adapter", "rss"),
	}
}

// Harvest fetches the feed once and yields one article per usable entry.
// Fetch failures end the sequence with an error; entries without an
// identifier or without title and content are skipped.
func (a *Adapter) Harvest(ctx context.Context, src domain.Source) iter.Seq2[domain.HarvestResult, error] {
	return func(yield func(domain.HarvestResult, error) bool) {
		if src.URL == nil || *src.URL == "" {
			yield(domain.HarvestResult{}, fmt.Errorf("rss source %s has no url", src.Slug))
			return
		}

		body, err := a.fetch(ctx, *src.URL)
		if err != nil {
			yield(domain.HarvestResult{}, fmt.Errorf("fetch feed %s: %w", src.Slug, err))
			return
		}

		entries := parseFeed(body)
		a.logger.Debug("parsed feed", "source", src.Slug, "entries", len(entries))

		mapping := defaultMapping.Merge(src.Mapping)

		for _, e := range entries {
			externalID := e.externalID()
			if externalID == "" {
				continue
			}

			raw := e.rawData()
			article, ok := normalize.ToArticle(raw, mapping)
			if !ok {
				a.logger.Debug("skipping entry", "source", src.Slug, "external_id", externalID)
				continue
			}

			result := domain.HarvestResult{
				ExternalID:  externalID,
				RawData:     raw,
				ContentType: domain.ContentArticle,
				Article:     article,
			}
			if link := e["link"]; link != "" {
				article.SourceURL = &link
				result.ExternalURL = &link
			}
			result.Quality = quality.ScoreArticle(*article)

			if !yield(result, nil) {
				return
			}
		}
	}
}

func (a *Adapter) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}
