package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"almanac/internal/domain"
	"almanac/internal/service"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRuns(results []domain.HarvestStats) error {
	if flags.jsonOut {
		return printJSON(results)
	}
	renderRuns(os.Stdout, results)
	return nil
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	return tw
}

func renderSources(w io.Writer, sources []domain.Source) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Slug", "Type", "Priority", "Active", "Schedule", "Last Harvest", "Last Error"})
	for _, src := range sources {
		tw.AppendRow(table.Row{
			src.Slug,
			src.Type,
			src.Priority,
			src.IsActive,
			deref(src.Schedule),
			formatTime(src.LastHarvest),
			truncate(deref(src.LastError), 40),
		})
	}
	tw.Render()
}

func renderRuns(w io.Writer, results []domain.HarvestStats) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Source", "Status", "Processed", "Created", "Skipped", "Duplicate", "Errors", "Duration"})
	for _, r := range results {
		tw.AppendRow(table.Row{
			r.SourceName,
			r.Status,
			r.ItemsProcessed,
			r.ItemsCreated,
			r.ItemsSkipped,
			r.ItemsDuplicate,
			len(r.Errors),
			r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond),
		})
	}
	tw.Render()

	for _, r := range results {
		for _, msg := range r.Errors {
			fmt.Fprintf(w, "%s: %s\n", r.SourceName, msg)
		}
	}
}

func renderPublishReport(w io.Writer, report *domain.PublishReport) {
	fmt.Fprintf(w, "published: %d\n", report.Published)
	if len(report.Unsupported) > 0 {
		fmt.Fprintf(w, "unsupported: %s\n", strings.Join(report.Unsupported, ", "))
	}
	for _, msg := range report.Errors {
		fmt.Fprintf(w, "error: %s\n", msg)
	}
}

var statusColumns = []domain.HarvestStatus{
	domain.StatusPending,
	domain.StatusApproved,
	domain.StatusRejected,
	domain.StatusPublished,
	domain.StatusDuplicate,
	domain.StatusNeedsInfo,
}

func renderQueueStats(w io.Writer, stats *domain.QueueStats) {
	tw := newTable(w)
	header := table.Row{"Source"}
	for _, s := range statusColumns {
		header = append(header, s)
	}
	tw.AppendHeader(header)

	for _, src := range stats.BySource {
		row := table.Row{src.Slug}
		for _, s := range statusColumns {
			row = append(row, src.Counts[string(s)])
		}
		tw.AppendRow(row)
	}

	t := stats.Totals
	tw.AppendFooter(table.Row{"Total", t.Pending, t.Approved, t.Rejected, t.Published, t.Duplicate, t.NeedsInfo})
	tw.Render()
	fmt.Fprintf(w, "items: %d\n", t.Total)
}

func renderQueue(w io.Writer, result *service.ItemPage) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"ID", "Type", "Quality", "Status", "Title", "Created"})
	for _, item := range result.Items {
		tw.AppendRow(table.Row{
			item.ID,
			item.ContentType,
			item.Quality,
			item.Status,
			truncate(itemTitle(item), 50),
			item.CreatedAt.Format(time.DateOnly),
		})
	}
	tw.Render()
	fmt.Fprintf(w, "page %d of %d (%d items)\n", result.Page, result.TotalPages, result.Total)
}

func itemTitle(item domain.Item) string {
	switch {
	case item.Project != nil:
		return item.Project.Name
	case item.Article != nil:
		return item.Article.Title
	}
	return item.ExternalID
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format(time.DateTime)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
