package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"almanac/internal/app"
	"almanac/internal/domain"
	"almanac/internal/source"
	"almanac/internal/source/manual"
)

func initSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-sources",
		Short: "Create or update the built-in source definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				created, updated, err := a.Harvest.InitializeSources(ctx, source.Definitions())
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return printJSON(map[string]int{"created": created, "updated": updated})
				}
				fmt.Printf("sources initialized: %d created, %d updated\n", created, updated)
				return nil
			})
		},
	}
}

func sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List configured sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				sources, err := a.Sources.List(ctx)
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return printJSON(sources)
				}
				renderSources(os.Stdout, sources)
				return nil
			})
		},
	}
}

func setActiveCmd(use string, active bool) *cobra.Command {
	short := "Deactivate a source"
	if active {
		short = "Activate a source"
	}
	return &cobra.Command{
		Use:   use + " <slug>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				src, err := a.Sources.GetBySlug(ctx, args[0])
				if err != nil {
					return fmt.Errorf("source %s: %w", args[0], err)
				}
				if err := a.Sources.SetActive(ctx, src.ID, active); err != nil {
					return err
				}
				fmt.Printf("%s: active=%t\n", src.Slug, active)
				return nil
			})
		},
	}
}

func harvestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "harvest <slug>",
		Short: "Harvest one source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				stats, err := a.Harvest.RunBySlug(ctx, args[0])
				if err != nil {
					return err
				}
				return printRuns([]domain.HarvestStats{*stats})
			})
		},
	}
}

func harvestAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "harvest-all",
		Short: "Harvest every active source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				results, err := a.Harvest.RunAll(ctx)
				if err != nil {
					return err
				}
				return printRuns(results)
			})
		},
	}
}

func importCmd() *cobra.Command {
	var contentType string
	cmd := &cobra.Command{
		Use:   "import <slug> <file|->",
		Short: "Import a JSON array of records against a source",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				stats, err := a.Harvest.Import(ctx, args[0], domain.ContentType(contentType), records)
				if err != nil {
					return err
				}
				return printRuns([]domain.HarvestStats{*stats})
			})
		},
	}
	cmd.Flags().StringVar(&contentType, "type", string(domain.ContentProject), "content type of the records (PROJECT|ARTICLE)")
	return cmd
}

func readRecords(path string) ([]any, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	records, err := manual.DecodeRecords(r)
	if err != nil {
		return nil, fmt.Errorf("read records from %s: %w", path, err)
	}
	return records, nil
}

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Promote approved items into projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				report, err := a.Publish.PublishApproved(ctx)
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return printJSON(report)
				}
				renderPublishReport(os.Stdout, report)
				return nil
			})
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show queue totals per status and source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				stats, err := a.Queue.Stats(ctx)
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return printJSON(stats)
				}
				renderQueueStats(os.Stdout, stats)
				return nil
			})
		},
	}
}

func queueCmd() *cobra.Command {
	var (
		status     string
		sourceSlug string
		minQuality int
		page       int
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List queued items, best first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.ItemFilter{MinQuality: minQuality, Page: page, Limit: limit}
			if status != "" {
				s, err := domain.ParseStatus(status)
				if err != nil {
					return err
				}
				filter.Status = &s
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if sourceSlug != "" {
					src, err := a.Sources.GetBySlug(ctx, sourceSlug)
					if err != nil {
						return fmt.Errorf("source %s: %w", sourceSlug, err)
					}
					filter.SourceID = &src.ID
				}
				result, err := a.Queue.List(ctx, filter)
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return printJSON(result)
				}
				renderQueue(os.Stdout, result)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&sourceSlug, "source", "", "filter by source slug")
	cmd.Flags().IntVar(&minQuality, "min-quality", 0, "minimum quality score")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "items per page")
	return cmd
}

func moderateCmd(use string, status domain.HarvestStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>...",
		Short: fmt.Sprintf("Set items to %s", status),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				n, err := a.Queue.BulkUpdateStatus(ctx, args, status)
				if err != nil {
					return err
				}
				fmt.Printf("%d of %d items set to %s\n", n, len(args), status)
				return nil
			})
		},
	}
}
