package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"almanac/internal/api"
	"almanac/internal/app"
	"almanac/internal/config"
	"almanac/internal/scheduler"
	"almanac/internal/source"
)

const shutdownTimeout = 15 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred cleanup always happens.
func run(args []string) int {
	flags := flag.NewFlagSet("harvester", flag.ContinueOnError)
	configPath := flags.String("config", "config.yaml", "path to config file")
	initSources := flags.Bool("init-sources", false, "upsert the built-in source definitions on startup")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	logger = setupLogger(cfg.LogLevel)

	application, err := app.Open(cfg, app.Options{}, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("failed to close", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *initSources {
		if _, _, err := application.Harvest.InitializeSources(ctx, source.Definitions()); err != nil {
			logger.Error("failed to initialize sources", "error", err)
			return 1
		}
	}

	sched := scheduler.NewScheduler(application.Harvest, application.Publish, application.Sources, scheduler.Config{
		RunAll:     cfg.Schedule.RunAll,
		Publish:    cfg.Schedule.Publish,
		RunTimeout: cfg.Schedule.RunTimeout,
	}, logger)

	if cfg.HTTP.AdminToken == "" {
		logger.Warn("http.admin_token is empty; admin API will refuse all requests")
	}
	handler := api.NewServer(api.Deps{
		Harvester:   application.Harvest,
		Promoter:    application.Publish,
		Queue:       application.Queue,
		Sources:     application.Sources,
		Definitions: source.Definitions,
		AdminToken:  cfg.HTTP.AdminToken,
	}, logger).Routes()

	// Harvest and publish actions run inside the request.
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Schedule.RunTimeout,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("starting harvester", "addr", cfg.HTTP.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Start(gctx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("harvester stopped with error", "error", err)
		return 1
	}
	logger.Info("harvester stopped")
	return 0
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
