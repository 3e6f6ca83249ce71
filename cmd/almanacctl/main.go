package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"almanac/internal/app"
	"almanac/internal/config"
	"almanac/internal/domain"
	"almanac/internal/source"
)

type globalFlags struct {
	configPath string
	memory     bool
	jsonOut    bool
	logLevel   string
}

var flags globalFlags

// rootCmd works against the configured database. With --memory every
// command runs on in-process stores seeded with the built-in sources and
// nothing is persisted.
var rootCmd = &cobra.Command{
	Use:           "almanacctl",
	Short:         "Operate the Solarpunk Almanac harvest pipeline",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	addPersistentFlags()
	registerCommands()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "config.yaml", "path to config file")
	pf.BoolVar(&flags.memory, "memory", false, "use in-memory stores (dry run)")
	pf.BoolVar(&flags.jsonOut, "json", false, "output JSON")
	pf.StringVar(&flags.logLevel, "log-level", "", "override log level (debug|info|warn|error)")
}

func registerCommands() {
	rootCmd.AddCommand(initSourcesCmd())
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(setActiveCmd("enable", true))
	rootCmd.AddCommand(setActiveCmd("disable", false))
	rootCmd.AddCommand(harvestCmd())
	rootCmd.AddCommand(harvestAllCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(queueCmd())
	rootCmd.AddCommand(moderateCmd("approve", domain.StatusApproved))
	rootCmd.AddCommand(moderateCmd("reject", domain.StatusRejected))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		if flags.memory && errors.Is(err, fs.ErrNotExist) {
			cfg = config.Default()
		} else {
			return nil, err
		}
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	return cfg, nil
}

// withApp opens the application for one command. In memory mode the
// built-in sources are loaded first so commands have something to act on.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.LogLevel)

	a, err := app.Open(cfg, app.Options{Memory: flags.memory}, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if flags.memory {
		if _, _, err := a.Harvest.InitializeSources(ctx, source.Definitions()); err != nil {
			return err
		}
	}

	return fn(ctx, a)
}

// setupLogger writes to stderr so tables and JSON on stdout stay clean.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
