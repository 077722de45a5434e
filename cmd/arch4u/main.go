package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"arch4u/internal/app"
	"arch4u/internal/config"
	"arch4u/internal/history"
	"arch4u/internal/report"
	"arch4u/internal/shared/util"
	"arch4u/internal/watcher"
)

var (
	configPath = flag.String("config", "./arch4u.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single analysis and exit")
	watch      = flag.Bool("watch", false, "Re-run analysis when sources change")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("arch4u v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(2)
	}

	var store *history.Store
	if cfg.History.Path != "" {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			log.Error("failed to open history store", "path", cfg.History.Path, "error", err)
			os.Exit(2)
		}
		defer store.Close()
	}

	if cfg.Metrics.Listen != "" {
		go serveMetrics(log, cfg.Metrics.Listen)
	}

	analyzer, err := app.NewAnalyzer(cfg, log, store)
	if err != nil {
		log.Error("failed to initialise analyzer", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runAndRender(ctx, analyzer, cfg, log)
	if err != nil {
		log.Error("analysis failed", "error", err)
		os.Exit(2)
	}

	if *once || !*watch {
		if len(result.Violations) > 0 {
			os.Exit(1)
		}
		return
	}

	w, err := watcher.NewWatcher(cfg.Watch.Debounce, cfg.Exclude.Dirs, cfg.Exclude.Files, func(paths []string) {
		log.Info("sources changed, re-analyzing", "changed", len(paths))
		if _, err := runAndRender(ctx, analyzer, cfg, log); err != nil {
			log.Error("analysis failed", "error", err)
		}
	})
	if err != nil {
		log.Error("failed to start watcher", "error", err)
		os.Exit(2)
	}
	defer w.Close()

	if err := w.Watch(cfg.ScanPaths); err != nil {
		log.Error("failed to watch paths", "error", err)
		os.Exit(2)
	}

	<-ctx.Done()
	log.Info("shutting down")
}

func runAndRender(ctx context.Context, analyzer *app.Analyzer, cfg *config.Config, log *slog.Logger) (*app.RunResult, error) {
	result, err := analyzer.Run(ctx)
	if err != nil {
		return nil, err
	}

	for _, v := range result.Violations {
		log.Warn("violation",
			"rule", v.Rule,
			"file", v.Location.File,
			"line", v.Location.Line,
			"type", v.TargetType,
			"method", v.Method,
		)
	}

	projectRoot, _ := os.Getwd()

	if cfg.Output.SARIF != "" {
		data, err := report.GenerateSARIF(projectRoot, result.Violations)
		if err != nil {
			return nil, err
		}
		if err := util.WriteFileWithDirs(cfg.Output.SARIF, data, 0o644); err != nil {
			return nil, err
		}
		log.Debug("wrote SARIF report", "path", cfg.Output.SARIF)
	}

	if cfg.Output.TSV != "" {
		tsv, err := report.NewTSVGenerator(result.Violations).Generate()
		if err != nil {
			return nil, err
		}
		if err := util.WriteFileWithDirs(cfg.Output.TSV, []byte(tsv), 0o644); err != nil {
			return nil, err
		}
		log.Debug("wrote TSV report", "path", cfg.Output.TSV)
	}

	return result, nil
}

func serveMetrics(log *slog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server stopped", "error", err)
	}
}
