// main is the entry point of the student records host.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger and the metrics registry
//  3. Open the SQLite snapshot store
//  4. Restore the last saved collection (or seed the sample students)
//  5. Optionally import a file
//  6. Run the autosave loop and the configured visualization concurrently
//  7. Block until an OS signal (Ctrl+C / kill) arrives
//  8. Save, export and write metrics one last time, then exit
//
// RUNNING:
//
//	go run ./cmd/students-records --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/students-records
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/aanand-mishra/student-records/internal/app"
	"github.com/aanand-mishra/student-records/internal/codec"
	"github.com/aanand-mishra/student-records/internal/collection"
	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/metrics"
	"github.com/aanand-mishra/student-records/internal/search"
	"github.com/aanand-mishra/student-records/internal/sorting"
	"github.com/aanand-mishra/student-records/internal/storage/sqlite"
	"github.com/aanand-mishra/student-records/internal/visual"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Logger and metrics ─────────────────────────────────────────────
	log := setupLogger(cfg.Env, os.Stdout)

	log.Info("starting student-records",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		log.Error("failed to initialise metrics", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// ── 3. Storage ────────────────────────────────────────────────────────
	storage, err := sqlite.New(cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised",
		slog.String("path", cfg.StoragePath))

	application := app.New(storage,
		app.WithLogger(log),
		app.WithMetrics(m),
		app.WithPageSize(cfg.Collection.PageSize),
		app.WithStepDelay(cfg.Visualizer.StepDelay),
		app.WithObserver(func(s visual.Step) {
			log.Debug("step",
				slog.Int("seq", s.Seq),
				slog.String("kind", string(s.Kind)),
				slog.Int("i", s.I),
				slog.Int("j", s.J),
			)
		}),
	)
	defer application.Close()

	// ── 4. Restore ────────────────────────────────────────────────────────
	// signal.NotifyContext cancels ctx on Ctrl+C (SIGINT) or SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Load(ctx); err != nil {
		log.Error("failed to load collection", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// ── 5. Optional import ────────────────────────────────────────────────
	if cfg.Import.Path != "" {
		report, err := application.ImportFile(cfg.Import.Path)
		if err != nil {
			log.Error("import failed",
				slog.String("path", cfg.Import.Path),
				slog.String("error", err.Error()))
		} else if report.Failed > 0 {
			log.Warn("import finished with rejected records",
				slog.Int("succeeded", report.Succeeded),
				slog.Int("failed", report.Failed),
				slog.String("errors", report.Err().Error()))
		}
	}

	stats := application.Store.Stats()
	log.Info("collection ready",
		slog.Int("records", stats.TotalRecords),
		slog.Int("programs", stats.DistinctPrograms),
		slog.Int("avg_enrollment_year", stats.AverageEnrollmentYear),
	)

	// ── 6. Autosave + visualization ───────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return application.RunAutosave(gctx, cfg.Autosave.Interval)
	})

	if cfg.Visualizer.Algorithm != "" {
		g.Go(func() error {
			visualize(gctx, log, application, cfg.Visualizer)
			return nil
		})
	}

	// ── 7. Wait for Shutdown Signal ───────────────────────────────────────
	if err := g.Wait(); err != nil {
		log.Error("background task failed", slog.String("error", err.Error()))
	}

	log.Info("shutdown signal received, saving...")

	// ── 8. Final save ─────────────────────────────────────────────────────
	// ctx is already cancelled; the final save gets its own deadline.
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := application.Persist(saveCtx); err != nil {
		log.Error("failed to save collection", slog.String("error", err.Error()))
	}

	if cfg.Export.Path != "" {
		format, err := codec.ParseFormat(cfg.Export.Format)
		if err == nil {
			err = application.ExportFile(cfg.Export.Path, format)
		}
		if err != nil {
			log.Error("export failed", slog.String("error", err.Error()))
		}
	}

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, registry); err != nil {
			log.Error("failed to write metrics", slog.String("error", err.Error()))
		}
	}

	log.Info("stopped gracefully")
}

// visualize runs the configured sort or search visualization once. An
// algorithm name is tried as a sort first, then as a search.
func visualize(ctx context.Context, log *slog.Logger, a *app.App, cfg config.Visualizer) {
	var (
		out visual.Outcome
		err error
	)

	if alg, perr := sorting.ParseAlgorithm(cfg.Algorithm); perr == nil {
		out, err = a.VisualizeSort(ctx, alg, cfg.Field, !cfg.Descending)
	} else if alg, perr := search.ParseAlgorithm(cfg.Algorithm); perr == nil {
		out, err = a.VisualizeSearch(ctx, alg, cfg.Query, cfg.Field)
	} else {
		log.Error("unknown visualization algorithm", slog.String("algorithm", cfg.Algorithm))
		return
	}

	switch {
	case errors.Is(err, visual.ErrNotAvailable):
		log.Warn("visualization not available", slog.String("algorithm", cfg.Algorithm))
	case errors.Is(err, collection.ErrStaleSort):
		log.Warn("collection changed during visualization, sort not applied")
	case errors.Is(err, context.Canceled), errors.Is(err, visual.ErrStopped):
		log.Info("visualization interrupted", slog.Int("steps", out.Steps))
	case err != nil:
		log.Error("visualization failed", slog.String("error", err.Error()))
	default:
		log.Info("visualization applied",
			slog.String("run_id", out.RunID),
			slog.Int("comparisons", out.Comparisons),
			slog.Int("swaps", out.Swaps),
		)
	}
}

// setupLogger builds the logger for env, writing to w. prod logs JSON at
// info level, staging logs JSON at debug level, and dev (or any unknown
// env) logs text at debug level.
func setupLogger(env string, w io.Writer) *slog.Logger {
	var handler slog.Handler
	switch env {
	case "prod":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	case "staging":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(handler).With(slog.String("service", "student-records"))
}
