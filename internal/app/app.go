// Package app is the explicit application context: it owns the
// collection store and the visualization driver, connects them to
// persistence and metrics, and carries the workflows a UI shell triggers
// (load on start, autosave, import/export files, visualize and apply).
//
// Nothing here is global. A host builds one App and passes it to whatever
// layer needs it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aanand-mishra/student-records/internal/codec"
	"github.com/aanand-mishra/student-records/internal/collection"
	"github.com/aanand-mishra/student-records/internal/metrics"
	"github.com/aanand-mishra/student-records/internal/search"
	"github.com/aanand-mishra/student-records/internal/sorting"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/visual"
)

// App wires the record manager together.
type App struct {
	Store  *collection.Store
	Driver *visual.Driver

	storage   storage.Storage
	log       *slog.Logger
	metrics   *metrics.Metrics
	validator *types.Validator
	pageSize  int
	delay     time.Duration
	observer  func(visual.Step)
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger shared by every component.
func WithLogger(log *slog.Logger) Option {
	return func(a *App) { a.log = log }
}

// WithMetrics records metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithValidator sets the validator used for sample data and imports.
func WithValidator(v *types.Validator) Option {
	return func(a *App) { a.validator = v }
}

// WithPageSize sets the collection page size.
func WithPageSize(n int) Option {
	return func(a *App) { a.pageSize = n }
}

// WithStepDelay sets the visualization inter-step delay.
func WithStepDelay(d time.Duration) Option {
	return func(a *App) { a.delay = d }
}

// WithObserver receives every visualization step.
func WithObserver(fn func(visual.Step)) Option {
	return func(a *App) { a.observer = fn }
}

// New builds an App persisting to st.
func New(st storage.Storage, opts ...Option) *App {
	a := &App{
		storage:   st,
		validator: types.DefaultValidator,
		pageSize:  collection.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = slog.Default()
	}

	a.Store = collection.New(
		collection.WithPageSize(a.pageSize),
		collection.WithLogger(a.log.With(slog.String("component", "collection"))),
		collection.WithMetrics(a.metrics),
		collection.WithValidator(a.validator),
		collection.WithClock(a.validator.Now),
	)

	driverOpts := []visual.Option{
		visual.WithDelay(a.delay),
		visual.WithLogger(a.log.With(slog.String("component", "visual"))),
		visual.WithMetrics(a.metrics),
	}
	if a.observer != nil {
		driverOpts = append(driverOpts, visual.WithObserver(a.observer))
	}
	a.Driver = visual.New(driverOpts...)

	return a
}

// Load restores the last saved snapshot and, when there is nothing to
// restore, seeds the sample students.
func (a *App) Load(ctx context.Context) error {
	records, err := a.storage.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("Load: %w", err)
	}

	report := a.Store.Restore(records)
	for _, e := range report.Errors {
		a.log.Warn("saved record rejected", slog.Int("item", e.Item), slog.String("error", e.Err.Error()))
	}

	if a.Store.Len() > 0 {
		return nil
	}
	n, err := a.SeedSamples()
	if err != nil {
		return fmt.Errorf("Load: %w", err)
	}
	a.log.Info("sample data loaded", slog.Int("records", n))
	return nil
}

// SeedSamples adds the sample students. Ids already present are skipped.
func (a *App) SeedSamples() (int, error) {
	added := 0
	for _, in := range SampleInputs() {
		st, err := a.validator.NewStudent(in)
		if err != nil {
			return added, fmt.Errorf("SeedSamples: %s: %w", in.ID, err)
		}
		if _, err := a.Store.Add(st); err != nil {
			continue
		}
		added++
	}
	return added, nil
}

// Persist saves the collection.
func (a *App) Persist(ctx context.Context) error {
	snapshot := a.Store.Snapshot()
	if err := a.storage.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("Persist: %w", err)
	}
	a.log.Debug("collection saved", slog.Int("records", len(snapshot)))
	return nil
}

// RunAutosave persists the collection every interval until ctx is done.
// A failed save is logged and retried on the next tick. A non-positive
// interval disables the ticker and just waits for ctx.
func (a *App) RunAutosave(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.Persist(ctx); err != nil {
				a.log.Warn("autosave failed", slog.String("error", err.Error()))
			}
		}
	}
}

// ImportFile imports the file at path, picking the format from its
// extension.
func (a *App) ImportFile(path string) (collection.ImportReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return collection.ImportReport{}, fmt.Errorf("ImportFile: read: %w", err)
	}
	report, err := a.Store.ImportFile(path, data)
	if err != nil {
		return report, fmt.Errorf("ImportFile: %w", err)
	}
	return report, nil
}

// ExportFile writes the collection to path in format f.
func (a *App) ExportFile(path string, f codec.Format) error {
	data, err := a.Store.Export(f)
	if err != nil {
		return fmt.Errorf("ExportFile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ExportFile: write: %w", err)
	}
	a.log.Info("collection exported",
		slog.String("path", path),
		slog.String("format", string(f)),
		slog.String("content_type", f.MIMEType()),
	)
	return nil
}

// VisualizeSort replays alg over the current collection and, when the run
// completes, installs the sorted order exactly as Store.Sort would. A
// stopped or cancelled run leaves the collection as it was.
func (a *App) VisualizeSort(ctx context.Context, alg sorting.Algorithm, field string, ascending bool) (visual.Outcome, error) {
	out, err := a.Driver.Sort(ctx, alg, a.Store.All(), field, ascending)
	if err != nil {
		return out, fmt.Errorf("VisualizeSort: %w", err)
	}
	if err := a.Store.ApplySort(alg, field, ascending, out.Records, out.Comparisons, out.Swaps); err != nil {
		return out, fmt.Errorf("VisualizeSort: %w", err)
	}
	return out, nil
}

// VisualizeSearch replays alg over the current collection and makes the
// matches the active search view.
func (a *App) VisualizeSearch(ctx context.Context, alg search.Algorithm, query, field string) (visual.Outcome, error) {
	out, err := a.Driver.Search(ctx, alg, a.Store.All(), query, field)
	if err != nil {
		return out, fmt.Errorf("VisualizeSearch: %w", err)
	}
	if search.Normalize(query) == "" {
		a.Store.ClearSearch()
		return out, nil
	}
	a.Store.SetSearchView(search.Result{Matches: out.Matches}.Records())
	return out, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.storage.Close()
}
