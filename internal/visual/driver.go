// Package visual replays search and sort algorithms as a sequence of
// discrete steps that a renderer can animate.
//
// Each algorithm is a step generator (an iter.Seq[Step]) that performs
// the algorithm on a working copy and yields after every comparison,
// swap, settle or probe. The Driver pulls steps one at a time, waits out
// the configured inter-step delay, honors pause/resume/reset between
// steps, and hands every step to the observer.
//
// The comparison and swap totals of a completed run equal the totals the
// sorting and search engines report for the same input.
package visual

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/aanand-mishra/student-records/internal/metrics"
	"github.com/aanand-mishra/student-records/internal/search"
	"github.com/aanand-mishra/student-records/internal/sorting"
	"github.com/aanand-mishra/student-records/internal/types"
)

var (
	// ErrNotAvailable is matched (errors.Is) by every UnsupportedError.
	ErrNotAvailable = errors.New("visualization not available")

	// ErrStopped is returned by a run that was cancelled with Reset.
	ErrStopped = errors.New("visualization stopped")

	// ErrBusy is returned when a run is requested while another is
	// running or paused.
	ErrBusy = errors.New("visualization already in progress")
)

// UnsupportedError names an algorithm that has no step generator.
type UnsupportedError struct {
	Algorithm string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("visualization not available for %q", e.Algorithm)
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrNotAvailable
}

// State is the driver's lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Paused
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Stats are the counters of the current (or last) run.
type Stats struct {
	Comparisons int
	Swaps       int
	Steps       int
}

// Outcome is what a run produced. After a cancelled run it holds the
// partial state reached so far.
type Outcome struct {
	RunID       string
	Records     []types.Student
	Matches     []search.Match
	Comparisons int
	Swaps       int
	Steps       int
}

// Option configures a Driver.
type Option func(*Driver)

// WithObserver registers fn to receive every emitted step. fn runs on the
// run's goroutine and may call Pause, Resume or Reset.
func WithObserver(fn func(Step)) Option {
	return func(d *Driver) { d.observer = fn }
}

// WithDelay sets the minimum time between two steps. Zero means no delay.
func WithDelay(delay time.Duration) Option {
	return func(d *Driver) { d.delay = delay }
}

// WithLogger sets the driver's logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Driver) { d.log = log }
}

// WithMetrics records step and run metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// Driver runs one visualization at a time.
type Driver struct {
	observer func(Step)
	log      *slog.Logger
	metrics  *metrics.Metrics
	limiter  *rate.Limiter

	mu      sync.Mutex
	delay   time.Duration
	state   State
	gen     uint64        // bumped by every run start and Reset
	cancel  func()        // cancels the current run's context
	wake    chan struct{} // closed by Resume
	runID   string
	stats   Stats
	history []Step
}

// New returns an idle Driver.
func New(opts ...Option) *Driver {
	d := &Driver{}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	d.limiter = rate.NewLimiter(limitFor(d.delay), 1)
	return d
}

func limitFor(delay time.Duration) rate.Limit {
	if delay <= 0 {
		return rate.Inf
	}
	return rate.Every(delay)
}

// SetDelay changes the inter-step delay, also for a run in progress.
func (d *Driver) SetDelay(delay time.Duration) {
	d.mu.Lock()
	d.delay = delay
	d.mu.Unlock()
	d.limiter.SetLimit(limitFor(delay))
}

// Delay returns the current inter-step delay.
func (d *Driver) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}

// State returns the current lifecycle state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Stats returns the counters of the current or last run.
func (d *Driver) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// History returns a copy of every step emitted by the current or last
// run.
func (d *Driver) History() []Step {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Step, len(d.history))
	copy(out, d.history)
	return out
}

// Pause suspends a running visualization before its next step. It
// reports whether the state changed.
func (d *Driver) Pause() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Running {
		return false
	}
	d.state = Paused
	d.wake = make(chan struct{})
	d.log.Debug("visualization paused", slog.String("run_id", d.runID))
	return true
}

// Resume continues a paused visualization. It reports whether the state
// changed.
func (d *Driver) Resume() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Paused {
		return false
	}
	d.state = Running
	close(d.wake)
	d.log.Debug("visualization resumed", slog.String("run_id", d.runID))
	return true
}

// Reset stops any run in progress and returns the driver to Idle with
// cleared counters and history. The stopped run returns ErrStopped.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.state == Running || d.state == Paused {
		d.log.Info("visualization reset", slog.String("run_id", d.runID))
	}
	d.gen++
	d.state = Idle
	d.stats = Stats{}
	d.history = nil
	d.runID = ""
}

// Sort visualizes a sort of records by field. Bubble and selection sort
// have step generators; other algorithms return an UnsupportedError.
// records is never modified; the sorted copy is in Outcome.Records.
func (d *Driver) Sort(ctx context.Context, alg sorting.Algorithm, records []types.Student, field string, ascending bool) (Outcome, error) {
	keys, err := sorting.Keys(records, field)
	if err != nil {
		return Outcome{}, fmt.Errorf("visual.Sort: %w", err)
	}

	work := &sortWork{
		records: append([]types.Student(nil), records...),
		keys:    keys,
		asc:     ascending,
	}

	var steps iter.Seq[Step]
	switch alg {
	case sorting.Bubble:
		steps = bubbleSteps(work)
	case sorting.Selection:
		steps = selectionSteps(work)
	default:
		return Outcome{}, &UnsupportedError{Algorithm: string(alg)}
	}

	start := time.Now()
	out, err := d.run(ctx, string(alg), steps)
	out.Records = work.records
	if err != nil {
		return out, err
	}
	d.metrics.ObserveSort(string(alg), out.Comparisons, out.Swaps, time.Since(start))
	return out, nil
}

// Search visualizes a search. All three search algorithms have step
// generators. The searched collection is returned unchanged in
// Outcome.Records.
func (d *Driver) Search(ctx context.Context, alg search.Algorithm, records []types.Student, query, field string) (Outcome, error) {
	if err := search.CheckField(field); err != nil {
		return Outcome{}, fmt.Errorf("visual.Search: %w", err)
	}

	work := &searchWork{
		records: records,
		query:   query,
		field:   field,
		matches: []search.Match{},
	}

	var steps iter.Seq[Step]
	switch alg {
	case search.Linear:
		steps = linearSteps(work)
	case search.Binary:
		steps = binarySteps(work)
	case search.Sequential:
		steps = sequentialSteps(work)
	default:
		return Outcome{}, &UnsupportedError{Algorithm: string(alg)}
	}

	start := time.Now()
	out, err := d.run(ctx, string(alg), steps)
	out.Records = records
	out.Matches = work.matches
	if err != nil {
		return out, err
	}
	d.metrics.ObserveSearch(string(alg), out.Comparisons, time.Since(start))
	return out, nil
}

// run drives steps to completion, cancellation or reset.
func (d *Driver) run(ctx context.Context, alg string, steps iter.Seq[Step]) (Outcome, error) {
	d.mu.Lock()
	if d.state == Running || d.state == Paused {
		d.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	d.gen++
	gen := d.gen
	d.cancel = cancel
	d.state = Running
	d.stats = Stats{}
	d.history = nil
	d.runID = uuid.NewString()
	runID := d.runID
	d.mu.Unlock()
	defer cancel()

	d.log.Info("visualization started",
		slog.String("run_id", runID),
		slog.String("algorithm", alg),
	)

	out := Outcome{RunID: runID}
	for step := range steps {
		if err := d.limiter.Wait(ctx); err != nil {
			return out, d.stopped(ctx, gen, err)
		}
		if err := d.gate(ctx, gen); err != nil {
			return out, err
		}

		step.RunID = runID
		if !d.record(gen, &step, &out) {
			return out, ErrStopped
		}
		d.metrics.ObserveStep(string(step.Kind))
		if d.observer != nil {
			d.observer(step)
		}
	}

	d.mu.Lock()
	if d.gen == gen {
		d.state = Completed
		d.cancel = nil
	}
	d.mu.Unlock()

	d.log.Info("visualization completed",
		slog.String("run_id", runID),
		slog.String("algorithm", alg),
		slog.Int("comparisons", out.Comparisons),
		slog.Int("swaps", out.Swaps),
		slog.Int("steps", out.Steps),
	)
	return out, nil
}

// gate blocks while the driver is paused.
func (d *Driver) gate(ctx context.Context, gen uint64) error {
	for {
		d.mu.Lock()
		if d.gen != gen {
			d.mu.Unlock()
			return ErrStopped
		}
		if d.state != Paused {
			d.mu.Unlock()
			return nil
		}
		wake := d.wake
		d.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return d.stopped(ctx, gen, ctx.Err())
		}
	}
}

// record counts step against run gen. It reports false if the run has
// been reset in the meantime.
func (d *Driver) record(gen uint64, step *Step, out *Outcome) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen != gen {
		return false
	}

	d.stats.Steps++
	step.Seq = d.stats.Steps
	switch step.Kind {
	case StepCompare, StepProbe:
		d.stats.Comparisons++
	case StepSwap:
		d.stats.Swaps++
	}
	d.history = append(d.history, *step)

	out.Comparisons = d.stats.Comparisons
	out.Swaps = d.stats.Swaps
	out.Steps = d.stats.Steps
	return true
}

// stopped classifies why run gen ended early and moves the driver back to
// Idle if nobody else has claimed it.
func (d *Driver) stopped(ctx context.Context, gen uint64, cause error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen != gen {
		return ErrStopped
	}
	d.state = Idle
	d.cancel = nil
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("visual: wait: %w", cause)
}
