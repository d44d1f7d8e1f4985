// Package scan drives lint evaluation across a scene. The Orchestrator visits
// objects active-first and either stops at the first object with lint or
// sweeps the whole scene; the Checker serves continuous mode, re-evaluating
// one object on demand and announcing what got worse.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/meshlint/pkg/lint"
	"github.com/chazu/meshlint/pkg/logging"
	"github.com/chazu/meshlint/pkg/metrics"
	"github.com/chazu/meshlint/pkg/scene"
)

// ErrScanInProgress is returned when Scan is called while another scan on the
// same orchestrator is running.
var ErrScanInProgress = errors.New("scan already in progress")

type settings struct {
	logger  *log.Logger
	metrics *metrics.Metrics
	workers int
}

// Option configures an Orchestrator or a Checker.
type Option func(*settings)

// WithLogger sets the logger. Per-object outcomes are logged at debug,
// errored objects at warn.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithMetrics records evaluations and scans on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithWorkers lets full sweeps evaluate up to n objects at once. Each
// evaluation builds its own index from its own snapshot, so objects are
// independent. Stop-at-first-lint scans are always sequential.
func WithWorkers(n int) Option {
	return func(s *settings) { s.workers = n }
}

func newSettings(opts []Option) settings {
	s := settings{workers: 1}
	for _, opt := range opts {
		opt(&s)
	}
	s.logger = logging.OrDiscard(s.logger)
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// Orchestrator runs scans over scenes.
type Orchestrator struct {
	analyzer *lint.Analyzer
	settings

	mu      sync.Mutex
	state   State
	running bool
}

// New creates an orchestrator. A nil analyzer uses the default configuration.
func New(analyzer *lint.Analyzer, opts ...Option) *Orchestrator {
	if analyzer == nil {
		analyzer = lint.NewAnalyzer(nil)
	}
	return &Orchestrator{
		analyzer: analyzer,
		settings: newSettings(opts),
		state:    Idle,
	}
}

// State returns the current state. After a scan it holds the scan's
// terminal state until the next scan begins.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Scan visits the scene's objects, active object first, and evaluates each
// one to completion. Cancellation is checked between objects only.
//
// In StopAtFirstLint mode the scan ends in FoundFirstLint on the first object
// with lint, whose selection is returned in the result; an object that fails
// to evaluate halts the scan with its error. In FullSweep mode every object is
// visited, errored objects are recorded and the scan continues.
//
// The returned result is never nil; it holds whatever was visited even when
// an error (cancellation or a halting evaluation failure) is returned.
func (o *Orchestrator) Scan(ctx context.Context, sc *scene.Scene, mode Mode) (*Result, error) {
	res := &Result{Mode: mode, State: Complete}
	if sc == nil {
		sc = scene.New()
	}

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		res.State = o.State()
		return res, ErrScanInProgress
	}
	o.running = true
	o.state = ScanningWholeScene
	o.mu.Unlock()

	o.metrics.ScanStarted()
	o.logger.Debug("scan started", "mode", mode, "objects", sc.Len())

	var err error
	if mode == FullSweep && o.workers > 1 {
		err = o.sweepParallel(ctx, sc.ScanOrder(), res)
	} else {
		err = o.scanSequential(ctx, sc.ScanOrder(), res)
	}

	o.mu.Lock()
	o.state = res.State
	o.running = false
	o.mu.Unlock()

	o.metrics.ScanFinished(mode.String(), res.State.String())
	o.logger.Debug("scan finished", "state", res.State, "visited", res.Visited(), "cancelled", res.Cancelled)
	return res, err
}

func (o *Orchestrator) scanSequential(ctx context.Context, order []*scene.Object, res *Result) error {
	for _, obj := range order {
		if err := ctx.Err(); err != nil {
			res.Cancelled = true
			return err
		}

		or := o.visit(obj)
		res.Objects = append(res.Objects, or)

		if res.Mode != StopAtFirstLint {
			continue
		}
		switch or.Outcome {
		case HasLint:
			res.State = FoundFirstLint
			res.Target = obj
			res.Selection = or.Report.Selection
			return nil
		case Errored:
			return fmt.Errorf("scan halted at %s: %w", obj, or.Err)
		}
	}
	return nil
}

// sweepParallel evaluates objects with bounded parallelism. Results keep
// visit order; objects never started because of cancellation are dropped.
func (o *Orchestrator) sweepParallel(ctx context.Context, order []*scene.Object, res *Result) error {
	results := make([]ObjectResult, len(order))
	started := make([]bool, len(order))

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i, obj := range order {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			started[i] = true
			results[i] = o.visit(obj)
			return nil
		})
	}
	_ = g.Wait()

	for i := range order {
		if started[i] {
			res.Objects = append(res.Objects, results[i])
		}
	}
	if err := ctx.Err(); err != nil && res.Visited() < len(order) {
		res.Cancelled = true
		return err
	}
	return nil
}

// visit evaluates one object to completion.
func (o *Orchestrator) visit(obj *scene.Object) ObjectResult {
	if !obj.IsMesh() {
		o.logger.Debug("skipping non-mesh object", "object", obj.Name)
		o.metrics.ObserveEvaluation(Skipped.String(), 0, nil)
		return ObjectResult{Object: obj, Outcome: Skipped}
	}

	start := time.Now()
	report, err := o.analyzer.Evaluate(obj)
	elapsed := time.Since(start)
	if err != nil {
		o.logger.Warn("object could not be evaluated", "object", obj.Name, "err", err)
		o.metrics.ObserveEvaluation(Errored.String(), elapsed, nil)
		return ObjectResult{Object: obj, Outcome: Errored, Err: err}
	}

	outcome := LintFree
	if !report.IsEmpty() {
		outcome = HasLint
	}
	o.logger.Debug("evaluated object", "object", obj.Name, "outcome", outcome, "total", report.Total, "took", elapsed)
	o.metrics.ObserveEvaluation(outcome.String(), elapsed, flaggedByCheck(report))
	return ObjectResult{Object: obj, Outcome: outcome, Report: report}
}

// Reevaluate evaluates a single object now and returns a fresh report. It has
// no timer and keeps no state; calling it twice on an unchanged object yields
// identical reports.
func (o *Orchestrator) Reevaluate(obj *scene.Object) (*lint.Report, error) {
	if obj == nil {
		return nil, fmt.Errorf("reevaluate: nil object")
	}
	or := o.visit(obj)
	switch or.Outcome {
	case Skipped:
		return nil, fmt.Errorf("reevaluate %s: %w", obj, lint.ErrNoMesh)
	case Errored:
		return nil, or.Err
	}
	return or.Report, nil
}

func flaggedByCheck(r *lint.Report) map[string]int {
	out := make(map[string]int, len(r.Results))
	for _, res := range r.Results {
		out[res.CheckID] = res.Count
	}
	return out
}
