// Package app is the application facade shared by the CLI commands. It
// loads scenes from YAML or scene source, runs scans, and returns
// JSON-serializable results.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/chazu/meshlint/pkg/engine"
	"github.com/chazu/meshlint/pkg/kernel"
	"github.com/chazu/meshlint/pkg/kernel/sdfx"
	"github.com/chazu/meshlint/pkg/lint"
	"github.com/chazu/meshlint/pkg/logging"
	"github.com/chazu/meshlint/pkg/metrics"
	"github.com/chazu/meshlint/pkg/scan"
	"github.com/chazu/meshlint/pkg/scene"
)

// App wires the scene engine, the geometry kernel and the scan
// orchestrator together.
type App struct {
	engine       *engine.Engine
	kernel       kernel.Kernel
	analyzer     *lint.Analyzer
	orchestrator *scan.Orchestrator
	logger       *log.Logger
	metrics      *metrics.Metrics
}

// Options configures an App. Zero values mean defaults.
type Options struct {
	Lint      *lint.Config
	MeshCells int
	Workers   int
	Logger    *log.Logger
	Metrics   *metrics.Metrics
}

// ErrorData is a JSON-serializable evaluation or load error.
type ErrorData struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Message string `json:"message"`
}

// ObjectData is the outcome for one visited object.
type ObjectData struct {
	Name    string       `json:"name"`
	ID      string       `json:"id"`
	Outcome string       `json:"outcome"`
	Report  *lint.Report `json:"report,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// LintResult is the full result of linting one scene.
type LintResult struct {
	Source     string          `json:"source,omitempty"`
	Mode       string          `json:"mode"`
	State      string          `json:"state"`
	Objects    []ObjectData    `json:"objects"`
	Target     string          `json:"target,omitempty"`
	Selection  *lint.Selection `json:"selection,omitempty"`
	LintFree   []string        `json:"lint_free"`
	Summary    lint.Summary    `json:"summary"`
	Criticisms []string        `json:"criticisms,omitempty"`
	Errors     []ErrorData     `json:"errors,omitempty"`
	Cancelled  bool            `json:"cancelled,omitempty"`
}

// HasLint reports whether any object was flagged or failed to evaluate,
// or the scene itself could not be loaded.
func (r LintResult) HasLint() bool {
	if len(r.Errors) > 0 {
		return true
	}
	for _, o := range r.Objects {
		if o.Outcome == scan.HasLint.String() || o.Outcome == scan.Errored.String() {
			return true
		}
	}
	return false
}

// New creates an App with the sdfx kernel.
func New(opts Options) *App {
	k := sdfx.NewWithCells(opts.MeshCells)
	analyzer := lint.NewAnalyzer(opts.Lint)
	logger := logging.OrDiscard(opts.Logger)
	return &App{
		engine:   engine.NewEngine(k),
		kernel:   k,
		analyzer: analyzer,
		orchestrator: scan.New(analyzer,
			scan.WithLogger(logger),
			scan.WithMetrics(opts.Metrics),
			scan.WithWorkers(opts.Workers),
		),
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// Analyzer returns the analyzer the App scans with.
func (a *App) Analyzer() *lint.Analyzer {
	return a.analyzer
}

// NewChecker creates a continuous-mode checker sharing the App's analyzer,
// logger and metrics.
func (a *App) NewChecker(size int) (*scan.Checker, error) {
	return scan.NewChecker(a.analyzer, size, scan.WithLogger(a.logger), scan.WithMetrics(a.metrics))
}

// isYAML reports whether path names a YAML scene file.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadScene reads a scene from path. YAML files are decoded directly; any
// other file is evaluated as scene source. Source errors are returned as
// ErrorData with a nil error; the error return is for I/O and fatal
// evaluation failures.
func (a *App) LoadScene(path string) (*scene.Scene, []ErrorData, error) {
	if isYAML(path) {
		sc, err := scene.LoadYAMLFile(path)
		if err != nil {
			return nil, nil, err
		}
		return sc, nil, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading scene %s: %w", path, err)
	}
	return a.evaluate(string(src))
}

func (a *App) evaluate(source string) (*scene.Scene, []ErrorData, error) {
	sc, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		return nil, nil, err
	}
	if len(evalErrs) > 0 {
		out := make([]ErrorData, 0, len(evalErrs))
		for _, e := range evalErrs {
			out = append(out, ErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return nil, out, nil
	}
	return sc, nil, nil
}

// Evaluate takes scene source and lints the resulting scene. Failures are
// folded into the result's Errors so callers always get a result.
func (a *App) Evaluate(ctx context.Context, source string, mode scan.Mode) LintResult {
	sc, errs, err := a.evaluate(source)
	if err != nil {
		a.logger.Error("evaluation failed", "err", err)
		return LintResult{Mode: mode.String(), State: scan.Idle.String(), Errors: []ErrorData{{Message: err.Error()}}}
	}
	if len(errs) > 0 {
		return LintResult{Mode: mode.String(), State: scan.Idle.String(), Errors: errs}
	}
	res, err := a.Lint(ctx, sc, mode)
	if err != nil {
		res.Errors = append(res.Errors, ErrorData{Message: err.Error()})
	}
	return res
}

// LintFile loads the scene at path and lints it. Source errors come back
// in the result with a nil error.
func (a *App) LintFile(ctx context.Context, path string, mode scan.Mode) (LintResult, error) {
	sc, errs, err := a.LoadScene(path)
	if err != nil {
		return LintResult{Source: path, Mode: mode.String(), State: scan.Idle.String()}, err
	}
	if len(errs) > 0 {
		return LintResult{Source: path, Mode: mode.String(), State: scan.Idle.String(), Errors: errs}, nil
	}
	res, err := a.Lint(ctx, sc, mode)
	res.Source = path
	return res, err
}

// Lint scans a scene. The result is filled in even when the scan stops
// with an error, covering the objects visited so far.
func (a *App) Lint(ctx context.Context, sc *scene.Scene, mode scan.Mode) (LintResult, error) {
	res, err := a.orchestrator.Scan(ctx, sc, mode)
	out := convert(res)
	if err != nil {
		a.logger.Warn("scan stopped", "mode", mode, "err", err)
	}
	return out, err
}

// convert flattens a scan result into its serializable form.
func convert(res *scan.Result) LintResult {
	out := LintResult{
		Mode:     res.Mode.String(),
		State:    res.State.String(),
		Objects:  make([]ObjectData, 0, len(res.Objects)),
		LintFree: []string{},
		Summary:  res.Summary(),
	}
	for _, or := range res.Objects {
		od := ObjectData{
			Name:    or.Object.Name,
			ID:      or.Object.ID,
			Outcome: or.Outcome.String(),
			Report:  or.Report,
		}
		if or.Err != nil {
			od.Error = or.Err.Error()
		}
		out.Objects = append(out.Objects, od)
	}
	for _, o := range res.LintFree() {
		out.LintFree = append(out.LintFree, o.Name)
	}
	if res.Target != nil {
		out.Target = res.Target.Name
		sel := res.Selection
		out.Selection = &sel
	}
	out.Criticisms = lint.Criticisms(res.Reports())
	out.Cancelled = res.Cancelled
	return out
}
