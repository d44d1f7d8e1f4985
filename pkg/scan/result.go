package scan

import (
	"github.com/chazu/meshlint/pkg/lint"
	"github.com/chazu/meshlint/pkg/scene"
)

// ObjectResult is the outcome of visiting one object.
type ObjectResult struct {
	Object  *scene.Object
	Outcome Outcome
	Report  *lint.Report // nil unless the object was evaluated
	Err     error        // set when Outcome is Errored
}

// Result is the product of one scan. Results are in visit order: the active
// object first, then the rest in scene order. Objects a scan never reached
// are absent.
type Result struct {
	Mode    Mode
	State   State
	Objects []ObjectResult

	// Target is the object whose flagged elements should become the
	// selection, set when a stop-at-first-lint scan found lint.
	Target    *scene.Object
	Selection lint.Selection

	// Cancelled is set when the scan stopped because its context ended.
	Cancelled bool
}

// Visited returns the number of objects the scan reached.
func (r *Result) Visited() int {
	return len(r.Objects)
}

func (r *Result) filter(o Outcome) []*scene.Object {
	var out []*scene.Object
	for _, or := range r.Objects {
		if or.Outcome == o {
			out = append(out, or.Object)
		}
	}
	return out
}

// LintFree returns the objects whose report was empty, for the caller to
// deselect. It is a filter over the existing reports and never re-scans.
// Errored and skipped objects are not lint-free.
func (r *Result) LintFree() []*scene.Object {
	return r.filter(LintFree)
}

// WithLint returns the objects whose report flagged something.
func (r *Result) WithLint() []*scene.Object {
	return r.filter(HasLint)
}

// Errored returns the objects whose evaluation failed, with their errors.
func (r *Result) Errored() []ObjectResult {
	var out []ObjectResult
	for _, or := range r.Objects {
		if or.Outcome == Errored {
			out = append(out, or)
		}
	}
	return out
}

// Reports returns the reports of every evaluated object in visit order.
func (r *Result) Reports() []*lint.Report {
	var out []*lint.Report
	for _, or := range r.Objects {
		if or.Report != nil {
			out = append(out, or.Report)
		}
	}
	return out
}

// Summary totals the reports of the scan.
func (r *Result) Summary() lint.Summary {
	return lint.Summarize(r.Reports())
}
