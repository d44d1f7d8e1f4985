package lint

import (
	"errors"
	"fmt"

	"github.com/chazu/meshlint/pkg/mesh"
	"github.com/chazu/meshlint/pkg/scene"
	"github.com/chazu/meshlint/pkg/topology"
)

// ErrNoMesh is returned when asked to evaluate an object without mesh data.
var ErrNoMesh = errors.New("object has no mesh data")

// WarnEmptyMesh is the warning code for an object whose mesh has no faces.
const WarnEmptyMesh = "EMPTY_MESH"

// Warning is an advisory note attached to a report. It never affects counts.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// Result is the outcome of one check on one object.
type Result struct {
	CheckID string  `json:"check"`
	Label   string  `json:"label"`
	Finding Finding `json:"finding"`
	Count   int     `json:"count"`
}

// Report is the lint report for one object. Reports are immutable once
// produced; a re-scan builds a new one.
type Report struct {
	ObjectID string `json:"object_id"`
	Object   string `json:"object"`

	// Results holds one entry per enabled check, in canonical check order.
	Results []Result `json:"results"`

	// Selection is the union of every flagged element.
	Selection Selection `json:"selection"`

	// Total is the sum of the per-check counts. An element flagged by two
	// checks counts twice.
	Total int `json:"total"`

	Counts      mesh.Counts `json:"counts"`
	Warnings    []Warning   `json:"warnings,omitempty"`
	Fingerprint uint64      `json:"fingerprint"`
}

// IsEmpty reports whether nothing was flagged.
func (r *Report) IsEmpty() bool {
	return r == nil || r.Total == 0
}

// Result returns the result of the given check, if it ran.
func (r *Report) Result(checkID string) (Result, bool) {
	if r == nil {
		return Result{}, false
	}
	for _, res := range r.Results {
		if res.CheckID == checkID {
			return res, true
		}
	}
	return Result{}, false
}

// Flagged reports whether the given check ran and flagged anything.
func (r *Report) Flagged(checkID string) bool {
	res, ok := r.Result(checkID)
	return ok && res.Count > 0
}

// GeometryTotal is the number of flagged mesh elements across geometry checks.
func (r *Report) GeometryTotal() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, res := range r.Results {
		if chk, ok := Lookup(res.CheckID); ok && chk.Scope == ScopeGeometry {
			n += res.Count
		}
	}
	return n
}

// Analyzer runs the enabled checks against objects.
type Analyzer struct {
	config *Config
}

// NewAnalyzer creates an analyzer. A nil config means DefaultConfig.
func NewAnalyzer(config *Config) *Analyzer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Analyzer{config: config}
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() *Config {
	return a.config
}

// Evaluate builds the topology index once, runs every enabled check against
// it and aggregates the findings. The object and its mesh are not modified.
//
// A mesh with no faces yields an EMPTY_MESH warning; geometry checks report
// nothing for it while object checks still run. Index failures are returned
// wrapped, matching topology.ErrMalformedMesh.
func (a *Analyzer) Evaluate(obj *scene.Object) (*Report, error) {
	if obj == nil {
		return nil, fmt.Errorf("evaluate: nil object")
	}
	if obj.Mesh == nil {
		return nil, fmt.Errorf("evaluate %q: %w", obj.Name, ErrNoMesh)
	}

	idx, err := topology.Build(obj.Mesh)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", obj.Name, err)
	}

	report := &Report{
		ObjectID: obj.ID,
		Object:   obj.Name,
		Counts: mesh.Counts{
			Vertices: len(idx.Vertices()),
			Edges:    len(idx.Edges()),
			Faces:    len(idx.Faces()),
		},
		Fingerprint: obj.Mesh.Fingerprint(),
	}

	empty := obj.Mesh.IsEmpty()
	if empty {
		report.Warnings = append(report.Warnings, Warning{
			Code:    WarnEmptyMesh,
			Message: fmt.Sprintf("%q has no faces, geometry checks skipped", obj.Name),
		})
	}

	ctx := &Context{Object: obj, Mesh: obj.Mesh, Index: idx, Config: a.config}
	sel := newSelectionBuilder()
	for _, chk := range All() {
		if !a.config.IsEnabled(chk.ID) {
			continue
		}
		var f Finding
		if chk.Scope == ScopeObject || !empty {
			f = chk.Classify(ctx)
		}
		n := f.Count()
		report.Results = append(report.Results, Result{
			CheckID: chk.ID,
			Label:   chk.Label,
			Finding: f,
			Count:   n,
		})
		report.Total += n
		sel.add(f)
	}
	report.Selection = sel.build()
	return report, nil
}
