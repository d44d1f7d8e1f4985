package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/chazu/meshlint/internal/app"
	"github.com/chazu/meshlint/internal/cli/output"
	"github.com/chazu/meshlint/pkg/lint"
)

// findings lists what a report flagged, e.g. "Tris: 4 faces".
func findings(r *lint.Report) string {
	return strings.TrimPrefix(lint.Diff(nil, r), "Found ")
}

// describeSelection renders a selection as "2 verts, 4 faces".
func describeSelection(sel lint.Selection) string {
	var parts []string
	add := func(n int, elem string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, lint.Depluralize(n, elem)))
		}
	}
	add(len(sel.Verts), lint.ElemVerts)
	add(len(sel.Edges), lint.ElemEdges)
	add(len(sel.Faces), lint.ElemFaces)
	if sel.Object {
		parts = append(parts, "the object")
	}
	return strings.Join(parts, ", ")
}

func formatError(e app.ErrorData) string {
	switch {
	case e.Line > 0 && e.Col > 0:
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// renderResult writes a lint result in the renderer's mode.
func renderResult(r *output.Renderer, res app.LintResult) error {
	if r.Mode() == output.ModeJSON {
		return r.JSON(res)
	}

	styles := r.Styles()
	title := "Scene"
	if res.Source != "" {
		title = "Scene " + res.Source
	}
	r.Header(1, title)
	r.Muted(fmt.Sprintf("mode %s, state %s", res.Mode, res.State))

	if len(res.Objects) > 0 {
		rows := make([]table.Row, 0, len(res.Objects))
		for _, o := range res.Objects {
			detail := findings(o.Report)
			if o.Error != "" {
				detail = o.Error
			}
			rows = append(rows, table.Row{o.Name, o.Outcome, detail})
		}
		r.Table(table.Row{"Object", "Outcome", "Lint"}, rows)
	}

	if res.Target != "" && res.Selection != nil {
		r.Printf("Selected %s in %s\n", describeSelection(*res.Selection), styles.Object.Render(fmt.Sprintf("%q", res.Target)))
	}
	for _, c := range res.Criticisms {
		r.Warning(c)
	}

	if len(res.Summary.Checks) > 0 && res.Summary.Total > 0 {
		r.Println("")
		r.Header(2, "Summary")
		rows := make([]table.Row, 0, len(res.Summary.Checks))
		for _, ct := range res.Summary.Checks {
			if ct.Count == 0 {
				continue
			}
			rows = append(rows, table.Row{ct.Label, ct.Count, ct.Objects})
		}
		r.Table(table.Row{"Check", "Count", "Objects"}, rows)
		r.Muted(fmt.Sprintf("Total: %d flagged in %d of %d objects",
			res.Summary.Total, res.Summary.WithLint, res.Summary.Objects))
	}

	for _, e := range res.Errors {
		r.Error(formatError(e))
	}
	if res.Cancelled {
		r.Warning("scan cancelled")
	}
	if !res.HasLint() && !res.Cancelled {
		r.Success("no lint found")
	}
	return nil
}
