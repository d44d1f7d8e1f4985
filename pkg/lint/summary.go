package lint

// CheckTotal is the scene-wide count for one check.
type CheckTotal struct {
	CheckID string `json:"check"`
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Objects int    `json:"objects"`
}

// Summary aggregates reports across a scene.
type Summary struct {
	Objects  int          `json:"objects"`
	WithLint int          `json:"with_lint"`
	Total    int          `json:"total"`
	Checks   []CheckTotal `json:"checks"`
}

// Summarize totals the reports per check, in canonical check order. Checks
// that did not run on any object are omitted.
func Summarize(reports []*Report) Summary {
	var s Summary
	totals := make(map[string]*CheckTotal)
	for _, r := range reports {
		if r == nil {
			continue
		}
		s.Objects++
		if !r.IsEmpty() {
			s.WithLint++
		}
		s.Total += r.Total
		for _, res := range r.Results {
			ct, ok := totals[res.CheckID]
			if !ok {
				ct = &CheckTotal{CheckID: res.CheckID, Label: res.Label}
				totals[res.CheckID] = ct
			}
			ct.Count += res.Count
			if res.Count > 0 {
				ct.Objects++
			}
		}
	}
	for _, chk := range All() {
		if ct, ok := totals[chk.ID]; ok {
			s.Checks = append(s.Checks, *ct)
		}
	}
	return s
}
