package lint

import (
	"fmt"
	"strings"
)

// Depluralize strips trailing lowercase "s" characters from s when count is
// exactly one. It makes no attempt at real English: "Tris" becomes "Tri" and
// "foxes" becomes "foxe".
func Depluralize(count int, s string) string {
	if count == 1 {
		return strings.TrimRight(s, "s")
	}
	return s
}

// Diff describes what got worse between two reports of the same object, for
// example "Found Tris: 2 faces, Nonmanifold Elements: 1 vert, 4 edges".
// Only element types whose count grew are listed, per check in canonical
// order. A nil before is treated as a report with nothing flagged. Diff
// returns "" when nothing grew.
func Diff(before, after *Report) string {
	if after == nil {
		return ""
	}
	var parts []string
	for _, chk := range All() {
		now, ok := after.Result(chk.ID)
		if !ok {
			continue
		}
		prev, _ := before.Result(chk.ID)

		var elems []string
		for _, t := range ElemTypes {
			grew := now.Finding.CountOf(t) - prev.Finding.CountOf(t)
			if grew > 0 {
				elems = append(elems, fmt.Sprintf("%d %s", grew, Depluralize(grew, t)))
			}
		}
		if len(elems) > 0 {
			parts = append(parts, chk.Label+": "+strings.Join(elems, ", "))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "Found " + strings.Join(parts, ", ")
}

// Criticisms renders the object-level complaints for a set of reports:
//
//	...but "Cube.001" has an unapplied scale.
//	...and also "Cube.001" is not a great name.
//
// The first complaint uses "but" unless geometry problems were already found
// on any of the objects; every later one uses "and also".
func Criticisms(reports []*Report) []string {
	complained := false
	for _, r := range reports {
		if r.GeometryTotal() > 0 {
			complained = true
			break
		}
	}

	var out []string
	add := func(name, crit string) {
		conj := "but"
		if complained {
			conj = "and also"
		}
		out = append(out, fmt.Sprintf("...%s %q %s.", conj, name, crit))
		complained = true
	}
	for _, r := range reports {
		if r == nil {
			continue
		}
		if r.Flagged(CheckUnappliedScale) {
			add(r.Object, "has an unapplied scale")
		}
		if r.Flagged(CheckDefaultName) {
			add(r.Object, "is not a great name")
		}
	}
	return out
}
