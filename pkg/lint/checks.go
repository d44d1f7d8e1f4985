package lint

import (
	"math"
	"regexp"

	"github.com/chazu/meshlint/pkg/mesh"
)

// Check IDs.
const (
	CheckTris           = "tris"
	CheckNgons          = "ngons"
	CheckNonmanifold    = "nonmanifold"
	CheckInteriorFaces  = "interior_faces"
	CheckThreePoles     = "three_poles"
	CheckFivePoles      = "five_poles"
	CheckSixplusPoles   = "sixplus_poles"
	CheckDefaultName    = "default_name"
	CheckUnappliedScale = "unapplied_scale"
)

func init() {
	Register(Check{
		ID:    CheckTris,
		Label: "Tris",
		Description: "A face with 3 edges. Often bad for modeling because it stops edge loops " +
			"and does not deform well around bent areas.",
		Scope:          ScopeGeometry,
		DefaultEnabled: true,
		Classify:       classifyTris,
	})
	Register(Check{
		ID:             CheckNgons,
		Label:          "Ngons",
		Description:    "A face with more than 4 edges. Bad in the same ways as tris.",
		Scope:          ScopeGeometry,
		DefaultEnabled: true,
		Classify:       classifyNgons,
	})
	Register(Check{
		ID:    CheckNonmanifold,
		Label: "Nonmanifold Elements",
		Description: "Shapes that won't hold water: edges that do not have exactly 2 faces " +
			"attached, their endpoints, and stray vertices with no edges at all.",
		Scope:          ScopeGeometry,
		DefaultEnabled: true,
		Classify:       classifyNonmanifold,
	})
	Register(Check{
		ID:    CheckInteriorFaces,
		Label: "Interior Faces",
		Description: "A face whose edges ALL have more than 2 faces attached, such as the face " +
			"filling a loop cut across the middle of a cube.",
		Scope:          ScopeGeometry,
		DefaultEnabled: true,
		Classify:       classifyInteriorFaces,
	})
	Register(Check{
		ID:          CheckThreePoles,
		Label:       "3-edge Poles",
		Description: "A vertex with exactly 3 edges connected to it. Also known as an N-pole.",
		Scope:       ScopeGeometry,
		Classify:    poleClassifier(func(deg int) bool { return deg == 3 }),
	})
	Register(Check{
		ID:          CheckFivePoles,
		Label:       "5-edge Poles",
		Description: "A vertex with exactly 5 edges connected to it. Also known as an E-pole.",
		Scope:       ScopeGeometry,
		Classify:    poleClassifier(func(deg int) bool { return deg == 5 }),
	})
	Register(Check{
		ID:    CheckSixplusPoles,
		Label: "6+-edge Poles",
		Description: "A vertex with 6 or more edges connected to it. Some extrusions legitimately " +
			"produce these, so the check is off unless asked for.",
		Scope:    ScopeGeometry,
		Classify: poleClassifier(func(deg int) bool { return deg >= 6 }),
	})
	Register(Check{
		ID:             CheckDefaultName,
		Label:          "Default Name",
		Description:    "An object still carrying the name the host gave its primitive, like Cube.002.",
		Scope:          ScopeObject,
		DefaultEnabled: true,
		Classify:       classifyDefaultName,
	})
	Register(Check{
		ID:    CheckUnappliedScale,
		Label: "Unapplied Scale",
		Description: "An object whose scale differs from (1, 1, 1). Unapplied scale distorts " +
			"every other geometric measurement, so this check cannot be disabled.",
		Scope:          ScopeObject,
		DefaultEnabled: true,
		AlwaysOn:       true,
		Classify:       classifyUnappliedScale,
	})
}

func classifyTris(ctx *Context) Finding {
	var faces []mesh.FaceID
	for _, f := range ctx.Index.Faces() {
		if ctx.Index.FaceSides(f) == 3 {
			faces = append(faces, f)
		}
	}
	return finding(nil, nil, faces)
}

func classifyNgons(ctx *Context) Finding {
	var faces []mesh.FaceID
	for _, f := range ctx.Index.Faces() {
		if ctx.Index.FaceSides(f) > 4 {
			faces = append(faces, f)
		}
	}
	return finding(nil, nil, faces)
}

// classifyNonmanifold flags edges whose face degree is not 2, every endpoint
// of such an edge, and vertices with no incident edges.
func classifyNonmanifold(ctx *Context) Finding {
	idx := ctx.Index
	var verts []mesh.VertexID
	var edges []mesh.EdgeID
	for _, eid := range idx.Edges() {
		if idx.EdgeDegree(eid) == 2 {
			continue
		}
		edges = append(edges, eid)
		e, _ := idx.Edge(eid)
		verts = append(verts, e.V[0], e.V[1])
	}
	for _, vid := range idx.Vertices() {
		if idx.VertexDegree(vid) == 0 {
			verts = append(verts, vid)
		}
	}
	return finding(verts, edges, nil)
}

// classifyInteriorFaces flags a face only when none of its edges has a face
// degree of 2 or less.
func classifyInteriorFaces(ctx *Context) Finding {
	idx := ctx.Index
	var faces []mesh.FaceID
	for _, f := range idx.Faces() {
		interior := true
		for _, eid := range idx.FaceEdges(f) {
			if idx.EdgeDegree(eid) <= 2 {
				interior = false
				break
			}
		}
		if interior {
			faces = append(faces, f)
		}
	}
	return finding(nil, nil, faces)
}

func poleClassifier(match func(degree int) bool) ClassifyFunc {
	return func(ctx *Context) Finding {
		var verts []mesh.VertexID
		for _, v := range ctx.Index.Vertices() {
			if match(ctx.Index.VertexDegree(v)) {
				verts = append(verts, v)
			}
		}
		return finding(verts, nil, nil)
	}
}

func classifyDefaultName(ctx *Context) Finding {
	return Finding{Object: IsDefaultName(ctx.Config.namePattern(), ctx.Object.Name)}
}

func classifyUnappliedScale(ctx *Context) Finding {
	return Finding{Object: HasUnappliedScale(ctx.Object.Scale, ctx.Config.scaleEpsilon())}
}

// IsDefaultName reports whether name matches the default-name pattern. A nil
// pattern uses DefaultNamePattern.
func IsDefaultName(pattern *regexp.Regexp, name string) bool {
	if pattern == nil {
		pattern = defaultNameRe
	}
	return pattern.MatchString(name)
}

// HasUnappliedScale reports whether any scale component differs from 1 by
// more than eps.
func HasUnappliedScale(scale mesh.Vec3, eps float64) bool {
	for _, c := range scale.Components() {
		if math.Abs(c-1) > eps || math.IsNaN(c) {
			return true
		}
	}
	return false
}
