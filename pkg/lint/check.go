// Package lint classifies mesh elements and scene objects against a set of
// modeling-convention checks and aggregates the results into per-object
// reports.
//
// Geometry checks consume a prebuilt topology.Index; object checks look at
// the object's name and scale. Every check is pure: it never mutates the
// index, the mesh or the object.
package lint

import (
	"github.com/chazu/meshlint/pkg/mesh"
	"github.com/chazu/meshlint/pkg/scene"
	"github.com/chazu/meshlint/pkg/topology"
)

// Scope says what a check inspects.
type Scope int

const (
	// ScopeGeometry checks classify vertices, edges or faces.
	ScopeGeometry Scope = iota
	// ScopeObject checks classify the object as a whole.
	ScopeObject
)

func (s Scope) String() string {
	if s == ScopeObject {
		return "object"
	}
	return "geometry"
}

// Context is the input handed to a check's Classify function.
type Context struct {
	Object *scene.Object
	Mesh   *mesh.Mesh
	Index  *topology.Index
	Config *Config
}

// ClassifyFunc inspects the context and returns the flagged elements.
type ClassifyFunc func(ctx *Context) Finding

// Check describes one lint check.
type Check struct {
	ID          string
	Label       string
	Description string
	Scope       Scope

	// DefaultEnabled is the check's state in DefaultConfig.
	DefaultEnabled bool

	// AlwaysOn checks run regardless of configuration.
	AlwaysOn bool

	Classify ClassifyFunc
}

// Element types, in reporting order.
const (
	ElemVerts   = "verts"
	ElemEdges   = "edges"
	ElemFaces   = "faces"
	ElemObjects = "objects"
)

// ElemTypes lists the element type names in reporting order.
var ElemTypes = []string{ElemVerts, ElemEdges, ElemFaces, ElemObjects}

// Finding is the set of elements flagged by one check. ID slices are sorted
// ascending and free of duplicates.
type Finding struct {
	Verts  []mesh.VertexID `json:"verts,omitempty"`
	Edges  []mesh.EdgeID   `json:"edges,omitempty"`
	Faces  []mesh.FaceID   `json:"faces,omitempty"`
	Object bool            `json:"object,omitempty"`
}

// CountOf returns the number of flagged elements of one element type.
func (f Finding) CountOf(elemType string) int {
	switch elemType {
	case ElemVerts:
		return len(f.Verts)
	case ElemEdges:
		return len(f.Edges)
	case ElemFaces:
		return len(f.Faces)
	case ElemObjects:
		if f.Object {
			return 1
		}
	}
	return 0
}

// Count returns the total number of flagged elements; a flagged object
// counts as one.
func (f Finding) Count() int {
	n := 0
	for _, t := range ElemTypes {
		n += f.CountOf(t)
	}
	return n
}

// IsEmpty reports whether nothing was flagged.
func (f Finding) IsEmpty() bool {
	return f.Count() == 0
}
