package lint

import (
	"sort"

	"golang.org/x/exp/constraints"

	"github.com/chazu/meshlint/pkg/mesh"
)

// idSet collects element IDs and yields them sorted.
type idSet[T constraints.Integer] map[T]struct{}

func (s idSet[T]) add(ids ...T) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

func (s idSet[T]) sorted() []T {
	if len(s) == 0 {
		return nil
	}
	out := make([]T, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Selection is the union of all elements flagged on one object: what a host
// would select when switching into element editing.
type Selection struct {
	Verts  []mesh.VertexID `json:"verts,omitempty"`
	Edges  []mesh.EdgeID   `json:"edges,omitempty"`
	Faces  []mesh.FaceID   `json:"faces,omitempty"`
	Object bool            `json:"object,omitempty"`
}

// IsEmpty reports whether the selection contains nothing.
func (s Selection) IsEmpty() bool {
	return len(s.Verts) == 0 && len(s.Edges) == 0 && len(s.Faces) == 0 && !s.Object
}

// Len returns the number of distinct selected elements, counting a selected
// object as one.
func (s Selection) Len() int {
	n := len(s.Verts) + len(s.Edges) + len(s.Faces)
	if s.Object {
		n++
	}
	return n
}

type selectionBuilder struct {
	verts  idSet[mesh.VertexID]
	edges  idSet[mesh.EdgeID]
	faces  idSet[mesh.FaceID]
	object bool
}

func newSelectionBuilder() *selectionBuilder {
	return &selectionBuilder{
		verts: make(idSet[mesh.VertexID]),
		edges: make(idSet[mesh.EdgeID]),
		faces: make(idSet[mesh.FaceID]),
	}
}

func (b *selectionBuilder) add(f Finding) {
	b.verts.add(f.Verts...)
	b.edges.add(f.Edges...)
	b.faces.add(f.Faces...)
	b.object = b.object || f.Object
}

func (b *selectionBuilder) build() Selection {
	return Selection{
		Verts:  b.verts.sorted(),
		Edges:  b.edges.sorted(),
		Faces:  b.faces.sorted(),
		Object: b.object,
	}
}

// finding builds a Finding from unsorted, possibly duplicated IDs.
func finding(verts []mesh.VertexID, edges []mesh.EdgeID, faces []mesh.FaceID) Finding {
	b := newSelectionBuilder()
	b.verts.add(verts...)
	b.edges.add(edges...)
	b.faces.add(faces...)
	return Finding{
		Verts: b.verts.sorted(),
		Edges: b.edges.sorted(),
		Faces: b.faces.sorted(),
	}
}
