// Package mesh defines the polygonal mesh snapshot that the lint engine
// analyzes. A Mesh is plain data: vertices with positions, edges as unordered
// vertex pairs, and faces as cyclic vertex loops. It is never mutated by the
// analysis; hosts hand over a fresh snapshot for every evaluation.
package mesh

import "fmt"

// VertexID is the stable identifier of a vertex within one mesh.
type VertexID int

// EdgeID is the stable identifier of an edge within one mesh.
type EdgeID int

// FaceID is the stable identifier of a face within one mesh.
type FaceID int

// Vec3 represents a 3D vector.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns the component-wise sum of v and o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Components returns the vector as an array, convenient for per-axis loops.
func (v Vec3) Components() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// Vertex is a mesh vertex.
type Vertex struct {
	ID       VertexID `json:"id" yaml:"id"`
	Position Vec3     `json:"position" yaml:"position"`
}

// Edge connects two distinct vertices. The pair is unordered.
type Edge struct {
	ID EdgeID      `json:"id" yaml:"id"`
	V  [2]VertexID `json:"verts" yaml:"verts"`
}

// Key returns the canonical unordered key for the edge's endpoints.
func (e Edge) Key() EdgeKey {
	return MakeEdgeKey(e.V[0], e.V[1])
}

// Face is a polygon bounded by an ordered, cyclic loop of vertices.
// Consecutive loop entries (and the last/first pair) imply its edges.
type Face struct {
	ID   FaceID     `json:"id" yaml:"id"`
	Loop []VertexID `json:"loop" yaml:"loop"`
}

// Sides returns the number of vertices (and implied edges) in the loop.
func (f Face) Sides() int {
	return len(f.Loop)
}

// LoopPairs returns the implied edges of the face as vertex pairs, in loop
// order, including the closing pair.
func (f Face) LoopPairs() [][2]VertexID {
	n := len(f.Loop)
	pairs := make([][2]VertexID, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, [2]VertexID{f.Loop[i], f.Loop[(i+1)%n]})
	}
	return pairs
}

// EdgeKey is a canonical, order-independent key for a vertex pair so that
// (a,b) and (b,a) address the same edge.
type EdgeKey struct {
	Lo, Hi VertexID
}

// MakeEdgeKey builds the canonical key for the pair (a, b).
func MakeEdgeKey(a, b VertexID) EdgeKey {
	if a <= b {
		return EdgeKey{Lo: a, Hi: b}
	}
	return EdgeKey{Lo: b, Hi: a}
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("%d-%d", k.Lo, k.Hi)
}

// Mesh is a snapshot of polygonal geometry.
type Mesh struct {
	Vertices []Vertex `json:"vertices" yaml:"vertices"`
	Edges    []Edge   `json:"edges" yaml:"edges"`
	Faces    []Face   `json:"faces" yaml:"faces"`
}

// Counts holds the element counts of a mesh.
type Counts struct {
	Vertices int `json:"vertices"`
	Edges    int `json:"edges"`
	Faces    int `json:"faces"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Vertices)
}

// EdgeCount returns the number of explicit edges.
func (m *Mesh) EdgeCount() int {
	if m == nil {
		return 0
	}
	return len(m.Edges)
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	if m == nil {
		return 0
	}
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no faces.
func (m *Mesh) IsEmpty() bool {
	return m.FaceCount() == 0
}

// Counts returns the element counts of the mesh.
func (m *Mesh) Counts() Counts {
	return Counts{
		Vertices: m.VertexCount(),
		Edges:    m.EdgeCount(),
		Faces:    m.FaceCount(),
	}
}
