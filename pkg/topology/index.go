// Package topology builds the adjacency index the lint checks run against.
// The index records, for every edge, the faces that use it and, for every
// vertex, the edges incident to it. It is derived data: built in one pass
// from an immutable mesh snapshot and discarded after the analysis.
package topology

import "github.com/chazu/meshlint/pkg/mesh"

// Index is the adjacency view of one mesh snapshot. Adjacency lists are in
// insertion order; callers must treat them as sets.
type Index struct {
	m *mesh.Mesh

	vertexOrder []mesh.VertexID
	edgeOrder   []mesh.EdgeID
	faceOrder   []mesh.FaceID

	edges       map[mesh.EdgeID]mesh.Edge
	byKey       map[mesh.EdgeKey]mesh.EdgeID
	edgeFaces   map[mesh.EdgeID][]mesh.FaceID
	vertexEdges map[mesh.VertexID][]mesh.EdgeID
	faceEdges   map[mesh.FaceID][]mesh.EdgeID
	faceSides   map[mesh.FaceID]int
	synthesized []mesh.Edge
}

// Build indexes the mesh. It fails with a *MalformedMeshError when a face or
// edge references a vertex that does not exist, when an edge (explicit or
// implied by a face loop) does not have two distinct endpoints, when a face
// has fewer than three vertices, or when an ID is used twice.
//
// Face loop edges missing from the mesh's edge list are synthesized with IDs
// above the largest explicit edge ID. Build never mutates the mesh.
func Build(m *mesh.Mesh) (*Index, error) {
	if m == nil {
		m = &mesh.Mesh{}
	}

	idx := &Index{
		m:           m,
		vertexOrder: make([]mesh.VertexID, 0, len(m.Vertices)),
		edgeOrder:   make([]mesh.EdgeID, 0, len(m.Edges)),
		faceOrder:   make([]mesh.FaceID, 0, len(m.Faces)),
		edges:       make(map[mesh.EdgeID]mesh.Edge, len(m.Edges)),
		byKey:       make(map[mesh.EdgeKey]mesh.EdgeID, len(m.Edges)),
		edgeFaces:   make(map[mesh.EdgeID][]mesh.FaceID, len(m.Edges)),
		vertexEdges: make(map[mesh.VertexID][]mesh.EdgeID, len(m.Vertices)),
		faceEdges:   make(map[mesh.FaceID][]mesh.EdgeID, len(m.Faces)),
		faceSides:   make(map[mesh.FaceID]int, len(m.Faces)),
	}

	for _, v := range m.Vertices {
		if _, dup := idx.vertexEdges[v.ID]; dup {
			return nil, malformed(ElementVertex, int(v.ID), "duplicate vertex id")
		}
		idx.vertexEdges[v.ID] = nil
		idx.vertexOrder = append(idx.vertexOrder, v.ID)
	}

	nextEdge := mesh.EdgeID(0)
	for _, e := range m.Edges {
		if err := idx.addEdge(e); err != nil {
			return nil, err
		}
		if e.ID >= nextEdge {
			nextEdge = e.ID + 1
		}
	}

	for _, f := range m.Faces {
		if _, dup := idx.faceEdges[f.ID]; dup {
			return nil, malformed(ElementFace, int(f.ID), "duplicate face id")
		}
		if len(f.Loop) < 3 {
			return nil, malformed(ElementFace, int(f.ID), "face has %d vertices, need at least 3", len(f.Loop))
		}
		for _, vid := range f.Loop {
			if !idx.hasVertex(vid) {
				return nil, malformed(ElementFace, int(f.ID), "references nonexistent vertex %d", vid)
			}
		}

		loopEdges := make([]mesh.EdgeID, 0, len(f.Loop))
		for _, p := range f.LoopPairs() {
			if p[0] == p[1] {
				return nil, malformed(ElementFace, int(f.ID), "loop repeats vertex %d, implied edge is degenerate", p[0])
			}
			eid, ok := idx.byKey[mesh.MakeEdgeKey(p[0], p[1])]
			if !ok {
				e := mesh.Edge{ID: nextEdge, V: p}
				nextEdge++
				if err := idx.addEdge(e); err != nil {
					return nil, err
				}
				idx.synthesized = append(idx.synthesized, e)
				eid = e.ID
			}
			// A face counts once per edge even if its loop revisits the edge.
			faces := idx.edgeFaces[eid]
			if len(faces) == 0 || faces[len(faces)-1] != f.ID {
				idx.edgeFaces[eid] = append(faces, f.ID)
			}
			loopEdges = append(loopEdges, eid)
		}
		idx.faceEdges[f.ID] = loopEdges
		idx.faceSides[f.ID] = len(f.Loop)
		idx.faceOrder = append(idx.faceOrder, f.ID)
	}

	for _, eid := range idx.edgeOrder {
		e := idx.edges[eid]
		idx.vertexEdges[e.V[0]] = append(idx.vertexEdges[e.V[0]], eid)
		idx.vertexEdges[e.V[1]] = append(idx.vertexEdges[e.V[1]], eid)
	}

	return idx, nil
}

func (idx *Index) hasVertex(id mesh.VertexID) bool {
	_, ok := idx.vertexEdges[id]
	return ok
}

// addEdge validates and registers an edge. Vertex adjacency is filled in
// after all edges (explicit and synthesized) are known.
func (idx *Index) addEdge(e mesh.Edge) error {
	if _, dup := idx.edges[e.ID]; dup {
		return malformed(ElementEdge, int(e.ID), "duplicate edge id")
	}
	if e.V[0] == e.V[1] {
		return malformed(ElementEdge, int(e.ID), "endpoints are not distinct (both %d)", e.V[0])
	}
	for _, vid := range e.V {
		if !idx.hasVertex(vid) {
			return malformed(ElementEdge, int(e.ID), "references nonexistent vertex %d", vid)
		}
	}
	key := e.Key()
	if other, dup := idx.byKey[key]; dup {
		return malformed(ElementEdge, int(e.ID), "duplicates edge %d between vertices %s", other, key)
	}
	idx.edges[e.ID] = e
	idx.byKey[key] = e.ID
	idx.edgeFaces[e.ID] = nil
	idx.edgeOrder = append(idx.edgeOrder, e.ID)
	return nil
}

// Mesh returns the indexed snapshot.
func (idx *Index) Mesh() *mesh.Mesh {
	return idx.m
}

// Vertices returns all vertex IDs in mesh order.
func (idx *Index) Vertices() []mesh.VertexID {
	return idx.vertexOrder
}

// Edges returns all edge IDs: explicit edges in mesh order, then synthesized
// edges in the order they were discovered.
func (idx *Index) Edges() []mesh.EdgeID {
	return idx.edgeOrder
}

// Faces returns all face IDs in mesh order.
func (idx *Index) Faces() []mesh.FaceID {
	return idx.faceOrder
}

// Edge returns the edge with the given ID.
func (idx *Index) Edge(id mesh.EdgeID) (mesh.Edge, bool) {
	e, ok := idx.edges[id]
	return e, ok
}

// EdgeBetween returns the edge connecting a and b, if any.
func (idx *Index) EdgeBetween(a, b mesh.VertexID) (mesh.EdgeID, bool) {
	id, ok := idx.byKey[mesh.MakeEdgeKey(a, b)]
	return id, ok
}

// FacesOf returns the faces that contain edge id.
func (idx *Index) FacesOf(id mesh.EdgeID) []mesh.FaceID {
	return idx.edgeFaces[id]
}

// EdgeDegree is the number of faces that contain edge id.
func (idx *Index) EdgeDegree(id mesh.EdgeID) int {
	return len(idx.edgeFaces[id])
}

// EdgesOf returns the edges incident to vertex id.
func (idx *Index) EdgesOf(id mesh.VertexID) []mesh.EdgeID {
	return idx.vertexEdges[id]
}

// VertexDegree is the number of edges incident to vertex id.
func (idx *Index) VertexDegree(id mesh.VertexID) int {
	return len(idx.vertexEdges[id])
}

// FaceEdges returns the edges bounding face id, in loop order.
func (idx *Index) FaceEdges(id mesh.FaceID) []mesh.EdgeID {
	return idx.faceEdges[id]
}

// FaceSides returns the loop length of face id.
func (idx *Index) FaceSides(id mesh.FaceID) int {
	return idx.faceSides[id]
}

// Synthesized returns the edges that were implied by face loops but absent
// from the mesh's edge list.
func (idx *Index) Synthesized() []mesh.Edge {
	return idx.synthesized
}
