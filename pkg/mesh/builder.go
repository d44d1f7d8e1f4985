package mesh

// Builder assembles a Mesh incrementally. Vertex, edge and face IDs are
// assigned sequentially from zero. Faces added through AddFace register their
// implied edges, so the built mesh satisfies referential integrity as long
// as the face loops reference vertices that were added.
type Builder struct {
	m     *Mesh
	edges map[EdgeKey]EdgeID
}

// NewBuilder creates an empty mesh builder.
func NewBuilder() *Builder {
	return &Builder{
		m:     &Mesh{},
		edges: make(map[EdgeKey]EdgeID),
	}
}

// AddVertex appends a vertex at the given position and returns its ID.
func (b *Builder) AddVertex(x, y, z float64) VertexID {
	id := VertexID(len(b.m.Vertices))
	b.m.Vertices = append(b.m.Vertices, Vertex{ID: id, Position: Vec3{X: x, Y: y, Z: z}})
	return id
}

// AddEdge registers an edge between a and b, returning the existing ID when
// the pair is already present.
func (b *Builder) AddEdge(a, c VertexID) EdgeID {
	key := MakeEdgeKey(a, c)
	if id, ok := b.edges[key]; ok {
		return id
	}
	id := EdgeID(len(b.m.Edges))
	b.m.Edges = append(b.m.Edges, Edge{ID: id, V: [2]VertexID{a, c}})
	b.edges[key] = id
	return id
}

// AddFace appends a face with the given loop and registers its edges.
func (b *Builder) AddFace(loop ...VertexID) FaceID {
	id := FaceID(len(b.m.Faces))
	f := Face{ID: id, Loop: append([]VertexID(nil), loop...)}
	for _, p := range f.LoopPairs() {
		if p[0] != p[1] {
			b.AddEdge(p[0], p[1])
		}
	}
	b.m.Faces = append(b.m.Faces, f)
	return id
}

// Build returns the assembled mesh. The builder must not be used afterwards.
func (b *Builder) Build() *Mesh {
	return b.m
}

// Grid builds a flat grid of nx by ny quads in the XY plane with unit spacing.
func Grid(nx, ny int) *Mesh {
	b := NewBuilder()
	if nx <= 0 || ny <= 0 {
		return b.Build()
	}
	ids := make([][]VertexID, ny+1)
	for j := 0; j <= ny; j++ {
		ids[j] = make([]VertexID, nx+1)
		for i := 0; i <= nx; i++ {
			ids[j][i] = b.AddVertex(float64(i), float64(j), 0)
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			b.AddFace(ids[j][i], ids[j][i+1], ids[j+1][i+1], ids[j+1][i])
		}
	}
	return b.Build()
}

// Cube builds a closed unit cube made of six quads.
func Cube() *Mesh {
	b := NewBuilder()
	var v [8]VertexID
	for i := 0; i < 8; i++ {
		v[i] = b.AddVertex(float64(i&1), float64((i>>1)&1), float64((i>>2)&1))
	}
	b.AddFace(v[0], v[2], v[3], v[1]) // bottom
	b.AddFace(v[4], v[5], v[7], v[6]) // top
	b.AddFace(v[0], v[1], v[5], v[4]) // front
	b.AddFace(v[2], v[6], v[7], v[3]) // back
	b.AddFace(v[0], v[4], v[6], v[2]) // left
	b.AddFace(v[1], v[3], v[7], v[5]) // right
	return b.Build()
}

// FromIndexLists assembles a mesh from positions and index lists, the form
// scene files and scene source use. IDs are list positions. Faces may imply
// edges that are not listed. An edge entry without exactly two indices is kept
// as a degenerate edge on its first index, so the topology index rejects the
// mesh it belongs to rather than the whole scene.
func FromIndexLists(verts []Vec3, edges, faces [][]int) *Mesh {
	m := &Mesh{}
	for i, p := range verts {
		m.Vertices = append(m.Vertices, Vertex{ID: VertexID(i), Position: p})
	}
	for i, e := range edges {
		v := [2]VertexID{-1, -1}
		switch {
		case len(e) == 2:
			v = [2]VertexID{VertexID(e[0]), VertexID(e[1])}
		case len(e) > 0:
			v = [2]VertexID{VertexID(e[0]), VertexID(e[0])}
		}
		m.Edges = append(m.Edges, Edge{ID: EdgeID(i), V: v})
	}
	for i, f := range faces {
		loop := make([]VertexID, len(f))
		for j, v := range f {
			loop[j] = VertexID(v)
		}
		m.Faces = append(m.Faces, Face{ID: FaceID(i), Loop: loop})
	}
	return m
}
