package tessellate_test

import (
	"testing"

	"github.com/chazu/meshlint/pkg/kernel"
	"github.com/chazu/meshlint/pkg/kernel/sdfx"
	"github.com/chazu/meshlint/pkg/tessellate"
	"github.com/chazu/meshlint/pkg/topology"
)

// soup builds a triangle-soup kernel mesh: every triangle gets three fresh
// vertices, the way the sdfx kernel emits them.
func soup(tris ...[3][3]float32) *kernel.Mesh {
	m := &kernel.Mesh{}
	for _, tri := range tris {
		for _, p := range tri {
			m.Indices = append(m.Indices, uint32(len(m.Vertices)/3))
			m.Vertices = append(m.Vertices, p[0], p[1], p[2])
			m.Normals = append(m.Normals, 0, 0, 1)
		}
	}
	return m
}

func TestWeldSharedEdge(t *testing.T) {
	// Two triangles of a unit quad, each with its own copy of the diagonal.
	km := soup(
		[3][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}},
		[3][3]float32{{0, 0, 0}, {1, 1, 0}, {0, 1, 0}},
	)
	m := tessellate.Weld(km, tessellate.DefaultWeldTolerance)

	if m.VertexCount() != 4 {
		t.Fatalf("VertexCount() = %d, want 4", m.VertexCount())
	}
	if m.EdgeCount() != 5 {
		t.Fatalf("EdgeCount() = %d, want 5", m.EdgeCount())
	}
	if m.FaceCount() != 2 {
		t.Fatalf("FaceCount() = %d, want 2", m.FaceCount())
	}

	idx, err := topology.Build(m)
	if err != nil {
		t.Fatalf("topology.Build: %v", err)
	}
	diag, ok := idx.EdgeBetween(0, 2)
	if !ok {
		t.Fatal("diagonal edge 0-2 missing after weld")
	}
	if got := idx.EdgeDegree(diag); got != 2 {
		t.Errorf("diagonal degree = %d, want 2", got)
	}
}

func TestWeldToleranceMergesNearVertices(t *testing.T) {
	km := soup(
		[3][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}},
		[3][3]float32{{0.00001, 0, 0}, {1, 1.00001, 0}, {0, 1, 0}},
	)
	if got := tessellate.Weld(km, 1e-3).VertexCount(); got != 4 {
		t.Errorf("coarse weld VertexCount() = %d, want 4", got)
	}
	if got := tessellate.Weld(km, 1e-7).VertexCount(); got != 6 {
		t.Errorf("fine weld VertexCount() = %d, want 6", got)
	}
}

func TestWeldDropsCollapsedTriangles(t *testing.T) {
	km := soup(
		[3][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		// Two corners land in the same weld cell.
		[3][3]float32{{0, 0, 0}, {0.00001, 0, 0}, {0, 0, 1}},
	)
	m := tessellate.Weld(km, 1e-3)
	if m.FaceCount() != 1 {
		t.Errorf("FaceCount() = %d, want 1", m.FaceCount())
	}
}

func TestWeldEmpty(t *testing.T) {
	if m := tessellate.Weld(nil, 0); !m.IsEmpty() {
		t.Error("Weld(nil) should be empty")
	}
	if m := tessellate.Weld(&kernel.Mesh{}, 0); !m.IsEmpty() {
		t.Error("Weld(empty soup) should be empty")
	}
}

func TestToMeshWeldsKernelOutput(t *testing.T) {
	k := sdfx.NewWithCells(16)
	box := k.Box(10, 10, 10)

	raw, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("kernel ToMesh: %v", err)
	}
	m, err := tessellate.ToMesh(k, box)
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}
	if m.FaceCount() == 0 {
		t.Fatal("welded mesh has no faces")
	}
	if m.VertexCount() >= raw.VertexCount() {
		t.Errorf("welded vertex count %d should be below soup count %d", m.VertexCount(), raw.VertexCount())
	}
	for _, f := range m.Faces {
		if f.Sides() != 3 {
			t.Fatalf("face %d has %d sides, want 3", f.ID, f.Sides())
		}
	}
	if _, err := topology.Build(m); err != nil {
		t.Fatalf("welded mesh should index cleanly: %v", err)
	}
}

func TestToMeshNilArgs(t *testing.T) {
	if _, err := tessellate.ToMesh(nil, nil); err == nil {
		t.Error("expected error for nil kernel")
	}
	k := sdfx.New()
	if _, err := tessellate.ToMesh(k, nil); err == nil {
		t.Error("expected error for nil solid")
	}
}
