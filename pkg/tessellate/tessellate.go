// Package tessellate turns kernel solids into indexed polygon meshes. The
// kernel emits triangle soup; Weld merges coincident vertices so neighbouring
// triangles share edges and the result can be indexed and linted.
package tessellate

import (
	"fmt"
	"math"

	"github.com/chazu/meshlint/pkg/kernel"
	"github.com/chazu/meshlint/pkg/mesh"
)

// DefaultWeldTolerance is the distance below which two soup vertices are
// treated as the same vertex.
const DefaultWeldTolerance = 1e-4

// ToMesh meshes a solid with the kernel and welds the soup into an indexed
// mesh using DefaultWeldTolerance.
func ToMesh(k kernel.Kernel, s kernel.Solid) (*mesh.Mesh, error) {
	if k == nil || s == nil {
		return nil, fmt.Errorf("tessellate: nil kernel or solid")
	}
	soup, err := k.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed: %w", err)
	}
	return Weld(soup, DefaultWeldTolerance), nil
}

// weldKey is a vertex position quantized to the weld tolerance.
type weldKey [3]int64

func quantize(p [3]float32, tol float64) weldKey {
	var k weldKey
	for i, c := range p {
		k[i] = int64(math.Round(float64(c) / tol))
	}
	return k
}

// Weld merges soup vertices closer than tol (per axis, after quantization)
// and returns the indexed mesh. Triangles that collapse after welding, i.e.
// use the same vertex twice, are dropped. Vertex and face IDs follow first
// appearance in the soup, so welding is deterministic.
func Weld(km *kernel.Mesh, tol float64) *mesh.Mesh {
	b := mesh.NewBuilder()
	if km == nil || km.IsEmpty() {
		return b.Build()
	}
	if tol <= 0 {
		tol = DefaultWeldTolerance
	}

	ids := make(map[weldKey]mesh.VertexID, km.VertexCount()/3)
	remap := make([]mesh.VertexID, km.VertexCount())
	for i := range remap {
		p := km.Vertex(uint32(i))
		key := quantize(p, tol)
		id, ok := ids[key]
		if !ok {
			id = b.AddVertex(float64(p[0]), float64(p[1]), float64(p[2]))
			ids[key] = id
		}
		remap[i] = id
	}

	for t := 0; t < km.TriangleCount(); t++ {
		tri := km.Triangle(t)
		a, c, d := remap[tri[0]], remap[tri[1]], remap[tri[2]]
		if a == c || c == d || d == a {
			continue
		}
		b.AddFace(a, c, d)
	}
	return b.Build()
}
