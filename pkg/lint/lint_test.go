package lint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/meshlint/pkg/mesh"
	"github.com/chazu/meshlint/pkg/scene"
	"github.com/chazu/meshlint/pkg/topology"
)

func tetrahedron() *mesh.Mesh {
	b := mesh.NewBuilder()
	v0 := b.AddVertex(0, 0, 0)
	v1 := b.AddVertex(1, 0, 0)
	v2 := b.AddVertex(0, 1, 0)
	v3 := b.AddVertex(0, 0, 1)
	b.AddFace(v0, v2, v1)
	b.AddFace(v0, v1, v3)
	b.AddFace(v1, v2, v3)
	b.AddFace(v2, v0, v3)
	return b.Build()
}

// stackedCubes is two unit cubes on top of each other sharing their middle
// face, which is therefore interior.
func stackedCubes() (*mesh.Mesh, mesh.FaceID) {
	b := mesh.NewBuilder()
	var ring [3][4]mesh.VertexID
	for z := 0; z < 3; z++ {
		ring[z][0] = b.AddVertex(0, 0, float64(z))
		ring[z][1] = b.AddVertex(1, 0, float64(z))
		ring[z][2] = b.AddVertex(1, 1, float64(z))
		ring[z][3] = b.AddVertex(0, 1, float64(z))
	}
	b.AddFace(ring[0][3], ring[0][2], ring[0][1], ring[0][0])
	b.AddFace(ring[2][0], ring[2][1], ring[2][2], ring[2][3])
	middle := b.AddFace(ring[1][0], ring[1][1], ring[1][2], ring[1][3])
	for z := 0; z < 2; z++ {
		for i := 0; i < 4; i++ {
			j := (i + 1) % 4
			b.AddFace(ring[z][i], ring[z][j], ring[z+1][j], ring[z+1][i])
		}
	}
	return b.Build(), middle
}

// fan is a flat disc of n triangles around a center vertex, which therefore
// has n incident edges.
func fan(n int) (*mesh.Mesh, mesh.VertexID) {
	b := mesh.NewBuilder()
	center := b.AddVertex(0, 0, 0)
	rim := make([]mesh.VertexID, n)
	for i := range rim {
		rim[i] = b.AddVertex(float64(i), 1, 0)
	}
	for i := range rim {
		b.AddFace(center, rim[i], rim[(i+1)%n])
	}
	return b.Build(), center
}

// pentagon is a single 5-sided face.
func pentagon() *mesh.Mesh {
	b := mesh.NewBuilder()
	var v []mesh.VertexID
	for i := 0; i < 5; i++ {
		v = append(v, b.AddVertex(float64(i), float64(i%2), 0))
	}
	b.AddFace(v...)
	return b.Build()
}

func allOn() *Config {
	cfg := DefaultConfig()
	for _, c := range All() {
		cfg.Enable(c.ID)
	}
	return cfg
}

func evaluate(t *testing.T, cfg *Config, name string, m *mesh.Mesh) *Report {
	t.Helper()
	obj := scene.NewObject(name, m)
	r, err := NewAnalyzer(cfg).Evaluate(obj)
	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}

func resultOf(t *testing.T, r *Report, id string) Finding {
	t.Helper()
	res, ok := r.Result(id)
	require.True(t, ok, "check %s did not run", id)
	return res.Finding
}

func TestRegistryCanonicalOrder(t *testing.T) {
	var ids []string
	for _, c := range All() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{
		CheckTris, CheckNgons, CheckNonmanifold, CheckInteriorFaces,
		CheckThreePoles, CheckFivePoles, CheckSixplusPoles,
		CheckDefaultName, CheckUnappliedScale,
	}, ids)
	assert.Equal(t, 9, Count())

	c, ok := Lookup(CheckSixplusPoles)
	require.True(t, ok)
	assert.Equal(t, "6+-edge Poles", c.Label)
	assert.False(t, c.DefaultEnabled)

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	for _, id := range []string{CheckTris, CheckNgons, CheckNonmanifold, CheckInteriorFaces, CheckDefaultName, CheckUnappliedScale} {
		assert.True(t, cfg.IsEnabled(id), id)
	}
	for _, id := range []string{CheckThreePoles, CheckFivePoles, CheckSixplusPoles} {
		assert.False(t, cfg.IsEnabled(id), id)
	}
	assert.False(t, cfg.IsEnabled("unknown"))

	var nilCfg *Config
	assert.True(t, nilCfg.IsEnabled(CheckTris))
	assert.False(t, nilCfg.IsEnabled(CheckSixplusPoles))
}

func TestUnappliedScaleCannotBeDisabled(t *testing.T) {
	cfg := DefaultConfig().Disable(CheckUnappliedScale)
	assert.True(t, cfg.IsEnabled(CheckUnappliedScale))

	obj := scene.NewObject("Widget", mesh.Cube())
	obj.Scale = mesh.Vec3{X: 2, Y: 1, Z: 1}
	r, err := NewAnalyzer(cfg).Evaluate(obj)
	require.NoError(t, err)
	assert.True(t, r.Flagged(CheckUnappliedScale))
}

func TestZeroConfigToggles(t *testing.T) {
	cfg := &Config{}
	assert.NotPanics(t, func() { cfg.Enable(CheckSixplusPoles) })
	assert.True(t, cfg.IsEnabled(CheckSixplusPoles))

	cfg = &Config{}
	assert.NotPanics(t, func() { cfg.Disable(CheckTris) })
	assert.False(t, cfg.IsEnabled(CheckTris))

	cfg = &Config{}
	assert.NotPanics(t, func() { cfg.DisableAll() })
	assert.False(t, cfg.IsEnabled(CheckNgons))
	assert.True(t, cfg.IsEnabled(CheckUnappliedScale))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Enable(CheckSixplusPoles).Validate())
	assert.Error(t, DefaultConfig().Enable("bogus").Validate())

	cfg := DefaultConfig()
	cfg.ScaleEpsilon = -1
	assert.Error(t, cfg.Validate())

	assert.Error(t, DefaultConfig().SetNamePattern("("))
}

func TestSingleQuad(t *testing.T) {
	r := evaluate(t, allOn(), "Floor", mesh.Grid(1, 1))

	assert.Empty(t, resultOf(t, r, CheckTris).Faces)
	assert.Empty(t, resultOf(t, r, CheckNgons).Faces)
	assert.Equal(t, []mesh.EdgeID{0, 1, 2, 3}, resultOf(t, r, CheckNonmanifold).Edges)
	assert.Equal(t, []mesh.VertexID{0, 1, 2, 3}, resultOf(t, r, CheckNonmanifold).Verts)
	assert.Empty(t, resultOf(t, r, CheckInteriorFaces).Faces)
	assert.Empty(t, resultOf(t, r, CheckSixplusPoles).Verts)
	assert.Empty(t, resultOf(t, r, CheckThreePoles).Verts)
	assert.Equal(t, mesh.Counts{Vertices: 4, Edges: 4, Faces: 1}, r.Counts)
}

func TestTetrahedron(t *testing.T) {
	r := evaluate(t, allOn(), "Pyramid", tetrahedron())

	assert.Equal(t, []mesh.FaceID{0, 1, 2, 3}, resultOf(t, r, CheckTris).Faces)
	assert.True(t, resultOf(t, r, CheckNonmanifold).IsEmpty())
	assert.Empty(t, resultOf(t, r, CheckInteriorFaces).Faces)
	assert.Empty(t, resultOf(t, r, CheckSixplusPoles).Verts)
	assert.Len(t, resultOf(t, r, CheckThreePoles).Verts, 4)
	assert.Equal(t, 8, r.Total, "4 tris + 4 three-poles")
}

func TestDefaultNameScenario(t *testing.T) {
	r := evaluate(t, nil, "Cube.002", mesh.Cube())
	assert.True(t, r.Flagged(CheckDefaultName))
	assert.False(t, r.Flagged(CheckUnappliedScale))
	assert.True(t, r.Selection.Object)
	assert.Equal(t, 1, r.Total)
}

func TestDefaultNames(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Cube", true},
		{"Cube.001", true},
		{"Sphere.123", true},
		{"SurfTorus", true},
		{"Cube7", true},
		{"Whatever", false},
		{"NumbersOkToo.001", false},
		{"MyCube.001", false},
		{"Cube.001.002", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDefaultName(nil, tt.name))
		})
	}
}

func TestCustomNamePattern(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.SetNamePattern(`^Untitled\d*$`))
	assert.True(t, evaluate(t, cfg, "Untitled3", mesh.Cube()).Flagged(CheckDefaultName))
	assert.False(t, evaluate(t, cfg, "Cube.001", mesh.Cube()).Flagged(CheckDefaultName))
}

func TestUnappliedScale(t *testing.T) {
	tests := []struct {
		scale mesh.Vec3
		want  bool
	}{
		{mesh.Vec3{X: 1, Y: 1, Z: 1}, false},
		{mesh.Vec3{X: 1 + 1e-9, Y: 1, Z: 1 - 1e-9}, false},
		{mesh.Vec3{X: 0, Y: 0, Z: 0}, true},
		{mesh.Vec3{X: 1, Y: 2, Z: 3}, true},
		{mesh.Vec3{X: 1, Y: 1, Z: 1.1}, true},
		{mesh.Vec3{X: -1, Y: 1, Z: 1}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasUnappliedScale(tt.scale, DefaultScaleEpsilon), "%+v", tt.scale)
	}
}

func TestInteriorFace(t *testing.T) {
	m, middle := stackedCubes()
	r := evaluate(t, nil, "Tower", m)

	assert.Equal(t, []mesh.FaceID{middle}, resultOf(t, r, CheckInteriorFaces).Faces)
	nm := resultOf(t, r, CheckNonmanifold)
	assert.Len(t, nm.Edges, 4, "the middle ring edges have three faces")
	assert.Len(t, nm.Verts, 4)
}

func TestInteriorFacesExclusionLaw(t *testing.T) {
	// Three triangles hinged on one edge: the hinge has degree 3 but every
	// triangle also has boundary edges.
	b := mesh.NewBuilder()
	v0 := b.AddVertex(0, 0, 0)
	v1 := b.AddVertex(1, 0, 0)
	b.AddFace(v0, v1, b.AddVertex(0, 1, 0))
	b.AddFace(v1, v0, b.AddVertex(0, -1, 0))
	b.AddFace(v0, v1, b.AddVertex(0, 0, 1))

	r := evaluate(t, nil, "Fins", b.Build())
	assert.Empty(t, resultOf(t, r, CheckInteriorFaces).Faces)

	// Every face whose edges include one of degree <= 2 stays unflagged.
	m, _ := stackedCubes()
	idx, err := topology.Build(m)
	require.NoError(t, err)
	interior := resultOf(t, evaluate(t, nil, "Tower", m), CheckInteriorFaces).Faces
	for _, f := range idx.Faces() {
		low := false
		for _, e := range idx.FaceEdges(f) {
			if idx.EdgeDegree(e) <= 2 {
				low = true
			}
		}
		if low {
			assert.NotContains(t, interior, f)
		}
	}
}

func TestTrisAndNgonsAreDisjoint(t *testing.T) {
	b := mesh.NewBuilder()
	var v []mesh.VertexID
	for i := 0; i < 12; i++ {
		v = append(v, b.AddVertex(float64(i), float64(i*i), 0))
	}
	b.AddFace(v[0], v[1], v[2])
	b.AddFace(v[3], v[4], v[5], v[6])
	b.AddFace(v[7], v[8], v[9], v[10], v[11])

	r := evaluate(t, nil, "Mix", b.Build())
	tris := resultOf(t, r, CheckTris).Faces
	ngons := resultOf(t, r, CheckNgons).Faces
	assert.Equal(t, []mesh.FaceID{0}, tris)
	assert.Equal(t, []mesh.FaceID{2}, ngons)
	for _, f := range tris {
		assert.NotContains(t, ngons, f)
	}
}

func TestPoleThresholds(t *testing.T) {
	cfg := allOn()

	m5, c5 := fan(5)
	r5 := evaluate(t, cfg, "Fan5", m5)
	assert.Empty(t, resultOf(t, r5, CheckSixplusPoles).Verts)
	assert.Equal(t, []mesh.VertexID{c5}, resultOf(t, r5, CheckFivePoles).Verts)
	assert.Len(t, resultOf(t, r5, CheckThreePoles).Verts, 5, "rim vertices have three edges")

	m6, c6 := fan(6)
	r6 := evaluate(t, cfg, "Fan6", m6)
	assert.Equal(t, []mesh.VertexID{c6}, resultOf(t, r6, CheckSixplusPoles).Verts)
	assert.Empty(t, resultOf(t, r6, CheckFivePoles).Verts)
}

func TestStrayVertexIsNonmanifold(t *testing.T) {
	b := mesh.NewBuilder()
	for i := 0; i < 4; i++ {
		b.AddVertex(float64(i), 0, 0)
	}
	b.AddFace(0, 1, 2)
	r := evaluate(t, nil, "Stray", b.Build())
	assert.Contains(t, resultOf(t, r, CheckNonmanifold).Verts, mesh.VertexID(3))
}

func TestEmptyMesh(t *testing.T) {
	b := mesh.NewBuilder()
	b.AddVertex(0, 0, 0)
	r := evaluate(t, nil, "Cube.003", b.Build())

	require.Len(t, r.Warnings, 1)
	assert.Equal(t, WarnEmptyMesh, r.Warnings[0].Code)
	assert.True(t, resultOf(t, r, CheckNonmanifold).IsEmpty(), "geometry checks are skipped")
	assert.True(t, r.Flagged(CheckDefaultName), "object checks still run")
	assert.Equal(t, 1, r.Total)
}

func TestNoChecksEnabled(t *testing.T) {
	cfg := DefaultConfig().DisableAll()
	r := evaluate(t, cfg, "Cube", pentagon())
	assert.True(t, r.IsEmpty())
	require.Len(t, r.Results, 1, "only the always-on check runs")
	assert.Equal(t, CheckUnappliedScale, r.Results[0].CheckID)

	// The always-on check still flags a scaled object.
	obj := scene.NewObject("Cube", pentagon())
	obj.Scale = mesh.Vec3{X: 1, Y: 1, Z: 3}
	r, err := NewAnalyzer(cfg).Evaluate(obj)
	require.NoError(t, err)
	assert.False(t, r.IsEmpty())
	assert.Equal(t, 1, r.Total)
}

func TestDisabledChecksDoNotRun(t *testing.T) {
	cfg := DefaultConfig().Disable(CheckTris)
	r := evaluate(t, cfg, "Pyramid", tetrahedron())
	_, ok := r.Result(CheckTris)
	assert.False(t, ok)
	assert.True(t, r.IsEmpty())
}

func TestSelectionIsUnion(t *testing.T) {
	r := evaluate(t, allOn(), "Fan6", func() *mesh.Mesh { m, _ := fan(6); return m }())

	// Rim edges are boundary edges, so nonmanifold and three-pole both flag
	// the rim vertices; the six-pole check adds the center.
	assert.Len(t, r.Selection.Verts, 7)
	assert.Len(t, r.Selection.Faces, 6)
	assert.Len(t, r.Selection.Edges, 6)

	sum := 0
	for _, res := range r.Results {
		sum += res.Count
	}
	assert.Equal(t, sum, r.Total)
	assert.Greater(t, r.Total, r.Selection.Len(), "Total counts overlapping flags per check")
}

func TestEvaluateIsDeterministic(t *testing.T) {
	m, _ := stackedCubes()
	obj := scene.NewObject("Tower", m)
	a := NewAnalyzer(allOn())
	r1, err := a.Evaluate(obj)
	require.NoError(t, err)
	r2, err := a.Evaluate(obj)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestEvaluateErrors(t *testing.T) {
	a := NewAnalyzer(nil)

	_, err := a.Evaluate(nil)
	assert.Error(t, err)

	_, err = a.Evaluate(scene.NewObject("Lamp", nil))
	assert.True(t, errors.Is(err, ErrNoMesh))

	bad := &mesh.Mesh{
		Vertices: []mesh.Vertex{{ID: 0}, {ID: 1}},
		Faces:    []mesh.Face{{ID: 0, Loop: []mesh.VertexID{0, 1, 5}}},
	}
	_, err = a.Evaluate(scene.NewObject("Broken", bad))
	assert.True(t, errors.Is(err, topology.ErrMalformedMesh))
	var merr *topology.MalformedMeshError
	assert.True(t, errors.As(err, &merr))
}

func TestSummarize(t *testing.T) {
	reports := []*Report{
		evaluate(t, nil, "Pyramid", tetrahedron()),
		evaluate(t, nil, "Widget", mesh.Cube()),
		evaluate(t, nil, "Cube.001", pentagon()),
	}
	s := Summarize(reports)
	assert.Equal(t, 3, s.Objects)
	assert.Equal(t, 2, s.WithLint)

	byID := map[string]CheckTotal{}
	for _, ct := range s.Checks {
		byID[ct.CheckID] = ct
	}
	assert.Equal(t, 4, byID[CheckTris].Count)
	assert.Equal(t, 1, byID[CheckNgons].Count)
	assert.Equal(t, 1, byID[CheckDefaultName].Objects)
	assert.Equal(t, CheckTris, s.Checks[0].CheckID)
}
