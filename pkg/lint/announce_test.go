package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chazu/meshlint/pkg/mesh"
)

func TestDepluralize(t *testing.T) {
	tests := []struct {
		count int
		in    string
		want  string
	}{
		{1, "foos", "foo"},
		{2, "foos", "foos"},
		{0, "faces", "faces"},
		{1, "FOOS", "FOOS"},
		{1, "foxes", "foxe"},
		{1, "sheep", "sheep"},
		{1, "Tris", "Tri"},
		{1, "verts", "vert"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Depluralize(tt.count, tt.in), "%d %s", tt.count, tt.in)
	}
}

func TestDiff(t *testing.T) {
	clean := evaluate(t, nil, "Widget", mesh.Grid(1, 1))

	b := mesh.NewBuilder()
	for i := 0; i < 4; i++ {
		b.AddVertex(float64(i), float64(i%2), 0)
	}
	b.AddFace(0, 1, 2)
	b.AddFace(0, 2, 3)
	twoTris := evaluate(t, nil, "Widget", b.Build())

	t.Run("from nothing", func(t *testing.T) {
		assert.Equal(t,
			"Found Tris: 2 faces, Nonmanifold Elements: 4 verts, 4 edges",
			Diff(nil, twoTris))
	})

	t.Run("from clean quad", func(t *testing.T) {
		// The quad already had 4 boundary verts and edges.
		assert.Equal(t, "Found Tris: 2 faces", Diff(clean, twoTris))
	})

	t.Run("nothing grew", func(t *testing.T) {
		assert.Equal(t, "", Diff(twoTris, clean))
		assert.Equal(t, "", Diff(twoTris, twoTris))
	})

	t.Run("singular", func(t *testing.T) {
		before := evaluate(t, nil, "Widget", mesh.Cube())
		after := evaluate(t, nil, "Cube.001", mesh.Cube())
		assert.Equal(t, "Found Default Name: 1 object", Diff(before, after))
	})
}

func TestCriticisms(t *testing.T) {
	scaled := evaluate(t, nil, "Cube.001", mesh.Cube())
	scaledObj := *scaled
	scaledObj.Results = append([]Result(nil), scaled.Results...)
	for i := range scaledObj.Results {
		if scaledObj.Results[i].CheckID == CheckUnappliedScale {
			scaledObj.Results[i].Finding = Finding{Object: true}
			scaledObj.Results[i].Count = 1
		}
	}

	t.Run("no geometry problems", func(t *testing.T) {
		assert.Equal(t, []string{
			`...but "Cube.001" has an unapplied scale.`,
			`...and also "Cube.001" is not a great name.`,
		}, Criticisms([]*Report{&scaledObj}))
	})

	t.Run("after geometry problems", func(t *testing.T) {
		pyramid := evaluate(t, nil, "Pyramid", tetrahedron())
		assert.Equal(t, []string{
			`...and also "Cube.001" is not a great name.`,
		}, Criticisms([]*Report{pyramid, scaled}))
	})

	t.Run("nothing to say", func(t *testing.T) {
		assert.Empty(t, Criticisms([]*Report{evaluate(t, nil, "Widget", mesh.Cube())}))
	})
}
