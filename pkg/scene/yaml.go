package scene

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chazu/meshlint/pkg/mesh"
)

// fileScene is the on-disk layout of a YAML scene:
//
//	active: Cube.001
//	objects:
//	  - name: Cube.001
//	    scale: [1, 1, 1]
//	    mesh:
//	      vertices: [[0,0,0], [1,0,0], [1,1,0], [0,1,0]]
//	      edges: [[0,1]]
//	      faces: [[0,1,2,3]]
//
// Vertex, edge and face IDs are list positions. Face-implied edges may be
// omitted from the edge list. An object without a mesh key is a non-mesh
// object.
type fileScene struct {
	Active  string       `yaml:"active"`
	Objects []fileObject `yaml:"objects"`
}

type fileObject struct {
	Name  string    `yaml:"name"`
	Scale []float64 `yaml:"scale"`
	Mesh  *fileMesh `yaml:"mesh"`
}

type fileMesh struct {
	Vertices [][]float64 `yaml:"vertices"`
	Edges    [][]int     `yaml:"edges"`
	Faces    [][]int     `yaml:"faces"`
}

// LoadYAML reads a scene from YAML. Structural problems in the document
// (vertex or scale arity, unknown active object) are returned as errors;
// topological problems, edges of the wrong arity included, are left for the
// analysis to report per object.
func LoadYAML(r io.Reader) (*Scene, error) {
	var doc fileScene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return New(), nil
		}
		return nil, fmt.Errorf("decode scene: %w", err)
	}

	s := New()
	for i, fo := range doc.Objects {
		o, err := fo.toObject()
		if err != nil {
			return nil, fmt.Errorf("object %d (%q): %w", i, fo.Name, err)
		}
		if err := s.Add(o); err != nil {
			return nil, err
		}
	}
	if doc.Active != "" {
		if err := s.SetActive(doc.Active); err != nil {
			return nil, fmt.Errorf("active: %w", err)
		}
	}
	return s, nil
}

// LoadYAMLFile reads a YAML scene from path.
func LoadYAMLFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadYAML(f)
}

func (fo fileObject) toObject() (*Object, error) {
	o := NewObject(fo.Name, nil)
	switch len(fo.Scale) {
	case 0:
	case 3:
		o.Scale = mesh.Vec3{X: fo.Scale[0], Y: fo.Scale[1], Z: fo.Scale[2]}
	default:
		return nil, fmt.Errorf("scale needs 3 components, got %d", len(fo.Scale))
	}
	if fo.Mesh == nil {
		return o, nil
	}

	verts := make([]mesh.Vec3, len(fo.Mesh.Vertices))
	for i, p := range fo.Mesh.Vertices {
		if len(p) != 3 {
			return nil, fmt.Errorf("vertex %d needs 3 coordinates, got %d", i, len(p))
		}
		verts[i] = mesh.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}
	o.Mesh = mesh.FromIndexLists(verts, fo.Mesh.Edges, fo.Mesh.Faces)
	return o, nil
}
