// Package scene models the objects a host editor hands to the linter: an
// ordered list of named objects, each with a scale and an optional mesh
// snapshot, plus the designated active object that is scanned first.
package scene

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/chazu/meshlint/pkg/mesh"
)

// objectNamespace scopes the deterministic object IDs.
var objectNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/chazu/meshlint/object"))

// Object is a named scene object. Mesh is nil for objects that carry no
// polygon data (curves, lights, empties); the scanner skips those.
type Object struct {
	ID    string
	Name  string
	Scale mesh.Vec3
	Mesh  *mesh.Mesh
}

// NewObject creates an object with identity scale.
func NewObject(name string, m *mesh.Mesh) *Object {
	return &Object{
		Name:  name,
		Scale: mesh.Vec3{X: 1, Y: 1, Z: 1},
		Mesh:  m,
	}
}

// IsMesh reports whether the object carries mesh data.
func (o *Object) IsMesh() bool {
	return o != nil && o.Mesh != nil
}

func (o *Object) String() string {
	return fmt.Sprintf("%q", o.Name)
}

// Scene is an ordered sequence of objects with one active object.
// Object names are unique within a scene.
type Scene struct {
	objects []*Object
	byName  map[string]*Object
	active  *Object
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{byName: make(map[string]*Object)}
}

// Add appends an object. The first object added becomes active until
// SetActive says otherwise. Objects without an ID get a deterministic one
// derived from their name and position in the scene.
func (s *Scene) Add(o *Object) error {
	if o == nil {
		return fmt.Errorf("cannot add nil object")
	}
	if o.Name == "" {
		return fmt.Errorf("object %d has no name", len(s.objects))
	}
	if _, dup := s.byName[o.Name]; dup {
		return fmt.Errorf("duplicate object name %q", o.Name)
	}
	if o.ID == "" {
		o.ID = uuid.NewSHA1(objectNamespace, []byte(o.Name+"/"+strconv.Itoa(len(s.objects)))).String()
	}
	s.objects = append(s.objects, o)
	s.byName[o.Name] = o
	if s.active == nil {
		s.active = o
	}
	return nil
}

// SetActive designates the named object as the active object.
func (s *Scene) SetActive(name string) error {
	o, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("no object named %q", name)
	}
	s.active = o
	return nil
}

// Active returns the active object, or nil for an empty scene.
func (s *Scene) Active() *Object {
	return s.active
}

// Lookup returns the object with the given name.
func (s *Scene) Lookup(name string) (*Object, bool) {
	o, ok := s.byName[name]
	return o, ok
}

// Objects returns the objects in scene order.
func (s *Scene) Objects() []*Object {
	return s.objects
}

// Len returns the number of objects.
func (s *Scene) Len() int {
	return len(s.objects)
}

// ScanOrder returns the visiting order for a scan: the active object first,
// then every other object in scene order. Each object appears once.
func (s *Scene) ScanOrder() []*Object {
	order := make([]*Object, 0, len(s.objects))
	if s.active != nil {
		order = append(order, s.active)
	}
	for _, o := range s.objects {
		if o != s.active {
			order = append(order, o)
		}
	}
	return order
}
