// Package kernel defines the geometry kernel that turns solid descriptions
// into triangle soup. Scenes built from the scene DSL use it for their solid
// primitives; the soup is welded into an indexed polygon mesh before linting.
package kernel

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds, combines and tessellates solids. Operations never modify
// their inputs; each returns a new Solid.
type Kernel interface {
	// Box is centered on the origin.
	Box(x, y, z float64) Solid
	// Cylinder runs along Z, centered on the origin.
	Cylinder(height, radius float64, segments int) Solid
	Sphere(radius float64) Solid

	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	Translate(s Solid, x, y, z float64) Solid
	// Rotate takes Euler angles in degrees, applied X then Y then Z.
	Rotate(s Solid, x, y, z float64) Solid
	// Scale bakes per-axis factors into the geometry. Unlike an object's
	// scale it leaves nothing unapplied.
	Scale(s Solid, x, y, z float64) Solid

	// ToMesh tessellates a solid into triangle soup.
	ToMesh(s Solid) (*Mesh, error)
}
