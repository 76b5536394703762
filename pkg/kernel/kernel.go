// Package kernel defines the abstract solid-modeling kernel interface
// that consumes synthesized profiles. Implementations (sdfx) provide the
// actual extrude/pocket/drill operations behind this interface, so
// backends can be swapped without changing profile synthesis.
package kernel

// OutlinePoint is one vertex of a closed outline handed to the kernel.
// Radius > 0 rounds the vertex with a tangent arc of that radius.
type OutlinePoint struct {
	X, Y   float64
	Radius float64
}

// Outline is a closed loop of outline points in sketch-plane coordinates.
type Outline []OutlinePoint

// Solid is an opaque handle to a kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract profile-cutting kernel interface.
type Kernel interface {
	// Extrude cuts the exterior outline from stock: the resulting solid
	// is the outline extruded from z=0 up to z=depth.
	Extrude(outline Outline, depth float64) (Solid, error)

	// Pocket clears the outline's interior from the top face of s down
	// by depth.
	Pocket(s Solid, outline Outline, depth float64) (Solid, error)

	// Drill removes a cylinder of the given diameter, centered at (x, y)
	// on the top face of s, down by depth.
	Drill(s Solid, x, y, diameter, depth float64) (Solid, error)

	// ToMesh converts a solid into a triangle mesh.
	ToMesh(s Solid) (*Mesh, error)
}
