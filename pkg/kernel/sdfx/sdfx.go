// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"

	"github.com/chazu/lamina/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// defaultSmoothFacets controls how many facets approximate a rounded
// outline corner in the SDF polygon.
const defaultSmoothFacets = 16

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// outline2D builds the closed SDF2 region for an outline, rounding
// radius-bearing vertices with the polygon builder's corner smoothing.
func outline2D(outline kernel.Outline) (sdf.SDF2, error) {
	if len(outline) < 3 {
		return nil, fmt.Errorf("outline needs at least 3 points, got %d", len(outline))
	}
	poly := sdf.NewPolygon()
	for _, p := range outline {
		v := poly.Add(p.X, p.Y)
		if p.Radius > 0 {
			v.Smooth(p.Radius, defaultSmoothFacets)
		}
	}
	s2, err := sdf.Polygon2D(poly.Vertices())
	if err != nil {
		return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
	}
	return s2, nil
}

// lift shifts an extrusion (centered about z=0 by sdf.Extrude3D) so it
// spans [base, base+height].
func lift(s sdf.SDF3, base, height float64) sdf.SDF3 {
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: base + height/2}))
}

// Extrude cuts the exterior outline from stock. The result spans z=0 to
// z=depth so that pocket and drill depths measure from the top face.
func (k *SdfxKernel) Extrude(outline kernel.Outline, depth float64) (kernel.Solid, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("extrude depth %g must be positive", depth)
	}
	s2, err := outline2D(outline)
	if err != nil {
		return nil, err
	}
	return wrap(lift(sdf.Extrude3D(s2, depth), 0, depth)), nil
}

// Pocket clears the outline's interior from the top face of s down by depth.
func (k *SdfxKernel) Pocket(s kernel.Solid, outline kernel.Outline, depth float64) (kernel.Solid, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("pocket depth %g must be positive", depth)
	}
	s2, err := outline2D(outline)
	if err != nil {
		return nil, err
	}
	_, max := s.BoundingBox()
	cutter := lift(sdf.Extrude3D(s2, depth), max[2]-depth, depth)
	return wrap(sdf.Difference3D(unwrap(s), cutter)), nil
}

// Drill removes a cylinder centered at (x, y) on the top face of s.
func (k *SdfxKernel) Drill(s kernel.Solid, x, y, diameter, depth float64) (kernel.Solid, error) {
	if diameter <= 0 || depth <= 0 {
		return nil, fmt.Errorf("drill diameter %g and depth %g must be positive", diameter, depth)
	}
	cyl, err := sdf.Cylinder3D(depth, diameter/2, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Cylinder3D: %w", err)
	}
	_, max := s.BoundingBox()
	cutter := sdf.Transform3D(cyl, sdf.Translate3d(v3.Vec{X: x, Y: y, Z: max[2] - depth/2}))
	return wrap(sdf.Difference3D(unwrap(s), cutter)), nil
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(defaultMeshCells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
