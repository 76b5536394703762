package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Placement is a rigid transform: a rotation followed by a translation.
// Applying a placement maps p to R(p) + T. Placements compose and invert,
// so a reorientation can always be undone exactly (up to floating error).
type Placement struct {
	rot   r3.Rotation
	trans Vec
}

// Identity returns the placement that maps every point to itself.
func Identity() Placement {
	return Placement{rot: r3.NewRotation(0, Vec{Z: 1})}
}

// Translation returns a pure translation placement.
func Translation(t Vec) Placement {
	return Placement{rot: r3.NewRotation(0, Vec{Z: 1}), trans: t}
}

// RotationOnly returns a pure rotation of alpha radians about axis.
func RotationOnly(alpha float64, axis Vec) Placement {
	return Placement{rot: r3.NewRotation(alpha, axis)}
}

// AlignVectors returns the pure rotation that maps the from direction onto
// the to direction. Anti-parallel inputs rotate half a turn about an
// arbitrary axis perpendicular to from.
func AlignVectors(from, to Vec) Placement {
	f := r3.Unit(from)
	t := r3.Unit(to)
	axis := r3.Cross(f, t)
	sin := r3.Norm(axis)
	cos := r3.Dot(f, t)
	if sin < Epsilon {
		if cos > 0 {
			return Identity()
		}
		// Anti-parallel: any perpendicular axis serves.
		perp := r3.Cross(f, Vec{X: 1})
		if r3.Norm(perp) < Epsilon {
			perp = r3.Cross(f, Vec{Y: 1})
		}
		return Placement{rot: r3.NewRotation(math.Pi, r3.Unit(perp))}
	}
	return Placement{rot: r3.NewRotation(math.Atan2(sin, cos), r3.Scale(1/sin, axis))}
}

// Transform applies the placement to a coordinate vector.
func (pl Placement) Transform(v Vec) Vec {
	return r3.Add(pl.rot.Rotate(v), pl.trans)
}

// Rotate applies only the rotation part. Used for direction vectors such
// as plane normals, which translate trivially.
func (pl Placement) Rotate(v Vec) Vec {
	return pl.rot.Rotate(v)
}

// TransformPoint applies the placement to a point's coordinates, keeping
// its name, radius and diameter tags.
func (pl Placement) TransformPoint(p Point) Point {
	p.Pos = pl.Transform(p.Pos)
	return p
}

// Then returns the composition that applies pl first, next second.
func (pl Placement) Then(next Placement) Placement {
	return Placement{
		rot:   r3.Rotation(quat.Mul(quat.Number(next.rot), quat.Number(pl.rot))),
		trans: r3.Add(next.rot.Rotate(pl.trans), next.trans),
	}
}

// Inverse returns the placement that undoes pl.
func (pl Placement) Inverse() Placement {
	inv := r3.Rotation(quat.Conj(quat.Number(pl.rot)))
	return Placement{
		rot:   inv,
		trans: r3.Scale(-1, inv.Rotate(pl.trans)),
	}
}
