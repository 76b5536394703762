// Package geom defines the geometric primitives shared by the lamina
// profile synthesizer: tagged points, vector helpers over gonum's r3
// vectors, and rigid placements (rotation plus translation).
package geom

import (
	"fmt"
	"math"

	jgeom "github.com/jbeda/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a 3D coordinate vector. It aliases gonum's r3.Vec so that the
// r3 free functions (Add, Sub, Scale, Cross, ...) apply directly.
type Vec = r3.Vec

// Point is an immutable tagged point. Radius > 0 marks the point as a
// polygon corner to be rounded into a tangent arc. Diameter > 0 carries
// the grouping diameter when the point is a circle center. Callers
// construct Points; the synthesis core only reads them.
type Point struct {
	Pos      Vec
	Name     string
	Radius   float64
	Diameter float64
}

// NewPoint returns a plain tagged point with no rounding radius.
func NewPoint(x, y, z float64, name string) Point {
	return Point{Pos: Vec{X: x, Y: y, Z: z}, Name: name}
}

// NewCorner returns a point that is rounded to the given radius when
// used as a polygon corner.
func NewCorner(x, y, z, radius float64, name string) (Point, error) {
	if radius < 0 {
		return Point{}, fmt.Errorf("corner %q: negative radius %g", name, radius)
	}
	return Point{Pos: Vec{X: x, Y: y, Z: z}, Name: name, Radius: radius}, nil
}

// XY projects the point onto the sketch plane.
func (p Point) XY() jgeom.Coord {
	return jgeom.Coord{X: p.Pos.X, Y: p.Pos.Y}
}

// UnitXY normalizes v in X and Y only, ignoring Z. It fails when the XY
// projection has (near) zero length, which arises for degenerate corner
// geometry.
func UnitXY(v Vec) (Vec, error) {
	length := math.Hypot(v.X, v.Y)
	if length < Epsilon {
		return Vec{}, fmt.Errorf("cannot normalize near-zero XY vector (%g, %g)", v.X, v.Y)
	}
	return Vec{X: v.X / length, Y: v.Y / length}, nil
}

// AngleXY returns the plane angle of v, atan2(y, x).
func AngleXY(v Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

// DistanceXY returns the distance between a and b projected onto the
// sketch plane.
func DistanceXY(a, b Vec) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Epsilon is the tolerance below which a length is treated as zero.
const Epsilon = 1e-10

// RectAround returns the degenerate rectangle containing a single coordinate,
// suitable for growing with ExpandToContainCoord.
func RectAround(c jgeom.Coord) jgeom.Rect {
	return jgeom.Rect{Min: c, Max: c}
}
