package profile

import (
	"fmt"
	"math"

	"github.com/chazu/lamina/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// solveArc fits the tangent arc that rounds the corner at apex. The arc of
// the given radius is tangent to segment begin-apex at its start point and
// to segment apex-end at its finish point.
//
// Geometry: the center C lies on the interior angle bisector through the
// apex A. With S the start tangent point, the triangle A-S-C has a right
// angle at S (tangency), |SC| = radius, so |AC| = radius / sin(<SAC) and
// |AS| = sqrt(|AC|^2 - radius^2). By symmetry |AF| = |AS| on the finish
// side.
func solveArc(begin, apex, end geom.Point) (Primitive, error) {
	r := apex.Radius
	if r < geom.Epsilon {
		return Primitive{}, fmt.Errorf("corner %q: no arc with zero radius", apex.Name)
	}

	b := begin.Pos
	a := apex.Pos
	e := end.Pos

	unitAB, err := geom.UnitXY(r3.Sub(b, a))
	if err != nil {
		return Primitive{}, fmt.Errorf("corner %q: begin coincides with apex: %w", apex.Name, err)
	}
	unitAE, err := geom.UnitXY(r3.Sub(e, a))
	if err != nil {
		return Primitive{}, fmt.Errorf("corner %q: end coincides with apex: %w", apex.Name, err)
	}

	// The bisector direction degenerates when begin, apex and end are
	// colinear (the two unit vectors cancel).
	unitAM, err := geom.UnitXY(r3.Add(unitAB, unitAE))
	if err != nil {
		return Primitive{}, fmt.Errorf("corner %q: colinear apex (%q, %q, %q): %w",
			apex.Name, begin.Name, apex.Name, end.Name, err)
	}

	// Half the interior angle at the apex; the center is colinear with the
	// bisector so the angle from AB to AM is the angle <SAC.
	abAngle := geom.AngleXY(unitAB)
	amAngle := geom.AngleXY(unitAM)
	sacAngle := math.Mod(math.Abs(abAngle-amAngle), math.Pi)

	sin := math.Sin(sacAngle)
	if math.Abs(sin) < geom.Epsilon {
		return Primitive{}, fmt.Errorf("corner %q: degenerate apex angle, cannot size arc", apex.Name)
	}
	acLength := r / sin
	asLength := math.Sqrt(acLength*acLength - r*r)
	afLength := asLength // tangent legs are symmetric

	center := r3.Add(a, r3.Scale(acLength, unitAM))
	start := r3.Add(a, r3.Scale(asLength, unitAB))
	finish := r3.Add(a, r3.Scale(afLength, unitAE))

	startAngle := geom.AngleXY(r3.Sub(start, center))
	finishAngle := geom.AngleXY(r3.Sub(finish, center))

	// A rounded polygon corner never sweeps more than half a turn, so a
	// single wrap correction suffices.
	sweep := finishAngle - startAngle
	if sweep > math.Pi {
		sweep -= 2 * math.Pi
	} else if sweep <= -math.Pi {
		sweep += 2 * math.Pi
	}
	endAngle := startAngle + sweep

	// The emitted arc must traverse its angular span in the non-negative
	// direction, so a negative sweep swaps the two emitted angles. This
	// swap covers the angles only; the tangent points keep their roles,
	// and StartKey/FinishKey compensate when constraints are bound.
	if sweep < 0 {
		startAngle, endAngle = endAngle, startAngle
	}

	return Primitive{
		kind:         KindArc,
		name:         apex.Name,
		index:        unsetIndex,
		start:        start,
		finish:       finish,
		begin:        b,
		apex:         a,
		end:          e,
		center:       center,
		radius:       r,
		sweepAngle:   sweep,
		startAngle:   startAngle,
		finishAngle:  endAngle,
		startLength:  asLength,
		finishLength: afLength,
	}, nil
}

// newFullCircle represents a circle element as a single full-sweep arc
// primitive: the host draws it from angle 0 back to itself, and only its
// radius and center are ever constrained.
func newFullCircle(center geom.Vec, radius float64, name string) Primitive {
	rim := r3.Add(center, geom.Vec{X: radius})
	return Primitive{
		kind:        KindArc,
		name:        name,
		index:       unsetIndex,
		start:       rim,
		finish:      rim,
		center:      center,
		radius:      radius,
		sweepAngle:  2 * math.Pi,
		startAngle:  0,
		finishAngle: 2 * math.Pi,
	}
}
