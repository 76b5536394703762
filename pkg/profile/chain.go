package profile

import (
	"fmt"
	"math"

	"github.com/chazu/lamina/pkg/geom"
)

// suppressEpsilon is the absolute tolerance (in model units) below which
// two adjacent arcs are considered to meet exactly, suppressing the line
// segment between them. The constant is absolute regardless of model
// scale; see DESIGN.md.
const suppressEpsilon = 1e-9

// buildChain turns an ordered closed point loop into the ordered primitive
// chain for that loop: one line per edge, one tangent arc per rounded
// corner, with degenerate lines suppressed. The result is circularly
// linked through the primitives' Next/Prev positions.
//
// The algorithm makes four passes over the n-point loop (indices mod n):
//
//  1. Solve the tangent arc for every point with a positive radius.
//  2. Build the candidate line into each point, from the previous arc's
//     finish (or the previous point) to this point's arc start (or the
//     point itself), suppressing it when the two flanking arcs meet
//     exactly, and failing when their tangent legs overshoot the edge.
//  3. Concatenate, in vertex order, each surviving line followed by its
//     vertex's arc.
//  4. Link the result circularly for constraint-time neighbor lookups.
func buildChain(points []geom.Point) ([]Primitive, error) {
	n := len(points)
	if n == 0 {
		return nil, fmt.Errorf("cannot build a chain from an empty point loop")
	}

	// Pass 1: per-corner tangent arcs, 1-to-1 with the points.
	arcs := make([]*Primitive, n)
	for i, at := range points {
		if at.Radius <= 0 {
			continue
		}
		before := points[(i-1+n)%n]
		after := points[(i+1)%n]
		arc, err := solveArc(before, at, after)
		if err != nil {
			return nil, err
		}
		arcs[i] = &arc
	}

	// Pass 2: per-corner candidate lines, 1-to-1 with the points.
	lines := make([]*Primitive, n)
	for i, at := range points {
		beforeIdx := (i - 1 + n) % n
		before := points[beforeIdx]
		beforeArc := arcs[beforeIdx]
		atArc := arcs[i]

		start := before.Pos
		if beforeArc != nil {
			start = beforeArc.finish
		}
		finish := at.Pos
		if atArc != nil {
			finish = atArc.start
		}

		if beforeArc != nil && atArc != nil {
			edge := geom.DistanceXY(before.Pos, at.Pos)
			legs := beforeArc.finishLength + atArc.startLength
			if math.Abs(legs-edge) < suppressEpsilon {
				// The arcs meet exactly; no line between them.
				continue
			}
			if legs > edge {
				return nil, fmt.Errorf("arcs at %q and %q too large for edge (legs %g > edge %g)",
					before.Name, at.Name, legs, edge)
			}
		}
		line := newLine(start, finish, at.Name)
		lines[i] = &line
	}

	// Pass 3: assemble in vertex order.
	chain := make([]Primitive, 0, 2*n)
	for i := range points {
		if lines[i] != nil {
			chain = append(chain, *lines[i])
		}
		if arcs[i] != nil {
			chain = append(chain, *arcs[i])
		}
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("point loop produced no primitives")
	}

	// Pass 4: circular linking by arena position.
	size := len(chain)
	for i := range chain {
		chain[i].prev = (i - 1 + size) % size
		chain[i].next = (i + 1) % size
	}
	return chain, nil
}
