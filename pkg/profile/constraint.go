package profile

import "fmt"

// ConstraintKind discriminates the closed set of constraint variants.
type ConstraintKind int

const (
	ConstraintRadius ConstraintKind = iota
	ConstraintDistanceX
	ConstraintDistanceY
	ConstraintTangent
	ConstraintCoincident
)

// String returns the host-facing constraint name.
func (k ConstraintKind) String() string {
	switch k {
	case ConstraintRadius:
		return "Radius"
	case ConstraintDistanceX:
		return "DistanceX"
	case ConstraintDistanceY:
		return "DistanceY"
	case ConstraintTangent:
		return "Tangent"
	case ConstraintCoincident:
		return "Coincident"
	}
	return fmt.Sprintf("ConstraintKind(%d)", int(k))
}

// Constraint pins one or two primitive anchors. Radius uses only A's
// primitive and Value; Tangent and Coincident use A and B; the distance
// constraints use A, B and Value.
type Constraint struct {
	Kind  ConstraintKind
	A, B  Anchor
	Value float64
}

func radiusOf(p *Primitive) Constraint {
	return Constraint{Kind: ConstraintRadius, A: Anchor{Primitive: p.Index()}, Value: p.radius}
}

func distanceX(from, to Anchor, value float64) Constraint {
	return Constraint{Kind: ConstraintDistanceX, A: from, B: to, Value: value}
}

func distanceY(from, to Anchor, value float64) Constraint {
	return Constraint{Kind: ConstraintDistanceY, A: from, B: to, Value: value}
}

func tangent(a, b Anchor) Constraint {
	return Constraint{Kind: ConstraintTangent, A: a, B: b}
}

func coincident(a, b Anchor) Constraint {
	return Constraint{Kind: ConstraintCoincident, A: a, B: b}
}

// synthesizeChain emits the minimal constraint list for one circularly
// linked chain. It makes a single pass comparing each primitive to its
// predecessor:
//
//   - An arc always gets a Radius constraint. Its center is pinned to the
//     origin with DistanceX/DistanceY unless both chain neighbors are also
//     arcs: a sandwiched arc is already fully determined by its two
//     tangency constraints, and pinning its center would over-constrain.
//   - Every junction is glued: if either side is an arc, a single Tangent
//     between the predecessor's finish anchor and this primitive's start
//     anchor; otherwise a Coincident followed by DistanceX/DistanceY
//     pinning the joint to the origin, since two straight segments do not
//     otherwise fix their joint in space.
//
// The per-primitive emission order (Radius, Center-X, Center-Y, Junction,
// Distance-X, Distance-Y) is fixed for output determinism.
func synthesizeChain(chain []Primitive, origin Anchor, constraints []Constraint) []Constraint {
	for i := range chain {
		at := &chain[i]
		before := &chain[at.prev]
		after := &chain[at.next]

		atArc := at.kind == KindArc
		beforeArc := before.kind == KindArc
		afterArc := after.kind == KindArc

		if atArc {
			constraints = append(constraints, radiusOf(at))
			if !(beforeArc && afterArc) {
				constraints = append(constraints,
					distanceX(origin, at.CenterAnchor(), at.center.X),
					distanceY(origin, at.CenterAnchor(), at.center.Y),
				)
			}
		}

		if beforeArc || atArc {
			constraints = append(constraints, tangent(before.FinishAnchor(), at.StartAnchor()))
		} else {
			constraints = append(constraints,
				coincident(before.FinishAnchor(), at.StartAnchor()),
				distanceX(origin, at.StartAnchor(), at.start.X),
				distanceY(origin, at.StartAnchor(), at.start.Y),
			)
		}
	}
	return constraints
}
