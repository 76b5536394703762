// Package profile converts closed point loops and circles into fully
// dimensioned 2D profiles: an ordered chain of line/arc primitives plus a
// minimal constraint set that pins every primitive to an explicit origin.
// A solid-modeling host consumes the result to cut, extrude and drill.
package profile

import (
	"fmt"

	"github.com/chazu/lamina/pkg/geom"
)

// Kind discriminates the closed set of primitive variants.
type Kind int

const (
	KindPointMarker Kind = iota
	KindLine
	KindArc
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindPointMarker:
		return "PointMarker"
	case KindLine:
		return "Line"
	case KindArc:
		return "Arc"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// AnchorKey identifies which sub-point of a primitive a constraint binds
// to. The numeric values match the sketch host's vertex numbering.
type AnchorKey int

const (
	AnchorNone   AnchorKey = 0 // whole-primitive constraints (Radius)
	AnchorStart  AnchorKey = 1
	AnchorFinish AnchorKey = 2
	AnchorCenter AnchorKey = 3
)

// RootIndex is the host's own origin primitive. The synthetic lower-left
// origin marker is pinned to it so the profile lands at its true location.
const RootIndex = -1

// unsetIndex marks a primitive whose chain index has not been assigned.
const unsetIndex = -1

// Anchor names a sub-point of an indexed primitive.
type Anchor struct {
	Primitive int
	Key       AnchorKey
}

// Primitive is one link of a feature chain: a line segment, a tangent arc,
// or a point marker. The variant is closed; consumers switch on Kind
// exhaustively. Primitives live in a flat arena and refer to their chain
// neighbors by arena position, not by pointer.
type Primitive struct {
	kind Kind
	name string

	index      int // sketch-wide index, assigned exactly once
	next, prev int // positions within the owning element's chain

	// Line and point data. For arcs, start/finish are the tangent points.
	start  geom.Vec
	finish geom.Vec

	// Arc data.
	begin, apex, end geom.Vec
	center           geom.Vec
	radius           float64
	sweepAngle       float64
	startAngle       float64 // canonicalized: swapped with finishAngle when sweep < 0
	finishAngle      float64
	startLength      float64 // |apex - start tangent point|
	finishLength     float64 // |apex - finish tangent point|
}

func newLine(start, finish geom.Vec, name string) Primitive {
	return Primitive{kind: KindLine, name: name, index: unsetIndex, start: start, finish: finish}
}

func newPointMarker(at geom.Vec, name string) Primitive {
	return Primitive{kind: KindPointMarker, name: name, index: unsetIndex, start: at, finish: at}
}

// Kind returns the primitive variant tag.
func (p *Primitive) Kind() Kind { return p.kind }

// Name returns the identity tag inherited from the source point.
func (p *Primitive) Name() string { return p.name }

// Index returns the sketch-wide primitive index. Reading it before
// assignment is a programming error.
func (p *Primitive) Index() int {
	if p.index == unsetIndex {
		panic(fmt.Sprintf("profile: index of %s %q read before assignment", p.kind, p.name))
	}
	return p.index
}

// setIndex assigns the sketch-wide index. Indices are assigned once, in
// encounter order; re-assignment is a programming error.
func (p *Primitive) setIndex(index int) {
	if p.index != unsetIndex {
		panic(fmt.Sprintf("profile: index of %s %q already set to %d", p.kind, p.name, p.index))
	}
	p.index = index
}

// Next and Prev return the chain positions of the circular neighbors.
func (p *Primitive) Next() int { return p.next }
func (p *Primitive) Prev() int { return p.prev }

// Start returns the geometric start: line start, arc start tangent point,
// or the marker position.
func (p *Primitive) Start() geom.Vec { return p.start }

// Finish returns the geometric finish point.
func (p *Primitive) Finish() geom.Vec { return p.finish }

// Center returns the arc center. Zero for other variants.
func (p *Primitive) Center() geom.Vec { return p.center }

// Radius returns the arc radius. Zero for other variants.
func (p *Primitive) Radius() float64 { return p.radius }

// SweepAngle returns the signed angular span from the start tangent point
// to the finish tangent point, normalized into (-pi, pi].
func (p *Primitive) SweepAngle() float64 { return p.sweepAngle }

// StartAngle and FinishAngle return the canonical emitted arc angles.
// When the solved sweep is negative the two are swapped so the emitted
// arc always traverses its angular span in the non-negative direction.
func (p *Primitive) StartAngle() float64  { return p.startAngle }
func (p *Primitive) FinishAngle() float64 { return p.finishAngle }

// StartKey returns the anchor key binding this primitive's start. For an
// arc with negative sweep the emitted geometry has start and finish
// swapped, so the key is swapped to keep tangency constraints bound to
// the correct vertex.
func (p *Primitive) StartKey() AnchorKey {
	if p.kind == KindArc && p.sweepAngle < 0 {
		return AnchorFinish
	}
	return AnchorStart
}

// FinishKey returns the anchor key binding this primitive's finish,
// swapped for negative-sweep arcs like StartKey.
func (p *Primitive) FinishKey() AnchorKey {
	if p.kind == KindArc && p.sweepAngle < 0 {
		return AnchorStart
	}
	return AnchorFinish
}

// StartAnchor and FinishAnchor bundle the index with the canonical key.
func (p *Primitive) StartAnchor() Anchor {
	return Anchor{Primitive: p.Index(), Key: p.StartKey()}
}

func (p *Primitive) FinishAnchor() Anchor {
	return Anchor{Primitive: p.Index(), Key: p.FinishKey()}
}

// CenterAnchor is only meaningful for arcs (and circles, which are
// emitted as full-sweep arcs by the host).
func (p *Primitive) CenterAnchor() Anchor {
	return Anchor{Primitive: p.Index(), Key: AnchorCenter}
}
