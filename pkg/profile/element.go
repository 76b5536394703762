package profile

import (
	"fmt"
	"math"

	"github.com/chazu/lamina/pkg/geom"
	jgeom "github.com/jbeda/geom"
)

// Element is one closed feature of a drawing: a polygon outline or a
// circle. An element computes its bounding rectangle eagerly and its
// primitive chain lazily (memoized, never recomputed). Reorient returns a
// fresh element with no memoized chain.
type Element interface {
	Name() string
	Depth() float64
	Exterior() bool
	Key() ElementKey
	Bounds() jgeom.Rect
	Reorient(pl geom.Placement, suffix string) Element

	// Chain returns the element's ordered, circularly linked primitive
	// list, building and memoizing it on first use.
	Chain() ([]Primitive, error)

	// appendConstraints emits the element's constraints against the chain
	// copy that carries the sketch-wide indices.
	appendConstraints(chain []Primitive, origin Anchor, out []Constraint) []Constraint
}

// Compile-time interface checks.
var (
	_ Element = (*Polygon)(nil)
	_ Element = (*Circle)(nil)
)

// Polygon is a closed loop of points, each optionally rounded. Depth is
// how far the downstream operation cuts (or pads, for the exterior).
type Polygon struct {
	points   []geom.Point
	depth    float64
	exterior bool
	name     string

	clockwise      bool
	internalRadius float64
	bounds         jgeom.Rect

	chain    []Primitive
	chainErr error
	built    bool
}

// NewPolygon validates and creates a polygon element. At least three
// points are required, and no point may carry a negative radius.
func NewPolygon(points []geom.Point, depth float64, exterior bool, name string) (*Polygon, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("polygon %q: need at least 3 points, got %d", name, len(points))
	}
	for _, p := range points {
		if p.Radius < 0 {
			return nil, fmt.Errorf("polygon %q: point %q has negative radius %g", name, p.Name, p.Radius)
		}
	}

	// The heading sum classifies winding; used to pick cut sides downstream.
	total := 0.0
	n := len(points)
	for i, p := range points {
		next := points[(i+1)%n]
		total += math.Atan2(next.Pos.Y-p.Pos.Y, next.Pos.X-p.Pos.X)
	}

	// Smallest positive corner radius, used to group pockets by the
	// largest tool that can cut them. -1 when no corner is rounded.
	internal := -1.0
	for _, p := range points {
		if p.Radius > 0 && (internal <= 0 || p.Radius < internal) {
			internal = p.Radius
		}
	}

	bounds := geom.RectAround(points[0].XY())
	for _, p := range points {
		r := p.Radius
		bounds.ExpandToContainCoord(jgeom.Coord{X: p.Pos.X - r, Y: p.Pos.Y - r})
		bounds.ExpandToContainCoord(jgeom.Coord{X: p.Pos.X + r, Y: p.Pos.Y + r})
	}

	pts := make([]geom.Point, len(points))
	copy(pts, points)
	return &Polygon{
		points:         pts,
		depth:          depth,
		exterior:       exterior,
		name:           name,
		clockwise:      total >= 0,
		internalRadius: internal,
		bounds:         bounds,
	}, nil
}

func (p *Polygon) Name() string    { return p.name }
func (p *Polygon) Depth() float64  { return p.depth }
func (p *Polygon) Exterior() bool  { return p.exterior }
func (p *Polygon) Clockwise() bool { return p.clockwise }

// InternalRadius is the smallest positive corner radius, or -1 when the
// polygon has no rounded corner.
func (p *Polygon) InternalRadius() float64 { return p.internalRadius }

// Points returns the polygon's corner loop (read-only).
func (p *Polygon) Points() []geom.Point { return p.points }

func (p *Polygon) Bounds() jgeom.Rect { return p.bounds }

func (p *Polygon) Key() ElementKey {
	return ElementKey{Exterior: p.exterior, Depth: p.depth}
}

// Chain builds and memoizes the polygon's primitive chain.
func (p *Polygon) Chain() ([]Primitive, error) {
	if !p.built {
		p.chain, p.chainErr = buildChain(p.points)
		p.built = true
	}
	return p.chain, p.chainErr
}

func (p *Polygon) appendConstraints(chain []Primitive, origin Anchor, out []Constraint) []Constraint {
	return synthesizeChain(chain, origin, out)
}

// Reorient returns a copy of the polygon with every point transformed by
// the placement. The copy has no memoized chain.
func (p *Polygon) Reorient(pl geom.Placement, suffix string) Element {
	points := make([]geom.Point, len(p.points))
	for i, pt := range p.points {
		points[i] = pl.TransformPoint(pt)
	}
	out, err := NewPolygon(points, p.depth, p.exterior, p.name+suffix)
	if err != nil {
		// A valid polygon stays valid under a rigid transform.
		panic(fmt.Sprintf("profile: reorient invalidated polygon %q: %v", p.name, err))
	}
	return out
}

// Circle is a full circle element, grouped by diameter for hole selection.
// Flat selects a flat-bottomed drill cycle downstream.
type Circle struct {
	center   geom.Point
	radius   float64
	depth    float64
	flat     bool
	exterior bool
	name     string

	bounds jgeom.Rect

	chain []Primitive
	built bool
}

// NewCircle validates and creates a circle element from a center point and
// a positive diameter.
func NewCircle(center geom.Point, diameter, depth float64, flat, exterior bool, name string) (*Circle, error) {
	if diameter <= 0 {
		return nil, fmt.Errorf("circle %q: diameter %g must be positive", name, diameter)
	}
	radius := diameter / 2
	center.Diameter = diameter
	bounds := geom.RectAround(jgeom.Coord{X: center.Pos.X - radius, Y: center.Pos.Y - radius})
	bounds.ExpandToContainCoord(jgeom.Coord{X: center.Pos.X + radius, Y: center.Pos.Y + radius})
	return &Circle{
		center:   center,
		radius:   radius,
		depth:    depth,
		flat:     flat,
		exterior: exterior,
		name:     name,
		bounds:   bounds,
	}, nil
}

func (c *Circle) Name() string      { return c.name }
func (c *Circle) Depth() float64    { return c.depth }
func (c *Circle) Exterior() bool    { return c.exterior }
func (c *Circle) Flat() bool        { return c.flat }
func (c *Circle) Radius() float64   { return c.radius }
func (c *Circle) Diameter() float64 { return c.radius * 2 }

// Center returns the circle's center point.
func (c *Circle) Center() geom.Point { return c.center }

func (c *Circle) Bounds() jgeom.Rect { return c.bounds }

func (c *Circle) Key() ElementKey {
	return ElementKey{Exterior: c.exterior, Diameter: c.radius * 2, Depth: c.depth}
}

// Chain returns the circle's single full-sweep primitive.
func (c *Circle) Chain() ([]Primitive, error) {
	if !c.built {
		c.chain = []Primitive{newFullCircle(c.center.Pos, c.radius, c.name)}
		c.built = true
	}
	return c.chain, nil
}

func (c *Circle) appendConstraints(chain []Primitive, origin Anchor, out []Constraint) []Constraint {
	circle := &chain[0]
	return append(out,
		radiusOf(circle),
		distanceX(origin, circle.CenterAnchor(), circle.center.X),
		distanceY(origin, circle.CenterAnchor(), circle.center.Y),
	)
}

// Reorient returns a copy of the circle with its center transformed.
func (c *Circle) Reorient(pl geom.Placement, suffix string) Element {
	out, err := NewCircle(pl.TransformPoint(c.center), c.radius*2, c.depth, c.flat, c.exterior, c.name+suffix)
	if err != nil {
		panic(fmt.Sprintf("profile: reorient invalidated circle %q: %v", c.name, err))
	}
	return out
}
