package profile

import (
	"fmt"

	"github.com/chazu/lamina/pkg/geom"
	jgeom "github.com/jbeda/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Drawing is a set of elements on a cutting plane, defined by a contact
// point on the plane and the plane normal. At most one element is the
// part's exterior outline.
type Drawing struct {
	Contact  geom.Vec
	Normal   geom.Vec // stored normalized
	Elements []Element
	Exterior Element // nil when the drawing has no exterior outline
	Name     string
}

// NewDrawing validates and creates a drawing. The normal must be nonzero,
// the element list non-empty, and the exterior element (when given) must
// appear in the element list with a strictly positive depth.
func NewDrawing(contact, normal geom.Vec, elements []Element, exterior Element, name string) (*Drawing, error) {
	if r3.Norm(normal) < geom.Epsilon {
		return nil, fmt.Errorf("drawing %q: zero normal vector", name)
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("drawing %q: no elements", name)
	}
	if exterior != nil {
		found := false
		for _, e := range elements {
			if e == exterior {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("drawing %q: exterior element %q not in element list",
				name, exterior.Name())
		}
		if exterior.Depth() <= 0 {
			return nil, fmt.Errorf("drawing %q: exterior element %q depth %g must be positive",
				name, exterior.Name(), exterior.Depth())
		}
	}
	return &Drawing{
		Contact:  contact,
		Normal:   r3.Unit(normal),
		Elements: elements,
		Exterior: exterior,
		Name:     name,
	}, nil
}

// Reorient returns a new drawing with the placement applied to every
// element, to the contact point, and (rotation only) to the normal.
func (d *Drawing) Reorient(pl geom.Placement, suffix string) *Drawing {
	elements := make([]Element, len(d.Elements))
	var exterior Element
	for i, e := range d.Elements {
		elements[i] = e.Reorient(pl, suffix)
		if e == d.Exterior {
			exterior = elements[i]
		}
	}
	return &Drawing{
		Contact:  pl.Transform(d.Contact),
		Normal:   pl.Rotate(d.Normal),
		Elements: elements,
		Exterior: exterior,
		Name:     d.Name + suffix,
	}
}

// Bounds returns the rectangle enclosing every element on the sketch
// plane.
func (d *Drawing) Bounds() jgeom.Rect {
	bounds := d.Elements[0].Bounds()
	for _, e := range d.Elements[1:] {
		r := e.Bounds()
		bounds.ExpandToContainCoord(r.Min)
		bounds.ExpandToContainCoord(r.Max)
	}
	return bounds
}

// PlaneOrigin returns the point of the cutting plane nearest the world
// origin (Hessian normal form: origin = normal * (normal . contact)).
// Hosts that attach sketches to datum planes place the plane there.
func (d *Drawing) PlaneOrigin() geom.Vec {
	return r3.Scale(r3.Dot(d.Normal, d.Contact), d.Normal)
}

// Sketch is one downstream operation's fully synthesized profile: the
// ordered primitive arena (index 0 is the synthetic lower-left origin
// marker) and the ordered constraint list, to be applied atomically by a
// host.
type Sketch struct {
	Name        string
	Key         ElementKey
	Op          OperationKind
	Elements    []Element
	Primitives  []Primitive
	Constraints []Constraint

	// LowerLeft is the southwest corner of the whole drawing in plane
	// coordinates, before the quadrant translation. The origin marker is
	// pinned back to it so the profile solves at its true location.
	LowerLeft geom.Vec
}

// OriginIndex returns the arena index of the origin marker.
func (s *Sketch) OriginIndex() int { return 0 }

// Plan is the full synthesis result for one drawing: one sketch per
// element group, ordered by the group ordering.
type Plan struct {
	Name        string
	Contact     geom.Vec
	Normal      geom.Vec
	PlaneOrigin geom.Vec
	Sketches    []*Sketch
}

// Host consumes synthesized sketches. A host applies the primitive list
// and constraint list of a sketch as one atomic unit.
type Host interface {
	ApplySketch(s *Sketch) error
}

// Emit feeds every sketch of the plan to the host in order. Emit is only
// reachable on a successfully built plan, so a host never sees a
// partially synthesized drawing.
func (p *Plan) Emit(h Host) error {
	for _, s := range p.Sketches {
		if err := h.ApplySketch(s); err != nil {
			return fmt.Errorf("plan %q: sketch %q: %w", p.Name, s.Name, err)
		}
	}
	return nil
}

// Build synthesizes the drawing into a plan. The drawing is first rotated
// so its normal aligns with +Z, then translated so the bounding box's
// southwest corner sits at the origin marker, keeping every absolute
// distance constraint non-negative. Elements are grouped and each group
// is synthesized into one sketch. Any failure aborts the whole build with
// no partial output.
func (d *Drawing) Build() (*Plan, error) {
	zPlacement := geom.AlignVectors(d.Normal, geom.Vec{Z: 1})
	zAligned := d.Reorient(zPlacement, ".+z")

	bounds := zAligned.Bounds()
	lowerLeft := geom.Vec{X: bounds.Min.X, Y: bounds.Min.Y}

	quadrant1 := zAligned.Reorient(geom.Translation(geom.Vec{X: -lowerLeft.X, Y: -lowerLeft.Y}), ".q1")

	groups, err := GroupElements(quadrant1.Elements)
	if err != nil {
		return nil, fmt.Errorf("drawing %q: %w", d.Name, err)
	}

	plan := &Plan{
		Name:        d.Name,
		Contact:     d.Contact,
		Normal:      d.Normal,
		PlaneOrigin: d.PlaneOrigin(),
	}
	for i, g := range groups {
		name := fmt.Sprintf("%s.%s%d", d.Name, g.Key.Operation(), i)
		sketch, err := buildSketch(name, g, lowerLeft)
		if err != nil {
			return nil, fmt.Errorf("drawing %q: %w", d.Name, err)
		}
		plan.Sketches = append(plan.Sketches, sketch)
	}
	return plan, nil
}

// originUnset marks a sketch builder whose origin marker has not been
// placed. Constraint emission against an unset origin is a programming
// error, not a user input error.
const originUnset = -999

// sketchBuilder threads the origin index from chain assembly into
// constraint synthesis explicitly, instead of mutating shared state.
type sketchBuilder struct {
	prims       []Primitive
	constraints []Constraint
	originIndex int
}

func (b *sketchBuilder) origin() Anchor {
	if b.originIndex <= originUnset {
		panic("profile: origin anchor read before the origin marker was placed")
	}
	return Anchor{Primitive: b.originIndex, Key: AnchorStart}
}

// place appends a primitive to the arena and assigns its sketch-wide
// index in encounter order.
func (b *sketchBuilder) place(p Primitive) *Primitive {
	p.setIndex(len(b.prims))
	b.prims = append(b.prims, p)
	return &b.prims[len(b.prims)-1]
}

func buildSketch(name string, g ElementGroup, lowerLeft geom.Vec) (*Sketch, error) {
	b := &sketchBuilder{originIndex: originUnset}

	// The synthetic origin marker is always primitive 0. It is pinned to
	// the host's root origin with the pre-translation southwest corner
	// coordinates, which may be negative or zero.
	marker := b.place(newPointMarker(lowerLeft, "origin"))
	b.originIndex = marker.Index()
	root := Anchor{Primitive: RootIndex, Key: AnchorStart}
	b.constraints = append(b.constraints,
		distanceX(root, marker.StartAnchor(), lowerLeft.X),
		distanceY(root, marker.StartAnchor(), lowerLeft.Y),
	)

	// All chains are placed (assigning indices in encounter order) before
	// any element's constraints are synthesized against them.
	indexed := make([][]Primitive, len(g.Elements))
	for i, e := range g.Elements {
		chain, err := e.Chain()
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", e.Name(), err)
		}
		start := len(b.prims)
		for _, p := range chain {
			b.place(p)
		}
		indexed[i] = b.prims[start : start+len(chain)]
	}
	for i, e := range g.Elements {
		b.constraints = e.appendConstraints(indexed[i], b.origin(), b.constraints)
	}

	return &Sketch{
		Name:        name,
		Key:         g.Key,
		Op:          g.Key.Operation(),
		Elements:    g.Elements,
		Primitives:  b.prims,
		Constraints: b.constraints,
		LowerLeft:   lowerLeft,
	}, nil
}
