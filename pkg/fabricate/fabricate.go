// Package fabricate walks a synthesized plan and drives a geometry kernel
// to cut one solid per drawing: the exterior profile is extruded first,
// then each pocket and hole group is removed in plan order.
package fabricate

import (
	"fmt"

	"github.com/chazu/lamina/pkg/kernel"
	"github.com/chazu/lamina/pkg/profile"
)

// Cut executes the plan's operations against the kernel and returns the
// finished solid. The plan's first sketch must be the exterior profile
// cut; a drawing without an exterior outline describes features on an
// existing part and cannot produce a solid on its own.
func Cut(plan *profile.Plan, k kernel.Kernel) (kernel.Solid, error) {
	if plan == nil || len(plan.Sketches) == 0 {
		return nil, fmt.Errorf("fabricate: empty plan")
	}

	first := plan.Sketches[0]
	if first.Op != profile.OpProfileCut {
		return nil, fmt.Errorf("fabricate: plan %q has no exterior profile", plan.Name)
	}
	exterior, ok := first.Elements[0].(*profile.Polygon)
	if !ok {
		return nil, fmt.Errorf("fabricate: plan %q exterior %q is not a polygon",
			plan.Name, first.Elements[0].Name())
	}
	stock, err := k.Extrude(outlineOf(exterior), first.Key.Depth)
	if err != nil {
		return nil, fmt.Errorf("fabricate: extrude %q: %w", first.Name, err)
	}

	for _, sketch := range plan.Sketches[1:] {
		for _, e := range sketch.Elements {
			stock, err = removeElement(k, stock, sketch, e)
			if err != nil {
				return nil, fmt.Errorf("fabricate: sketch %q: %w", sketch.Name, err)
			}
		}
	}
	return stock, nil
}

// Mesh cuts the plan and tessellates the result, tagging the mesh with
// the drawing name.
func Mesh(plan *profile.Plan, k kernel.Kernel) (*kernel.Mesh, error) {
	solid, err := Cut(plan, k)
	if err != nil {
		return nil, err
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("fabricate: ToMesh failed for plan %q: %w", plan.Name, err)
	}
	mesh.PartName = plan.Name
	return mesh, nil
}

// removeElement subtracts one interior feature from the stock.
func removeElement(k kernel.Kernel, stock kernel.Solid, sketch *profile.Sketch, e profile.Element) (kernel.Solid, error) {
	switch e := e.(type) {
	case *profile.Polygon:
		return k.Pocket(stock, outlineOf(e), sketch.Key.Depth)
	case *profile.Circle:
		center := e.Center()
		return k.Drill(stock, center.Pos.X, center.Pos.Y, e.Diameter(), sketch.Key.Depth)
	default:
		return nil, fmt.Errorf("element %q has unsupported type %T", e.Name(), e)
	}
}

// outlineOf converts a polygon element into the kernel's outline form.
func outlineOf(p *profile.Polygon) kernel.Outline {
	points := p.Points()
	outline := make(kernel.Outline, len(points))
	for i, pt := range points {
		outline[i] = kernel.OutlinePoint{X: pt.Pos.X, Y: pt.Pos.Y, Radius: pt.Radius}
	}
	return outline
}
