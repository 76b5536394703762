package profile

import (
	"fmt"
	"sort"
)

// ElementKey classifies an element for downstream operation selection.
// Elements with equal keys share one operation (one sketch).
type ElementKey struct {
	Exterior bool
	Diameter float64
	Depth    float64
}

// Before reports whether k sorts ahead of o in the group ordering:
// exterior first, then larger diameter, then larger depth. The ordering
// is total so group numbering is reproducible run to run.
func (k ElementKey) Before(o ElementKey) bool {
	if k.Exterior != o.Exterior {
		return k.Exterior
	}
	if k.Diameter != o.Diameter {
		return k.Diameter > o.Diameter
	}
	return k.Depth > o.Depth
}

// OperationKind selects among the three downstream operations.
type OperationKind int

const (
	// OpProfileCut cuts the part's exterior outline (a pad in the host).
	OpProfileCut OperationKind = iota
	// OpPocket clears an interior region to a depth.
	OpPocket
	// OpHole drills a circular hole.
	OpHole
)

func (op OperationKind) String() string {
	switch op {
	case OpProfileCut:
		return "ProfileCut"
	case OpPocket:
		return "Pocket"
	case OpHole:
		return "Hole"
	}
	return fmt.Sprintf("OperationKind(%d)", int(op))
}

// Operation classifies a key: the exterior group is the profile cut,
// diameter-bearing groups are holes, the rest are pockets.
func (k ElementKey) Operation() OperationKind {
	switch {
	case k.Exterior:
		return OpProfileCut
	case k.Diameter > 0:
		return OpHole
	default:
		return OpPocket
	}
}

// ElementGroup is one downstream operation's worth of elements.
type ElementGroup struct {
	Key      ElementKey
	Elements []Element
}

// GroupElements partitions elements by exact key equality and orders the
// groups descending (exterior first, then larger diameter, then larger
// depth). Within a group, input order is preserved.
//
// An exterior group must hold exactly one element, and that element's
// depth must be positive; either violation is fatal.
func GroupElements(elements []Element) ([]ElementGroup, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("no elements to group")
	}

	index := make(map[ElementKey]int)
	var groups []ElementGroup
	for _, e := range elements {
		key := e.Key()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, ElementGroup{Key: key})
		}
		groups[i].Elements = append(groups[i].Elements, e)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Key.Before(groups[j].Key)
	})

	for _, g := range groups {
		if !g.Key.Exterior {
			continue
		}
		if len(g.Elements) != 1 {
			return nil, fmt.Errorf("exterior group must hold exactly one element, got %d", len(g.Elements))
		}
		if g.Key.Depth <= 0 {
			return nil, fmt.Errorf("exterior element %q must have positive depth, got %g",
				g.Elements[0].Name(), g.Key.Depth)
		}
	}
	return groups, nil
}
