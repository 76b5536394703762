package engine

import (
	"strings"
	"testing"

	"github.com/chazu/lamina/pkg/profile"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(polygon :name "contour")`,
			expect: `(polygon "__kw_name" "contour")`,
		},
		{
			name:   "multiple keywords",
			input:  `(corner 10 20 :radius 5 :name "nw")`,
			expect: `(corner 10 20 "__kw_radius" 5 "__kw_name" "nw")`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(profile-cut :part-a ref)`,
			expect: `(profile_cut "__kw_part-a" ref)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:head-dia`,
			expect: `"__kw_head-dia"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Simple drawing test
// ---------------------------------------------------------------------------

func TestSimpleDrawing(t *testing.T) {
	eng := NewEngine()

	source := `
(drawing :name "plate" :contact (vec3 0 0 0) :normal (vec3 0 0 1)
  (pad (polygon :name "contour"
         (corner 0 0 :radius 5)
         (corner 100 0 :radius 5)
         (corner 100 60)
         (corner 0 60)) 10))
`
	prog, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(prog.Drawings) != 1 {
		t.Fatalf("expected 1 drawing, got %d", len(prog.Drawings))
	}

	d := prog.Drawings[0]
	if d.Name != "plate" {
		t.Errorf("expected drawing name 'plate', got %q", d.Name)
	}
	if len(d.Elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(d.Elements))
	}

	poly, ok := d.Elements[0].(*profile.Polygon)
	if !ok {
		t.Fatalf("expected *profile.Polygon, got %T", d.Elements[0])
	}
	if !poly.Exterior() {
		t.Error("pad element should be exterior")
	}
	if poly.Depth() != 10 {
		t.Errorf("expected depth=10, got %f", poly.Depth())
	}
	if poly.Name() != "contour" {
		t.Errorf("expected name 'contour', got %q", poly.Name())
	}
	pts := poly.Points()
	if len(pts) != 4 {
		t.Fatalf("expected 4 corners, got %d", len(pts))
	}
	if pts[1].Pos.X != 100 || pts[1].Pos.Y != 0 {
		t.Errorf("corner 1: expected (100, 0), got (%f, %f)", pts[1].Pos.X, pts[1].Pos.Y)
	}
	if pts[0].Radius != 5 {
		t.Errorf("corner 0: expected radius=5, got %f", pts[0].Radius)
	}
	if pts[2].Radius != 0 {
		t.Errorf("corner 2: expected radius=0, got %f", pts[2].Radius)
	}
}

// ---------------------------------------------------------------------------
// Variable reference test
// ---------------------------------------------------------------------------

func TestVariableReference(t *testing.T) {
	eng := NewEngine()

	source := `
(def depth 12)
(def w 80)
(drawing :name "slab" :contact (vec3 0 0 0) :normal (vec3 0 0 1)
  (pad (polygon :name "outline"
         (corner 0 0) (corner w 0) (corner w 40) (corner 0 40)) depth))
`
	prog, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(prog.Drawings) != 1 {
		t.Fatalf("expected 1 drawing, got %d", len(prog.Drawings))
	}

	ext := prog.Drawings[0].Exterior
	if ext.Depth() != 12 {
		t.Errorf("expected depth=12 (from variable), got %f", ext.Depth())
	}
	poly := ext.(*profile.Polygon)
	if poly.Points()[1].Pos.X != 80 {
		t.Errorf("expected corner X=80 (from variable), got %f", poly.Points()[1].Pos.X)
	}
}

// ---------------------------------------------------------------------------
// Pocket and hole tests
// ---------------------------------------------------------------------------

func TestDrawingWithPocketAndHole(t *testing.T) {
	eng := NewEngine()

	source := `
(drawing :name "bracket" :contact (vec3 0 0 0) :normal (vec3 0 0 1)
  (pad (polygon :name "contour"
         (corner 0 0) (corner 120 0) (corner 120 80) (corner 0 80)) 15)
  (pocket (polygon :name "relief"
            (corner 20 20) (corner 50 20) (corner 50 60) (corner 20 60)) 5)
  (hole (circle (vec3 90 40 0) 8 :name "bore") 15))
`
	prog, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(prog.Drawings) != 1 {
		t.Fatalf("expected 1 drawing, got %d", len(prog.Drawings))
	}

	d := prog.Drawings[0]
	if len(d.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(d.Elements))
	}
	if d.Exterior != d.Elements[0] {
		t.Error("expected the pad to be the drawing's exterior")
	}

	pocket, ok := d.Elements[1].(*profile.Polygon)
	if !ok {
		t.Fatalf("element 1: expected *profile.Polygon, got %T", d.Elements[1])
	}
	if pocket.Exterior() {
		t.Error("pocket should not be exterior")
	}
	if pocket.Depth() != 5 {
		t.Errorf("pocket: expected depth=5, got %f", pocket.Depth())
	}

	hole, ok := d.Elements[2].(*profile.Circle)
	if !ok {
		t.Fatalf("element 2: expected *profile.Circle, got %T", d.Elements[2])
	}
	if hole.Diameter() != 8 {
		t.Errorf("hole: expected diameter=8, got %f", hole.Diameter())
	}
	if hole.Depth() != 15 {
		t.Errorf("hole: expected depth=15, got %f", hole.Depth())
	}
	if hole.Center().Pos.X != 90 || hole.Center().Pos.Y != 40 {
		t.Errorf("hole: expected center (90, 40), got (%f, %f)",
			hole.Center().Pos.X, hole.Center().Pos.Y)
	}
	if hole.Flat() {
		t.Error("hole without :flat should not be flat-bottomed")
	}
}

func TestFlatHole(t *testing.T) {
	eng := NewEngine()

	source := `
(drawing :name "p" :contact (vec3 0 0 0) :normal (vec3 0 0 1)
  (pad (polygon :name "c"
         (corner 0 0) (corner 50 0) (corner 50 50) (corner 0 50)) 10)
  (hole (circle (vec3 25 25 0) 6 :flat true) 4))
`
	prog, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	hole := prog.Drawings[0].Elements[1].(*profile.Circle)
	if !hole.Flat() {
		t.Error("expected flat-bottomed hole")
	}
}

// ---------------------------------------------------------------------------
// Multiple drawings test
// ---------------------------------------------------------------------------

func TestMultipleDrawings(t *testing.T) {
	eng := NewEngine()

	source := `
(def square (polygon :name "sq"
  (corner 0 0) (corner 40 0) (corner 40 40) (corner 0 40)))

(drawing :name "first" :contact (vec3 0 0 0) :normal (vec3 0 0 1)
  (pad square 10))
(drawing :name "second" :contact (vec3 0 0 10) :normal (vec3 0 0 1)
  (pad square 6))
`
	prog, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(prog.Drawings) != 2 {
		t.Fatalf("expected 2 drawings, got %d", len(prog.Drawings))
	}
	if prog.Drawings[0].Name != "first" || prog.Drawings[1].Name != "second" {
		t.Errorf("expected declaration order first/second, got %q/%q",
			prog.Drawings[0].Name, prog.Drawings[1].Name)
	}
	if prog.Drawings[1].Exterior.Depth() != 6 {
		t.Errorf("second drawing: expected depth=6, got %f", prog.Drawings[1].Exterior.Depth())
	}
}

// ---------------------------------------------------------------------------
// Error cases
// ---------------------------------------------------------------------------

func TestDrawingErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{
			name: "drawing without pad",
			source: `
(drawing :name "bare" :contact (vec3 0 0 0) :normal (vec3 0 0 1)
  (pocket (polygon :name "p"
            (corner 0 0) (corner 10 0) (corner 10 10) (corner 0 10)) 2))`,
			wantMsg: "no pad",
		},
		{
			name: "drawing with two pads",
			source: `
(def sq (polygon :name "sq" (corner 0 0) (corner 10 0) (corner 10 10) (corner 0 10)))
(drawing :name "double" :contact (vec3 0 0 0) :normal (vec3 0 0 1)
  (pad sq 5) (pad sq 5))`,
			wantMsg: "more than one pad",
		},
		{
			name:    "polygon with too few corners",
			source:  `(polygon :name "line" (corner 0 0) (corner 10 0))`,
			wantMsg: "at least 3 corners",
		},
		{
			name:    "corner with negative radius",
			source:  `(corner 0 0 :radius -2)`,
			wantMsg: "negative radius",
		},
		{
			name: "pad with circle argument",
			source: `
(pad (circle (vec3 0 0 0) 10) 5)`,
			wantMsg: "expected polygon",
		},
		{
			name: "hole with polygon argument",
			source: `
(hole (polygon :name "p" (corner 0 0) (corner 10 0) (corner 10 10) (corner 0 10)) 5)`,
			wantMsg: "expected circle",
		},
		{
			name: "zero depth pad",
			source: `
(pad (polygon :name "p" (corner 0 0) (corner 10 0) (corner 10 10) (corner 0 10)) 0)`,
			wantMsg: "must be positive",
		},
		{
			name:    "circle with zero diameter",
			source:  `(hole (circle (vec3 0 0 0) 0) 5)`,
			wantMsg: "must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := NewEngine()
			prog, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if prog != nil {
				t.Fatal("expected nil program on eval error")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected at least one eval error")
			}
			found := false
			for _, e := range evalErrs {
				if strings.Contains(e.Message, tt.wantMsg) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error containing %q, got %v", tt.wantMsg, evalErrs)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Full bracket example test
// ---------------------------------------------------------------------------

func TestFullBracketExample(t *testing.T) {
	eng := NewEngine()

	source := `
;; A notched mounting bracket with a bore and a relief pocket.
(def thickness 15)

(drawing :name "bracket" :contact (vec3 0 0 0) :normal (vec3 0 0 1)
  (pad (polygon :name "contour"
         (corner 0 0 :radius 8 :name "sw")
         (corner 160 0 :radius 8 :name "se")
         (corner 160 60 :name "notch-e")
         (corner 110 60 :name "notch-se")
         (corner 110 100 :name "notch-ne")
         (corner 0 100 :radius 8 :name "nw")) thickness)
  (pocket (polygon :name "relief"
            (corner 20 20 :radius 4)
            (corner 80 20 :radius 4)
            (corner 80 80 :radius 4)
            (corner 20 80 :radius 4)) 6)
  (hole (circle (vec3 135 30 0) 10 :name "bore") thickness))
`
	prog, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(prog.Drawings) != 1 {
		t.Fatalf("expected 1 drawing, got %d", len(prog.Drawings))
	}

	d := prog.Drawings[0]
	if len(d.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(d.Elements))
	}

	contour := d.Exterior.(*profile.Polygon)
	if len(contour.Points()) != 6 {
		t.Errorf("contour: expected 6 corners, got %d", len(contour.Points()))
	}
	if contour.Depth() != 15 {
		t.Errorf("contour: expected depth=15 (from variable), got %f", contour.Depth())
	}
	if contour.Points()[2].Name != "notch-e" {
		t.Errorf("corner 2: expected name 'notch-e', got %q", contour.Points()[2].Name)
	}

	// The whole drawing should build into a plan without errors.
	plan, err := d.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Sketches) != 3 {
		t.Errorf("expected 3 sketches (cut, pocket, hole), got %d", len(plan.Sketches))
	}
	if plan.Sketches[0].Op != profile.OpProfileCut {
		t.Errorf("first sketch: expected profile cut, got %s", plan.Sketches[0].Op)
	}
}

// ---------------------------------------------------------------------------
// Regression tests
// ---------------------------------------------------------------------------

func TestEmptySourceStillWorks(t *testing.T) {
	eng := NewEngine()
	prog, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if prog == nil {
		t.Fatal("expected non-nil program")
	}
	if len(prog.Drawings) != 0 {
		t.Errorf("expected no drawings, got %d", len(prog.Drawings))
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	eng := NewEngine()
	prog, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if prog == nil {
		t.Fatal("expected non-nil program")
	}
}
