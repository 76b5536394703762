package geom

import (
	"math"
	"testing"
)

func TestNewCorner(t *testing.T) {
	p, err := NewCorner(10, 20, 0, 5, "ne")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Pos.X != 10 || p.Pos.Y != 20 {
		t.Errorf("expected position (10, 20), got (%f, %f)", p.Pos.X, p.Pos.Y)
	}
	if p.Radius != 5 {
		t.Errorf("expected radius=5, got %f", p.Radius)
	}
	if p.Name != "ne" {
		t.Errorf("expected name 'ne', got %q", p.Name)
	}
}

func TestNewCornerNegativeRadius(t *testing.T) {
	_, err := NewCorner(0, 0, 0, -1, "bad")
	if err == nil {
		t.Fatal("expected error for negative radius")
	}
}

func TestUnitXY(t *testing.T) {
	tests := []struct {
		name  string
		in    Vec
		want  Vec
	}{
		{"x axis", Vec{X: 5}, Vec{X: 1}},
		{"y axis", Vec{Y: 0.001}, Vec{Y: 1}},
		{"diagonal", Vec{X: 3, Y: 4}, Vec{X: 0.6, Y: 0.8}},
		{"z ignored", Vec{X: 3, Y: 4, Z: 100}, Vec{X: 0.6, Y: 0.8}},
		{"negative", Vec{X: -2, Y: 0}, Vec{X: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnitXY(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 {
				t.Errorf("UnitXY(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got.Z != 0 {
				t.Errorf("UnitXY should zero the Z component, got %f", got.Z)
			}
		})
	}
}

func TestUnitXYZeroVector(t *testing.T) {
	_, err := UnitXY(Vec{Z: 10})
	if err == nil {
		t.Fatal("expected error for zero XY projection")
	}
	_, err = UnitXY(Vec{X: Epsilon / 2})
	if err == nil {
		t.Fatal("expected error for sub-epsilon vector")
	}
}

func TestAngleXY(t *testing.T) {
	tests := []struct {
		name string
		in   Vec
		want float64
	}{
		{"east", Vec{X: 1}, 0},
		{"north", Vec{Y: 1}, math.Pi / 2},
		{"west", Vec{X: -1}, math.Pi},
		{"south", Vec{Y: -1}, -math.Pi / 2},
		{"northeast", Vec{X: 1, Y: 1}, math.Pi / 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngleXY(tt.in)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("AngleXY(%v) = %f, want %f", tt.in, got, tt.want)
			}
		})
	}
}

func TestDistanceXY(t *testing.T) {
	a := Vec{X: 1, Y: 2, Z: 50}
	b := Vec{X: 4, Y: 6, Z: -50}
	if got := DistanceXY(a, b); math.Abs(got-5) > 1e-12 {
		t.Errorf("DistanceXY = %f, want 5 (Z must be ignored)", got)
	}
}

func TestRectAround(t *testing.T) {
	p := NewPoint(3, 7, 0, "p")
	r := RectAround(p.XY())
	if r.Min != p.XY() || r.Max != p.XY() {
		t.Errorf("expected degenerate rect at (3, 7), got %+v", r)
	}
}
