package geom

import "testing"

func TestPinholeGroundPosition(t *testing.T) {
	p := Pinhole{ReferenceWidthM: 28, FocalLengthPx: 1000}

	// 28m object appearing 28px wide sits at 1000m; scale = 1.
	got, ok := p.GroundPosition(Point{X: 100, Y: 200}, 28)
	if !ok {
		t.Fatal("expected a valid estimate")
	}
	if !almostEqual(got.X, 100, 1e-9) || !almostEqual(got.Y, 200, 1e-9) {
		t.Errorf("got (%v, %v), want (100, 200)", got.X, got.Y)
	}

	// Twice as wide means half the range, so half the scale.
	got, ok = p.GroundPosition(Point{X: 100, Y: 200}, 56)
	if !ok {
		t.Fatal("expected a valid estimate")
	}
	if !almostEqual(got.X, 50, 1e-9) || !almostEqual(got.Y, 100, 1e-9) {
		t.Errorf("got (%v, %v), want (50, 100)", got.X, got.Y)
	}
}

func TestPinholeDegenerateInputs(t *testing.T) {
	p := Pinhole{ReferenceWidthM: 28, FocalLengthPx: 1000}
	if _, ok := p.GroundPosition(Point{X: 1, Y: 1}, 0); ok {
		t.Error("zero box width should report ok=false")
	}
	if _, ok := p.GroundPosition(Point{X: 1, Y: 1}, -5); ok {
		t.Error("negative box width should report ok=false")
	}

	p = Pinhole{ReferenceWidthM: 28, FocalLengthPx: 0}
	if _, ok := p.GroundPosition(Point{X: 1, Y: 1}, 40); ok {
		t.Error("zero focal length should report ok=false")
	}
}
