package grid

import (
	"math"
	"math/rand"
	"testing"
)

func TestToWorldPointyAxes(t *testing.T) {
	layout := DefaultLayout()
	got := layout.ToWorld(Location{X: 1, Y: 0})
	if math.Abs(got.X-math.Sqrt(3)) > 1e-9 || math.Abs(got.Y) > 1e-9 {
		t.Fatalf("unexpected position for (1,0): %+v", got)
	}
	got = layout.ToWorld(Location{X: 0, Y: 1})
	if math.Abs(got.X-math.Sqrt(3)/2) > 1e-9 || math.Abs(got.Y-1.5) > 1e-9 {
		t.Fatalf("unexpected position for (0,1): %+v", got)
	}
}

func TestToWorldFlatAxes(t *testing.T) {
	layout := Layout{Orientation: OrientationFlat, Size: Vec2{X: 1, Y: 1}}
	got := layout.ToWorld(Location{X: 1, Y: 0})
	if math.Abs(got.X-1.5) > 1e-9 || math.Abs(got.Y-math.Sqrt(3)/2) > 1e-9 {
		t.Fatalf("unexpected position for (1,0): %+v", got)
	}
	got = layout.ToWorld(Location{X: 0, Y: 1})
	if math.Abs(got.X) > 1e-9 || math.Abs(got.Y-math.Sqrt(3)) > 1e-9 {
		t.Fatalf("unexpected position for (0,1): %+v", got)
	}
}

func TestSnapToGridRoundTrip(t *testing.T) {
	layouts := []Layout{
		DefaultLayout(),
		{Orientation: OrientationFlat, Size: Vec2{X: 1, Y: 1}},
		{Orientation: OrientationPointy, Size: Vec2{X: 2.5, Y: 0.75}, Origin: Vec2{X: -40, Y: 12.5}},
		{Orientation: OrientationFlat, Size: Vec2{X: 0.5, Y: 3}, Origin: Vec2{X: 7, Y: -3}},
	}
	rng := rand.New(rand.NewSource(42))
	for _, layout := range layouts {
		for i := 0; i < 1000; i++ {
			loc := Location{X: rng.Intn(2001) - 1000, Y: rng.Intn(2001) - 1000}
			pos := layout.ToWorld(loc)
			snapped, got := layout.SnapToGrid(pos)
			if got != loc {
				t.Fatalf("layout %+v: location %+v round-tripped to %+v", layout, loc, got)
			}
			if snapped != pos {
				t.Fatalf("layout %+v: snapped position %+v != center %+v", layout, snapped, pos)
			}
		}
	}
}

func TestSnapToGridPerturbed(t *testing.T) {
	layout := DefaultLayout()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		loc := Location{X: rng.Intn(201) - 100, Y: rng.Intn(201) - 100}
		pos := layout.ToWorld(loc)
		// Stay well inside the cell; the inradius for unit size is ~0.866.
		jittered := Vec2{
			X: pos.X + (rng.Float64()-0.5)*0.6,
			Y: pos.Y + (rng.Float64()-0.5)*0.6,
		}
		snapped, got := layout.SnapToGrid(jittered)
		if got != loc {
			t.Fatalf("jittered point near %+v snapped to %+v", loc, got)
		}
		if want := layout.ToWorld(got); snapped != want {
			t.Fatalf("snapped position %+v does not match cell center %+v", snapped, want)
		}
	}
}

func TestLayoutValidate(t *testing.T) {
	if err := DefaultLayout().Validate(); err != nil {
		t.Fatalf("default layout should validate: %v", err)
	}
	bad := Layout{Orientation: "diagonal", Size: Vec2{X: 1, Y: 1}}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for unknown orientation")
	}
	zero := Layout{Orientation: OrientationPointy, Size: Vec2{X: 0, Y: 1}}
	if err := zero.Validate(); err == nil {
		t.Fatalf("expected error for zero size")
	}
}

func TestPlacementComposition(t *testing.T) {
	layout := DefaultLayout()
	base := Transform{
		Translation: Vec3{X: 9, Y: 0.25, Z: -4},
		Yaw:         math.Pi / 2,
		Scale:       Vec3{X: 2, Y: 2, Z: 2},
	}
	loc := Location{X: 2, Y: -1}
	got := layout.Placement(loc, base, math.Pi/6)
	pos := layout.ToWorld(loc)
	if got.Translation.X != pos.X || got.Translation.Z != pos.Y {
		t.Fatalf("placement ignored the grid position: %+v", got)
	}
	if got.Translation.Y != 0.25 {
		t.Fatalf("placement should keep the base altitude, got %+v", got.Translation)
	}
	if math.Abs(got.Yaw-(math.Pi/2+math.Pi/6)) > 1e-9 {
		t.Fatalf("unexpected yaw %v", got.Yaw)
	}
	if got.Scale != base.Scale {
		t.Fatalf("placement should keep the base scale, got %+v", got.Scale)
	}
}

func TestIdentityTransform(t *testing.T) {
	id := IdentityTransform()
	if id.Scale != (Vec3{X: 1, Y: 1, Z: 1}) {
		t.Fatalf("identity scale should be unit, got %+v", id.Scale)
	}
	if id.Yaw != 0 || id.Translation != (Vec3{}) {
		t.Fatalf("identity transform should be zero elsewhere: %+v", id)
	}
}
