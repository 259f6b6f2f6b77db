package grid

import (
	"errors"
	"fmt"
	"math"
)

var errZeroSize = errors.New("grid: layout size must be nonzero")

func errBadOrientation(o Orientation) error {
	return fmt.Errorf("grid: unknown orientation %q", o)
}

// Location addresses a single hex cell in axial coordinates.
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Vec2 is a point on the grid plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Orientation selects how hex cells are aligned against the plane axes.
type Orientation string

const (
	OrientationPointy Orientation = "pointy"
	OrientationFlat   Orientation = "flat"
)

// Valid reports whether o is one of the two supported alignments.
func (o Orientation) Valid() bool {
	return o == OrientationPointy || o == OrientationFlat
}

// Layout is the grid geometry owned by one map: cell orientation, per-axis
// cell size, and the plane offset of cell (0,0).
type Layout struct {
	Orientation Orientation `json:"orientation"`
	Size        Vec2        `json:"size"`
	Origin      Vec2        `json:"origin"`
}

// DefaultLayout returns the layout new maps start with.
func DefaultLayout() Layout {
	return Layout{
		Orientation: OrientationPointy,
		Size:        Vec2{X: 1, Y: 1},
	}
}

// Validate rejects layouts that cannot convert positions both ways.
func (l Layout) Validate() error {
	if !l.Orientation.Valid() {
		return errBadOrientation(l.Orientation)
	}
	if l.Size.X == 0 || l.Size.Y == 0 {
		return errZeroSize
	}
	return nil
}

// Axial basis matrices, row-major [f0 f1; f2 f3]. The forward matrix maps
// axial coordinates to plane positions, the inverse maps back.
var (
	pointyForward = [4]float64{sqrt3, sqrt3 / 2, 0, 1.5}
	pointyInverse = [4]float64{sqrt3 / 3, -1.0 / 3, 0, 2.0 / 3}
	flatForward   = [4]float64{1.5, 0, sqrt3 / 2, sqrt3}
	flatInverse   = [4]float64{2.0 / 3, 0, -1.0 / 3, sqrt3 / 3}
)

var sqrt3 = math.Sqrt(3)

func (l Layout) forward() [4]float64 {
	if l.Orientation == OrientationFlat {
		return flatForward
	}
	return pointyForward
}

func (l Layout) inverse() [4]float64 {
	if l.Orientation == OrientationFlat {
		return flatInverse
	}
	return pointyInverse
}

// ToWorld converts a cell location to the plane position of its center.
func (l Layout) ToWorld(loc Location) Vec2 {
	m := l.forward()
	x := float64(loc.X)
	y := float64(loc.Y)
	return Vec2{
		X: (m[0]*x+m[1]*y)*l.Size.X + l.Origin.X,
		Y: (m[2]*x+m[3]*y)*l.Size.Y + l.Origin.Y,
	}
}

// SnapToGrid finds the cell whose center is nearest to pos and returns that
// center together with the cell location. ToWorld of the returned location
// reproduces the returned position exactly.
func (l Layout) SnapToGrid(pos Vec2) (Vec2, Location) {
	m := l.inverse()
	px := (pos.X - l.Origin.X) / l.Size.X
	py := (pos.Y - l.Origin.Y) / l.Size.Y
	q := m[0]*px + m[1]*py
	r := m[2]*px + m[3]*py
	loc := axialRound(q, r)
	return l.ToWorld(loc), loc
}

// axialRound rounds fractional axial coordinates to the containing cell by
// rounding in cube space and re-deriving the axis with the largest error.
func axialRound(q, r float64) Location {
	s := -q - r
	rq := math.Round(q)
	rr := math.Round(r)
	rs := math.Round(s)

	dq := math.Abs(rq - q)
	dr := math.Abs(rr - r)
	ds := math.Abs(rs - s)

	switch {
	case dq > dr && dq > ds:
		rq = -rr - rs
	case dr > ds:
		rr = -rq - rs
	}
	return Location{X: int(rq), Y: int(rr)}
}
