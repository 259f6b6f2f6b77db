package tileset

import (
	"encoding/json"
	"fmt"
	"math"
)

// Rotation is the yaw of a placed tile in 60 degree steps. The six
// values form a cycle under Clockwise and CounterClockwise stepping.
type Rotation int

const (
	RotationNone Rotation = iota
	RotationClockwise60
	RotationClockwise120
	RotationClockwise180
	RotationCounterClockwise120
	RotationCounterClockwise60
)

var rotationNames = [...]string{
	RotationNone:                "None",
	RotationClockwise60:         "Clockwise60",
	RotationClockwise120:        "Clockwise120",
	RotationClockwise180:        "Clockwise180",
	RotationCounterClockwise120: "CounterClockwise120",
	RotationCounterClockwise60:  "CounterClockwise60",
}

var rotationRadians = [...]float64{
	RotationNone:                0,
	RotationClockwise60:         math.Pi / 3,
	RotationClockwise120:        2 * math.Pi / 3,
	RotationClockwise180:        math.Pi,
	RotationCounterClockwise120: -2 * math.Pi / 3,
	RotationCounterClockwise60:  -math.Pi / 3,
}

// RotationNames lists the wire names in enum order. The schema
// generator exposes them as the closed set of accepted tags.
func RotationNames() []string {
	out := make([]string, len(rotationNames))
	copy(out, rotationNames[:])
	return out
}

// Valid reports whether r is one of the six defined steps.
func (r Rotation) Valid() bool {
	return r >= RotationNone && r <= RotationCounterClockwise60
}

func (r Rotation) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Rotation(%d)", int(r))
	}
	return rotationNames[r]
}

// Radians returns the yaw in radians applied on top of a tile's base
// transform when it is placed.
func (r Rotation) Radians() float64 {
	if !r.Valid() {
		return 0
	}
	return rotationRadians[r]
}

// Clockwise returns the next step of the cycle turning clockwise.
func (r Rotation) Clockwise() Rotation {
	switch r {
	case RotationNone:
		return RotationClockwise60
	case RotationClockwise60:
		return RotationClockwise120
	case RotationClockwise120:
		return RotationClockwise180
	case RotationClockwise180:
		return RotationCounterClockwise120
	case RotationCounterClockwise120:
		return RotationCounterClockwise60
	default:
		return RotationNone
	}
}

// CounterClockwise returns the next step of the cycle turning the
// other way. It is the exact inverse of Clockwise.
func (r Rotation) CounterClockwise() Rotation {
	switch r {
	case RotationNone:
		return RotationCounterClockwise60
	case RotationCounterClockwise60:
		return RotationCounterClockwise120
	case RotationCounterClockwise120:
		return RotationClockwise180
	case RotationClockwise180:
		return RotationClockwise120
	case RotationClockwise120:
		return RotationClockwise60
	default:
		return RotationNone
	}
}

// MarshalJSON writes the rotation as its wire name.
func (r Rotation) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("tileset: cannot encode rotation %d", int(r))
	}
	return json.Marshal(rotationNames[r])
}

// UnmarshalJSON accepts exactly the six wire names.
func (r *Rotation) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("tileset: rotation must be a string: %w", err)
	}
	for i, candidate := range rotationNames {
		if candidate == name {
			*r = Rotation(i)
			return nil
		}
	}
	return fmt.Errorf("tileset: unknown rotation %q", name)
}
