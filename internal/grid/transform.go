package grid

// Vec3 is a 3D vector. Y is the up axis; the grid plane maps to X/Z.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Transform places a tile model relative to its cell center: a translation,
// a yaw in radians about the up axis, and a per-axis scale.
type Transform struct {
	Translation Vec3    `json:"translation"`
	Yaw         float64 `json:"yaw"`
	Scale       Vec3    `json:"scale"`
}

// IdentityTransform returns the default placement: no offset, no yaw,
// unit scale.
func IdentityTransform() Transform {
	return Transform{Scale: Vec3{X: 1, Y: 1, Z: 1}}
}

// Placement composes the world transform for a tile at loc. The plane
// position comes from the grid; only the Y component of the base translation
// survives, so tiles cannot drift off their cell center. yaw is the placed
// instance's rotation and adds to the tile's own.
func (l Layout) Placement(loc Location, base Transform, yaw float64) Transform {
	pos := l.ToWorld(loc)
	return Transform{
		Translation: Vec3{X: pos.X, Y: base.Translation.Y, Z: pos.Y},
		Yaw:         base.Yaw + yaw,
		Scale:       base.Scale,
	}
}
