package components

// Coord is a voxel coordinate. Y is vertical, 0 is the reef floor.
type Coord struct {
	X, Y, Z int
}

// Add returns c offset by (dx, dy, dz) without any wrapping.
func (c Coord) Add(dx, dy, dz int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Offset is a relative voxel displacement from a colony origin.
type Offset struct {
	DX, DY, DZ int
}
