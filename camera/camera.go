// Package camera provides an orbit camera for viewing the voxel reef.
package camera

import "math"

// Orbit circles a target point on the reef. The horizontal axes of the
// reef wrap, so the target wraps too and voxels are placed relative to it
// by shortest toroidal distance.
type Orbit struct {
	// Target is the look-at point in world voxel coordinates (Y up)
	TargetX, TargetY, TargetZ float32

	// Yaw around the vertical axis and pitch above the horizon, in radians
	Yaw, Pitch float32

	// Distance from target
	Distance float32

	// World side length (for toroidal wrapping)
	WorldSize float32

	// Constraints
	MinDistance, MaxDistance float32
	MinPitch, MaxPitch       float32
}

// NewOrbit creates a camera looking at the centre of a world of side n
// from a raised three-quarter view.
func NewOrbit(n int) *Orbit {
	size := float32(n)
	o := &Orbit{
		WorldSize:   size,
		MinDistance: 2,
		MaxDistance: size * 4,
		MinPitch:    0.05,
		MaxPitch:    math.Pi/2 - 0.05,
	}
	o.Reset()
	return o
}

// Reset returns the camera to the default view.
func (o *Orbit) Reset() {
	o.TargetX = o.WorldSize / 2
	o.TargetY = o.WorldSize / 8
	o.TargetZ = o.WorldSize / 2
	o.Yaw = math.Pi / 4
	o.Pitch = math.Pi / 5
	o.Distance = o.WorldSize * 1.4
}

// Position returns the eye position relative to the target-centred frame
// used by Relative, i.e. the target sits at the origin horizontally.
func (o *Orbit) Position() (x, y, z float32) {
	cp := float32(math.Cos(float64(o.Pitch)))
	sp := float32(math.Sin(float64(o.Pitch)))
	cy := float32(math.Cos(float64(o.Yaw)))
	sy := float32(math.Sin(float64(o.Yaw)))
	x = o.Distance * cp * sy
	y = o.TargetY + o.Distance*sp
	z = o.Distance * cp * cy
	return x, y, z
}

// Relative maps a world voxel position into the target-centred frame,
// taking the shortest way around the wrapped horizontal axes.
func (o *Orbit) Relative(wx, wy, wz float32) (x, y, z float32) {
	return toroidalDelta(wx, o.TargetX, o.WorldSize), wy, toroidalDelta(wz, o.TargetZ, o.WorldSize)
}

// Rotate changes yaw and pitch by the given deltas; pitch is clamped.
func (o *Orbit) Rotate(dYaw, dPitch float32) {
	o.Yaw = mod(o.Yaw+dYaw, 2*math.Pi)
	o.Pitch = clamp(o.Pitch+dPitch, o.MinPitch, o.MaxPitch)
}

// ZoomBy multiplies the distance by factor, clamped to limits.
func (o *Orbit) ZoomBy(factor float32) {
	o.Distance = clamp(o.Distance*factor, o.MinDistance, o.MaxDistance)
}

// Pan moves the target across the reef in view-relative directions:
// right along the screen, forward away from the eye. Wraps at world edges.
func (o *Orbit) Pan(right, forward float32) {
	sy := float32(math.Sin(float64(o.Yaw)))
	cy := float32(math.Cos(float64(o.Yaw)))
	// Forward points from eye to target on the ground plane
	dx := right*cy - forward*sy
	dz := -right*sy - forward*cy
	o.TargetX = mod(o.TargetX+dx, o.WorldSize)
	o.TargetZ = mod(o.TargetZ+dz, o.WorldSize)
}

// Raise moves the target vertically, clamped inside the world.
func (o *Orbit) Raise(dy float32) {
	o.TargetY = clamp(o.TargetY+dy, 0, o.WorldSize)
}

// toroidalDelta computes the shortest signed distance from 'from' to 'to'
// in a toroidal space of the given size.
func toroidalDelta(to, from, size float32) float32 {
	d := to - from
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

// mod computes the positive modulo (Go's % can return negative).
func mod(x, m float32) float32 {
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	return r
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
