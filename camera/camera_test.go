package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func TestNewOrbitCentred(t *testing.T) {
	o := NewOrbit(100)
	if o.TargetX != 50 || o.TargetZ != 50 {
		t.Errorf("target = (%v, %v), want world centre", o.TargetX, o.TargetZ)
	}
	if o.Distance <= o.MinDistance || o.Distance > o.MaxDistance {
		t.Errorf("distance %v outside limits", o.Distance)
	}
}

func TestPositionDistance(t *testing.T) {
	o := NewOrbit(100)
	x, y, z := o.Position()
	dy := y - o.TargetY
	d := float32(math.Sqrt(float64(x*x + dy*dy + z*z)))
	if !near(d, o.Distance) {
		t.Errorf("eye %v from target, want %v", d, o.Distance)
	}
	if y <= o.TargetY {
		t.Error("eye below target with positive pitch")
	}
}

func TestRelativeWraps(t *testing.T) {
	o := NewOrbit(100)
	o.TargetX, o.TargetZ = 5, 5

	tests := []struct {
		wx, wz float32
		wantX  float32
		wantZ  float32
	}{
		{5, 5, 0, 0},
		{10, 5, 5, 0},
		{95, 5, -10, 0},  // across the low edge
		{5, 98, 0, -7},
	}
	for _, tt := range tests {
		x, _, z := o.Relative(tt.wx, 3, tt.wz)
		if !near(x, tt.wantX) || !near(z, tt.wantZ) {
			t.Errorf("Relative(%v, %v) = (%v, %v), want (%v, %v)", tt.wx, tt.wz, x, z, tt.wantX, tt.wantZ)
		}
	}
}

func TestRotateClampsPitch(t *testing.T) {
	o := NewOrbit(50)
	o.Rotate(0, 10)
	if o.Pitch != o.MaxPitch {
		t.Errorf("pitch = %v, want max %v", o.Pitch, o.MaxPitch)
	}
	o.Rotate(0, -10)
	if o.Pitch != o.MinPitch {
		t.Errorf("pitch = %v, want min %v", o.Pitch, o.MinPitch)
	}
	o.Yaw = 0
	o.Rotate(-0.5, 0)
	if o.Yaw < 0 || o.Yaw >= 2*math.Pi {
		t.Errorf("yaw %v not wrapped", o.Yaw)
	}
}

func TestZoomClamps(t *testing.T) {
	o := NewOrbit(50)
	o.ZoomBy(1e6)
	if o.Distance != o.MaxDistance {
		t.Errorf("distance = %v, want max", o.Distance)
	}
	o.ZoomBy(1e-6)
	if o.Distance != o.MinDistance {
		t.Errorf("distance = %v, want min", o.Distance)
	}
}

func TestPanWraps(t *testing.T) {
	o := NewOrbit(100)
	o.Yaw = 0
	o.TargetX, o.TargetZ = 99, 50

	o.Pan(3, 0)
	if !near(o.TargetX, 2) {
		t.Errorf("target x = %v after wrapping pan, want 2", o.TargetX)
	}

	// Forward at yaw 0 heads toward -z
	o.Pan(0, 10)
	if !near(o.TargetZ, 40) {
		t.Errorf("target z = %v after forward pan, want 40", o.TargetZ)
	}
}

func TestResetRestoresView(t *testing.T) {
	o := NewOrbit(64)
	want := *o
	o.Pan(7, 3)
	o.Rotate(1, 0.2)
	o.ZoomBy(0.5)
	o.Raise(4)
	o.Reset()
	if *o != want {
		t.Errorf("after Reset = %+v, want %+v", *o, want)
	}
}
