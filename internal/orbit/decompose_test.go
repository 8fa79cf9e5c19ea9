package orbit

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestDecomposeDelta_ReferenceScenario(t *testing.T) {
	// 0.1 points of horizontal drag at 1360 points/m and 5 rad/m:
	// (0.1/1360)*5 = 3.676e-4 rad of yaw, no pitch.
	cfg := DefaultConfig()
	yaw, pitch := DecomposeDelta(mgl64.Vec3{0.1, 0, 0}, cfg)

	if math.Abs(yaw-3.676470588e-4) > 1e-9 {
		t.Errorf("yaw = %g, want ~3.676e-4", yaw)
	}
	if pitch != 0 {
		t.Errorf("pitch = %g, want 0", pitch)
	}
}

func TestDecomposeDelta_AxesIndependent(t *testing.T) {
	cfg := DefaultConfig()

	yawOnly, _ := DecomposeDelta(mgl64.Vec3{10, 0, 0}, cfg)
	_, pitchOnly := DecomposeDelta(mgl64.Vec3{0, 10, 0}, cfg)
	yawBoth, pitchBoth := DecomposeDelta(mgl64.Vec3{10, 10, 0}, cfg)

	if yawBoth != yawOnly {
		t.Errorf("yaw changed with vertical drag present: %g vs %g", yawBoth, yawOnly)
	}
	if pitchBoth != pitchOnly {
		t.Errorf("pitch changed with horizontal drag present: %g vs %g", pitchBoth, pitchOnly)
	}
}

func TestDecomposeDelta_IgnoresZ(t *testing.T) {
	cfg := DefaultConfig()
	yaw, pitch := DecomposeDelta(mgl64.Vec3{0, 0, 123}, cfg)
	if yaw != 0 || pitch != 0 {
		t.Errorf("z translation produced rotation: yaw=%g pitch=%g", yaw, pitch)
	}
}

func TestDecomposeDelta_ScalesWithConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PointsPerMeter = 100
	cfg.DragRadiansPerMeter = 2

	yaw, pitch := DecomposeDelta(mgl64.Vec3{50, -25, 0}, cfg)
	if math.Abs(yaw-1.0) > 1e-12 {
		t.Errorf("yaw = %g, want 1.0", yaw)
	}
	if math.Abs(pitch-(-0.5)) > 1e-12 {
		t.Errorf("pitch = %g, want -0.5", pitch)
	}
}

func TestDecomposeDelta_Pure(t *testing.T) {
	cfg := DefaultConfig()
	in := mgl64.Vec3{3, 4, 5}
	y1, p1 := DecomposeDelta(in, cfg)
	y2, p2 := DecomposeDelta(in, cfg)
	if y1 != y2 || p1 != p2 {
		t.Error("DecomposeDelta is not deterministic")
	}
}
