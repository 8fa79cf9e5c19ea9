package orbit

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/stagemode/internal/units"
)

// DecomposeDelta converts a translation delta in device points into
// independent yaw and pitch angular increments in radians. Horizontal drag
// maps to yaw, vertical drag to pitch; the z component is ignored. Pure
// function of its inputs; non-finite samples are rejected upstream when the
// raw transform is parsed.
func DecomposeDelta(delta mgl64.Vec3, cfg Config) (yawRad, pitchRad float64) {
	x := units.MetersFromPoints(delta.X(), cfg.PointsPerMeter)
	y := units.MetersFromPoints(delta.Y(), cfg.PointsPerMeter)
	return x * cfg.DragRadiansPerMeter, y * cfg.DragRadiansPerMeter
}
