package orbit

import (
	"fmt"
	"time"

	"github.com/banshee-data/stagemode/internal/units"
)

// Defaults for the interaction constants. The original implementation hid
// these in globals; they are explicit configuration here so tests and
// tooling can vary them per driver instance.
const (
	// DefaultDragRadiansPerMeter converts a drag distance in meters to a
	// rotation in radians.
	DefaultDragRadiansPerMeter = 5.0
	// DefaultDecayFactor is the per-reference-tick geometric decay applied
	// to yaw velocity after release.
	DefaultDecayFactor = 0.9
	// DefaultVelocityEpsilon is the yaw rate below which decay is drained.
	DefaultVelocityEpsilon = 1e-4
	// DefaultSettleDuration is the fixed pitch settle tween length.
	DefaultSettleDuration = 300 * time.Millisecond
	// DefaultReferenceTick is the frame interval the decay factor is
	// normalized to (60Hz). Ticks arriving late decay proportionally more.
	DefaultReferenceTick = 16667 * time.Microsecond
)

// Config holds the interaction constants for one driver instance.
type Config struct {
	// PointsPerMeter relates device points to physical meters.
	PointsPerMeter float64

	// DragRadiansPerMeter scales drag distance (meters) to rotation
	// (radians).
	DragRadiansPerMeter float64

	// DecayFactor multiplies yaw velocity once per reference tick after
	// release. Must lie strictly between 0 and 1.
	DecayFactor float64

	// VelocityEpsilon is the magnitude below which yaw velocity counts as
	// drained.
	VelocityEpsilon float64

	// SettleDuration is how long the pitch settle tween runs.
	SettleDuration time.Duration

	// ReferenceTick normalizes elapsed time in the decay computation.
	ReferenceTick time.Duration
}

// DefaultConfig returns production defaults for the reference device class.
func DefaultConfig() Config {
	return Config{
		PointsPerMeter:      units.DefaultPointsPerMeter,
		DragRadiansPerMeter: DefaultDragRadiansPerMeter,
		DecayFactor:         DefaultDecayFactor,
		VelocityEpsilon:     DefaultVelocityEpsilon,
		SettleDuration:      DefaultSettleDuration,
		ReferenceTick:       DefaultReferenceTick,
	}
}

// Validate rejects configurations that would stall or diverge the decay
// loop or produce degenerate unit conversions.
func (c Config) Validate() error {
	if c.PointsPerMeter <= 0 {
		return fmt.Errorf("points per meter must be positive, got %v", c.PointsPerMeter)
	}
	if c.DragRadiansPerMeter <= 0 {
		return fmt.Errorf("drag multiplier must be positive, got %v", c.DragRadiansPerMeter)
	}
	if c.DecayFactor <= 0 || c.DecayFactor >= 1 {
		return fmt.Errorf("decay factor must be in (0,1), got %v", c.DecayFactor)
	}
	if c.VelocityEpsilon <= 0 {
		return fmt.Errorf("velocity epsilon must be positive, got %v", c.VelocityEpsilon)
	}
	if c.SettleDuration <= 0 {
		return fmt.Errorf("settle duration must be positive, got %v", c.SettleDuration)
	}
	if c.ReferenceTick <= 0 {
		return fmt.Errorf("reference tick must be positive, got %v", c.ReferenceTick)
	}
	return nil
}
