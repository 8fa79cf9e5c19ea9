package orbit

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/stagemode/internal/spatial"
)

// Operation selects which manipulation the driver applies to the rig. The
// enum is closed today; the None arm keeps room for pan/zoom variants
// without speculative machinery.
type Operation string

const (
	// OperationNone leaves node poses untouched; Update still records the
	// incoming sample so a later switch to orbit measures from the right
	// reference.
	OperationNone Operation = "none"
	// OperationOrbit rotates the rig: horizontal drag spins yaw, vertical
	// drag tilts pitch.
	OperationOrbit Operation = "orbit"
)

// DriverState is the lifecycle state of the orbit driver. Exactly one state
// is current at any time.
type DriverState string

const (
	// StateIdle means no gesture is active and no animation is running.
	StateIdle DriverState = "idle"
	// StateInteracting means a gesture is in flight between Begin and End.
	StateInteracting DriverState = "interacting"
	// StateSettling means the gesture has ended and the pitch settle tween
	// or yaw decay is still running.
	StateSettling DriverState = "settling"
)

// Snapshot is the reference captured once per Begin. All cumulative deltas
// during the interaction are measured against it, so a repeated identical
// Update recomputes the same orientation instead of accumulating drift.
type Snapshot struct {
	Manipulation spatial.Pose
	Pitch        spatial.Pose
	Yaw          spatial.Pose

	// YawLocal is the yaw node's rotation relative to its pitch parent.
	// Yaw writes compose onto this under the pitch node's live world
	// orientation, so the model subtree inherits pitch and yaw together.
	YawLocal mgl64.Quat
}

// AngularVelocity is the frame-to-frame angular rate, in radians per
// reference tick, recomputed on every Update. YawRate seeds the post-release
// decay; pitch has no momentum, so PitchRate is diagnostic only.
type AngularVelocity struct {
	PitchRate float64
	YawRate   float64
}
