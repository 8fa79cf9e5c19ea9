// Package scene defines the contracts the orbit driver consumes from its
// scene-graph host: reading and writing node transforms, converting world
// directions into a node's local frame, and running pose tweens. The driver
// never constructs or reparents nodes; it holds non-owning handles supplied
// at construction.
//
// The package also ships an in-memory reference implementation (MemoryGraph,
// TweenAnimator) used by the package tests and the gesture-replay tool.
package scene

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/stagemode/internal/easing"
	"github.com/banshee-data/stagemode/internal/spatial"
)

// Node is an opaque handle to a scene-graph node owned by the host.
type Node interface {
	// ID returns a stable identifier for the node.
	ID() string
}

// Rig is the three-node parent chain the driver rotates:
// Pitch (outer, world-relative) → Yaw (inner, locally-relative) → Model.
// Pitch rotation is only ever written to the Pitch node; yaw rotation is
// only ever written to the Yaw node. Splitting the axes across two nodes is
// what keeps pitch and yaw from coupling into gimbal-style drift.
type Rig struct {
	Pitch Node
	Yaw   Node
	Model Node
}

// Graph is the scene-graph read/write surface the driver depends on.
type Graph interface {
	// WorldOrientation returns the node's orientation in world space.
	WorldOrientation(n Node) (mgl64.Quat, error)

	// SetWorldOrientation replaces the node's world-space orientation.
	SetWorldOrientation(n Node, q mgl64.Quat) error

	// WorldPosition returns the node's position in world space.
	WorldPosition(n Node) (mgl64.Vec3, error)

	// SetWorldPosition replaces the node's world-space position.
	SetWorldPosition(n Node, p mgl64.Vec3) error

	// WorldDirectionToLocal converts a direction vector from world space
	// into the node's local frame.
	WorldDirectionToLocal(n Node, v mgl64.Vec3) (mgl64.Vec3, error)
}

// Handle identifies a running animation.
type Handle string

// Animator runs pose tweens for the settle-back-to-rest phase.
type Animator interface {
	// StartTween animates the node from its current pose to target over d,
	// shaped by curve, and returns a handle for polling and cancellation.
	StartTween(n Node, target spatial.Pose, d time.Duration, curve easing.Curve) (Handle, error)

	// IsPlaying reports whether the animation behind h is still running.
	IsPlaying(h Handle) bool

	// Cancel stops the animation behind h, leaving the node at its current
	// mid-flight pose. Unknown handles are ignored.
	Cancel(h Handle)
}

// PoseOf samples a node's current world pose.
func PoseOf(g Graph, n Node) (spatial.Pose, error) {
	q, err := g.WorldOrientation(n)
	if err != nil {
		return spatial.Pose{}, err
	}
	p, err := g.WorldPosition(n)
	if err != nil {
		return spatial.Pose{}, err
	}
	return spatial.Pose{Rotation: q, Translation: p}, nil
}
