// Package orbit implements the orbit-interaction driver: a state machine
// that turns a stream of raw 6-DoF pose samples into rotations on a
// pitch/yaw node pair, and that animates the rig back toward equilibrium
// once the gesture ends. Pitch and yaw live on separate nodes so the two
// axes never couple; all per-gesture rotation is recomputed from the Begin
// snapshot rather than accumulated, keeping Update idempotent.
package orbit

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/banshee-data/stagemode/internal/easing"
	"github.com/banshee-data/stagemode/internal/monitoring"
	"github.com/banshee-data/stagemode/internal/scene"
	"github.com/banshee-data/stagemode/internal/spatial"
	"github.com/banshee-data/stagemode/internal/timeutil"
)

var (
	worldX = mgl64.Vec3{1, 0, 0}
	localY = mgl64.Vec3{0, 1, 0}
)

// Driver owns the interaction state for one rig. It is confined to a single
// interaction context: Begin/Update/End/SetOperation must be delivered
// sequentially, and the scheduler must deliver decay ticks on the same
// context (ManualScheduler does; see timeutil).
type Driver struct {
	cfg      Config
	graph    scene.Graph
	rig      scene.Rig
	animator scene.Animator
	sched    timeutil.TickScheduler
	clock    timeutil.Clock
	obs      Observer

	op    Operation
	state DriverState

	sessionID string
	seq       int64
	snap      Snapshot
	prevManip spatial.Pose
	vel       AngularVelocity

	settleHandle scene.Handle
	settleActive bool
	decayTask    timeutil.Task
	decayVel     float64
}

// NewDriver creates a driver for the given rig. The graph, animator, and
// scheduler are host-supplied collaborators; the driver holds non-owning
// references and only mutates node orientations and positions.
func NewDriver(graph scene.Graph, rig scene.Rig, animator scene.Animator, sched timeutil.TickScheduler, cfg Config) (*Driver, error) {
	if graph == nil || animator == nil || sched == nil {
		return nil, fmt.Errorf("graph, animator, and scheduler are required")
	}
	if rig.Pitch == nil || rig.Yaw == nil || rig.Model == nil {
		return nil, fmt.Errorf("rig must supply pitch, yaw, and model nodes")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Driver{
		cfg:      cfg,
		graph:    graph,
		rig:      rig,
		animator: animator,
		sched:    sched,
		clock:    timeutil.RealClock{},
		op:       OperationNone,
		state:    StateIdle,
	}, nil
}

// SetObserver installs an instrumentation observer. Pass nil to remove it.
func (d *Driver) SetObserver(obs Observer) { d.obs = obs }

// SetClock replaces the timestamp source; tests use a ManualClock.
func (d *Driver) SetClock(c timeutil.Clock) {
	if c != nil {
		d.clock = c
	}
}

// State returns the current lifecycle state.
func (d *Driver) State() DriverState { return d.state }

// SetOperation selects the active manipulation. Takes effect on the next
// Update.
func (d *Driver) SetOperation(op Operation) { d.op = op }

// Operation returns the active manipulation.
func (d *Driver) Operation() Operation { return d.op }

// Velocity returns the most recently computed angular velocity.
func (d *Driver) Velocity() AngularVelocity { return d.vel }

// InProgress reports whether the driver is mid-gesture, or settling with
// either the pitch tween still playing or yaw velocity not yet drained.
func (d *Driver) InProgress() bool {
	switch d.state {
	case StateInteracting:
		return true
	case StateSettling:
		if math.Abs(d.decayVel) > d.cfg.VelocityEpsilon {
			return true
		}
		return d.settleActive && d.animator.IsPlaying(d.settleHandle)
	default:
		return false
	}
}

// Begin starts a new interaction from the given raw manipulation transform.
// Valid from Idle or Settling; beginning during Settling interrupts both the
// pitch tween and the yaw decay before the new snapshot is captured, so the
// snapshot reflects the rig exactly as the user grabbed it. Begin during
// Interacting is a no-op.
func (d *Driver) Begin(m mgl64.Mat4) error {
	pose, err := spatial.FromMatrix(m)
	if err != nil {
		monitoring.Logf("orbit: rejecting begin sample: %v", err)
		return fmt.Errorf("%w: %v", ErrInvalidPose, err)
	}
	if d.state == StateInteracting {
		return fmt.Errorf("%w: begin while interacting", ErrInvalidTransition)
	}

	// Animations must be fully stopped before the node poses are read, or
	// the snapshot would capture a mid-flight pose.
	d.cancelAnimations()

	pitchPose, err := scene.PoseOf(d.graph, d.rig.Pitch)
	if err != nil {
		return fmt.Errorf("sampling pitch node: %w", err)
	}
	yawPose, err := scene.PoseOf(d.graph, d.rig.Yaw)
	if err != nil {
		return fmt.Errorf("sampling yaw node: %w", err)
	}

	d.snap = Snapshot{
		Manipulation: pose,
		Pitch:        pitchPose,
		Yaw:          yawPose,
		YawLocal:     pitchPose.Rotation.Inverse().Mul(yawPose.Rotation).Normalize(),
	}
	d.prevManip = pose
	d.vel = AngularVelocity{}
	d.decayVel = 0
	d.sessionID = uuid.NewString()
	d.seq = 0

	d.transition(StateInteracting)
	d.emit(PhaseBegin, pose, 0, 0)
	return nil
}

// Update applies one gesture sample. With OperationOrbit the cumulative
// delta against the snapshot drives the absolute pitch/yaw orientations,
// while the delta against the previous sample feeds the angular velocity
// that will seed post-release decay. A malformed sample is dropped with the
// prior node poses left untouched.
func (d *Driver) Update(m mgl64.Mat4) error {
	if d.state != StateInteracting {
		return fmt.Errorf("%w: update while %s", ErrInvalidTransition, d.state)
	}

	pose, err := spatial.FromMatrix(m)
	if err != nil {
		monitoring.Logf("orbit: dropping update sample: %v", err)
		return fmt.Errorf("%w: %v", ErrInvalidPose, err)
	}

	if d.op != OperationOrbit {
		// Still track the sample so a later switch to orbit measures its
		// first frame-to-frame delta from the right reference.
		d.prevManip = pose
		return nil
	}

	cumulative := pose.Translation.Sub(d.snap.Manipulation.Translation)
	yawDelta, pitchDelta := DecomposeDelta(cumulative, d.cfg)

	if err := d.applyPitch(pitchDelta); err != nil {
		return err
	}
	if err := d.applyYawAbsolute(yawDelta); err != nil {
		return err
	}

	step := pose.Translation.Sub(d.prevManip.Translation)
	yawRate, pitchRate := DecomposeDelta(step, d.cfg)
	d.vel = AngularVelocity{PitchRate: pitchRate, YawRate: yawRate}

	d.prevManip = pose
	d.emit(PhaseUpdate, pose, yawDelta, pitchDelta)
	return nil
}

// End releases the gesture: the pitch node tweens back to its snapshot
// orientation over the settle duration, and the yaw node keeps spinning on
// the last observed velocity, decaying geometrically until negligible.
func (d *Driver) End() error {
	if d.state != StateInteracting {
		return fmt.Errorf("%w: end while %s", ErrInvalidTransition, d.state)
	}

	d.transition(StateSettling)
	d.emit(PhaseEnd, d.prevManip, 0, 0)

	d.startSettle()
	d.startDecay()
	return nil
}

func (d *Driver) startSettle() {
	cur, err := scene.PoseOf(d.graph, d.rig.Pitch)
	if err != nil {
		monitoring.Logf("orbit: cannot sample pitch node for settle: %v", err)
		return
	}

	// Only the orientation settles; position is left where it is.
	target := spatial.Pose{Rotation: d.snap.Pitch.Rotation, Translation: cur.Translation}
	h, err := d.animator.StartTween(d.rig.Pitch, target, d.cfg.SettleDuration, easing.OutQuad)
	if err != nil {
		monitoring.Logf("orbit: settle tween failed to start: %v", err)
		return
	}
	d.settleHandle = h
	d.settleActive = true
}

func (d *Driver) startDecay() {
	d.decayVel = d.vel.YawRate
	d.decayTask = d.sched.Every(d.cfg.ReferenceTick, d.decayTick)
}

// decayTick runs once per scheduler tick while settling. Decay is computed
// against elapsed wall time normalized to the reference tick, so total decay
// duration does not depend on delivery cadence: a late tick rotates further
// and decays further in one step.
func (d *Driver) decayTick(dt time.Duration) {
	if d.state != StateSettling {
		return
	}

	steps := float64(dt) / float64(d.cfg.ReferenceTick)
	if steps <= 0 {
		return
	}

	if math.Abs(d.decayVel) > d.cfg.VelocityEpsilon {
		if err := d.applyYawRelative(d.decayVel * steps); err != nil {
			monitoring.Logf("orbit: decay step failed: %v", err)
		}
		d.decayVel *= math.Pow(d.cfg.DecayFactor, steps)
		d.emit(PhaseDecay, spatial.Pose{}, 0, 0)
	}

	drained := math.Abs(d.decayVel) <= d.cfg.VelocityEpsilon
	settleDone := !d.settleActive || !d.animator.IsPlaying(d.settleHandle)
	if drained && settleDone {
		d.finishSettle()
	}
}

func (d *Driver) finishSettle() {
	d.cancelAnimations()
	d.snap = Snapshot{}
	d.transition(StateIdle)
	d.sessionID = ""
}

// applyPitch writes the pitch node orientation as the snapshot rotation
// composed with a rotation about the world X axis, converted into the pitch
// node's local frame. Pitch is never written anywhere else.
func (d *Driver) applyPitch(pitchDelta float64) error {
	axis, err := d.graph.WorldDirectionToLocal(d.rig.Pitch, worldX)
	if err != nil {
		return fmt.Errorf("converting pitch axis: %w", err)
	}
	q := d.snap.Pitch.Rotation.Mul(mgl64.QuatRotate(pitchDelta, axis)).Normalize()
	if err := d.graph.SetWorldOrientation(d.rig.Pitch, q); err != nil {
		return fmt.Errorf("writing pitch orientation: %w", err)
	}
	return nil
}

// applyYawAbsolute writes the yaw node orientation as the snapshot's
// parent-relative rotation composed with a rotation about the node's own
// local Y axis, re-anchored under the pitch node's current world orientation.
// Anchoring on the live parent keeps the yaw node (and the model below it)
// inheriting whatever pitch was just applied; anchoring on the snapshot's
// world rotation would solve a local rotation that cancels pitch out of the
// subtree. Yaw is never written to the pitch node and vice versa; that split
// is the invariant that keeps the two axes from coupling.
func (d *Driver) applyYawAbsolute(yawDelta float64) error {
	parent, err := d.graph.WorldOrientation(d.rig.Pitch)
	if err != nil {
		return fmt.Errorf("reading pitch orientation: %w", err)
	}
	q := parent.Mul(d.snap.YawLocal).Mul(mgl64.QuatRotate(yawDelta, localY)).Normalize()
	if err := d.graph.SetWorldOrientation(d.rig.Yaw, q); err != nil {
		return fmt.Errorf("writing yaw orientation: %w", err)
	}
	return nil
}

// applyYawRelative spins the yaw node by an increment on top of its current
// orientation; used by the decay loop, which has no snapshot to recompute
// from once the gesture is over.
func (d *Driver) applyYawRelative(yawDelta float64) error {
	cur, err := d.graph.WorldOrientation(d.rig.Yaw)
	if err != nil {
		return fmt.Errorf("reading yaw orientation: %w", err)
	}
	q := cur.Mul(mgl64.QuatRotate(yawDelta, localY)).Normalize()
	if err := d.graph.SetWorldOrientation(d.rig.Yaw, q); err != nil {
		return fmt.Errorf("writing yaw orientation: %w", err)
	}
	return nil
}

func (d *Driver) cancelAnimations() {
	if d.decayTask != nil {
		d.decayTask.Cancel()
		d.decayTask = nil
	}
	if d.settleActive {
		d.animator.Cancel(d.settleHandle)
		d.settleActive = false
	}
	d.decayVel = 0
}

func (d *Driver) transition(to DriverState) {
	from := d.state
	d.state = to
	monitoring.Debugf("orbit: %s -> %s (session %s)", from, to, d.sessionID)
	if d.obs != nil {
		d.obs.Transition(d.sessionID, from, to)
	}
}

func (d *Driver) emit(phase Phase, pose spatial.Pose, yawDelta, pitchDelta float64) {
	if d.obs == nil {
		return
	}
	d.seq++
	d.obs.Sample(TraceSample{
		SessionID:  d.sessionID,
		Seq:        d.seq,
		Time:       d.clock.Now(),
		Phase:      phase,
		Pose:       pose,
		YawDelta:   yawDelta,
		PitchDelta: pitchDelta,
		YawRate:    d.currentRate(phase),
		PitchRate:  d.vel.PitchRate,
	})
}

func (d *Driver) currentRate(phase Phase) float64 {
	if phase == PhaseDecay {
		return d.decayVel
	}
	return d.vel.YawRate
}
