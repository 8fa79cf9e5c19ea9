package scene

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/banshee-data/stagemode/internal/easing"
	"github.com/banshee-data/stagemode/internal/spatial"
	"github.com/banshee-data/stagemode/internal/timeutil"
)

// TweenAnimator implements Animator by interpolating node poses against a
// Graph. It has no clock of its own: Step advances every active tween by an
// elapsed interval, so the same code runs under a real scheduler or under a
// manually stepped test. Rotation interpolates by slerp, position linearly,
// both shaped by the tween's easing curve.
type TweenAnimator struct {
	mu     sync.Mutex
	graph  Graph
	tweens map[Handle]*tween
}

type tween struct {
	node     Node
	from     spatial.Pose
	target   spatial.Pose
	elapsed  time.Duration
	duration time.Duration
	curve    easing.Curve
}

// NewTweenAnimator creates an animator writing to graph.
func NewTweenAnimator(graph Graph) *TweenAnimator {
	return &TweenAnimator{
		graph:  graph,
		tweens: make(map[Handle]*tween),
	}
}

// StartTween captures the node's current pose as the start and begins
// animating toward target. A non-positive duration snaps the node to the
// target immediately and returns a finished handle.
func (a *TweenAnimator) StartTween(n Node, target spatial.Pose, d time.Duration, curve easing.Curve) (Handle, error) {
	from, err := PoseOf(a.graph, n)
	if err != nil {
		return "", fmt.Errorf("sampling tween start pose: %w", err)
	}
	if curve == nil {
		curve = easing.Linear
	}

	h := Handle(uuid.NewString())
	if d <= 0 {
		if err := a.apply(n, target); err != nil {
			return "", err
		}
		return h, nil
	}

	a.mu.Lock()
	a.tweens[h] = &tween{
		node:     n,
		from:     from,
		target:   target,
		duration: d,
		curve:    curve,
	}
	a.mu.Unlock()
	return h, nil
}

// IsPlaying reports whether the handle's tween is still running.
func (a *TweenAnimator) IsPlaying(h Handle) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.tweens[h]
	return ok
}

// Cancel stops a tween, leaving the node wherever the last Step put it.
func (a *TweenAnimator) Cancel(h Handle) {
	a.mu.Lock()
	delete(a.tweens, h)
	a.mu.Unlock()
}

// Step advances all active tweens by dt, writing interpolated poses into the
// graph. Tweens that reach their duration are applied exactly at the target
// and removed.
func (a *TweenAnimator) Step(dt time.Duration) {
	a.mu.Lock()
	type pending struct {
		node Node
		pose spatial.Pose
		h    Handle
		done bool
	}
	updates := make([]pending, 0, len(a.tweens))
	for h, tw := range a.tweens {
		tw.elapsed += dt
		t := easing.Clamp01(float64(tw.elapsed) / float64(tw.duration))
		eased := tw.curve(t)

		pose := spatial.Pose{
			Rotation:    mgl64.QuatSlerp(tw.from.Rotation, tw.target.Rotation, eased),
			Translation: lerpVec3(tw.from.Translation, tw.target.Translation, eased),
		}
		done := tw.elapsed >= tw.duration
		if done {
			pose = tw.target
		}
		updates = append(updates, pending{node: tw.node, pose: pose, h: h, done: done})
	}
	for _, u := range updates {
		if u.done {
			delete(a.tweens, u.h)
		}
	}
	a.mu.Unlock()

	// Graph writes happen outside the animator lock; MemoryGraph has its
	// own mutex and platform graphs are expected to as well.
	for _, u := range updates {
		if err := a.apply(u.node, u.pose); err != nil {
			// A node can disappear from under a tween if the host tears the
			// rig down mid-animation; the tween is already unregistered.
			continue
		}
	}
}

// Drive runs Step on a scheduler at the given frame interval. Callers own
// the returned task and must cancel it when the animator is done.
func (a *TweenAnimator) Drive(s timeutil.TickScheduler, frame time.Duration) timeutil.Task {
	return s.Every(frame, a.Step)
}

// ActiveTweens reports how many tweens are currently running.
func (a *TweenAnimator) ActiveTweens() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.tweens)
}

func (a *TweenAnimator) apply(n Node, p spatial.Pose) error {
	if err := a.graph.SetWorldOrientation(n, p.Rotation); err != nil {
		return err
	}
	return a.graph.SetWorldPosition(n, p.Translation)
}

func lerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
