package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/stagemode/internal/spatial"
)

func TestMemoryGraph_RigParentChain(t *testing.T) {
	g := NewMemoryGraph()
	rig, err := g.NewRig()
	require.NoError(t, err)

	// All three nodes start at identity.
	for _, n := range []Node{rig.Pitch, rig.Yaw, rig.Model} {
		q, err := g.WorldOrientation(n)
		require.NoError(t, err)
		assert.True(t, spatial.QuatApproxEqual(q, mgl64.QuatIdent(), 1e-12))
	}
}

func TestMemoryGraph_ChildInheritsParentRotation(t *testing.T) {
	g := NewMemoryGraph()
	rig, err := g.NewRig()
	require.NoError(t, err)

	pitchRot := mgl64.QuatRotate(0.5, mgl64.Vec3{1, 0, 0})
	require.NoError(t, g.SetWorldOrientation(rig.Pitch, pitchRot))

	// The yaw child has identity local rotation, so its world orientation
	// equals the parent's.
	yawWorld, err := g.WorldOrientation(rig.Yaw)
	require.NoError(t, err)
	assert.True(t, spatial.QuatApproxEqual(yawWorld, pitchRot, 1e-9))

	yawLocal, err := g.LocalOrientation(rig.Yaw)
	require.NoError(t, err)
	assert.True(t, spatial.QuatApproxEqual(yawLocal, mgl64.QuatIdent(), 1e-9))
}

func TestMemoryGraph_SetWorldOrientationSolvesLocal(t *testing.T) {
	g := NewMemoryGraph()
	rig, err := g.NewRig()
	require.NoError(t, err)

	pitchRot := mgl64.QuatRotate(0.3, mgl64.Vec3{1, 0, 0})
	yawWorld := pitchRot.Mul(mgl64.QuatRotate(0.8, mgl64.Vec3{0, 1, 0}))

	require.NoError(t, g.SetWorldOrientation(rig.Pitch, pitchRot))
	require.NoError(t, g.SetWorldOrientation(rig.Yaw, yawWorld))

	got, err := g.WorldOrientation(rig.Yaw)
	require.NoError(t, err)
	assert.True(t, spatial.QuatApproxEqual(got, yawWorld, 1e-9),
		"world orientation should round-trip through local decomposition")

	// Local yaw rotation must be the pure Y component.
	local, err := g.LocalOrientation(rig.Yaw)
	require.NoError(t, err)
	wantLocal := mgl64.QuatRotate(0.8, mgl64.Vec3{0, 1, 0})
	assert.True(t, spatial.QuatApproxEqual(local, wantLocal, 1e-9))
}

func TestMemoryGraph_WorldDirectionToLocal(t *testing.T) {
	g := NewMemoryGraph()
	rig, err := g.NewRig()
	require.NoError(t, err)

	// With the node rotated 90° about Y, the local frame sees world X
	// rotated back by -90°: +Z.
	require.NoError(t, g.SetWorldOrientation(rig.Pitch, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})))

	local, err := g.WorldDirectionToLocal(rig.Pitch, mgl64.Vec3{1, 0, 0})
	require.NoError(t, err)

	want := mgl64.Vec3{0, 0, 1}
	assert.InDelta(t, want.X(), local.X(), 1e-9)
	assert.InDelta(t, want.Y(), local.Y(), 1e-9)
	assert.InDelta(t, want.Z(), local.Z(), 1e-9)
}

func TestMemoryGraph_WorldPositionThroughChain(t *testing.T) {
	g := NewMemoryGraph()
	rig, err := g.NewRig()
	require.NoError(t, err)

	require.NoError(t, g.SetWorldPosition(rig.Pitch, mgl64.Vec3{1, 0, 0}))
	require.NoError(t, g.SetWorldPosition(rig.Yaw, mgl64.Vec3{1, 2, 0}))

	p, err := g.WorldPosition(rig.Yaw)
	require.NoError(t, err)
	assert.InDelta(t, 1, p.X(), 1e-9)
	assert.InDelta(t, 2, p.Y(), 1e-9)

	// Rotating the parent moves the child's world position with it.
	require.NoError(t, g.SetWorldOrientation(rig.Pitch, mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 0, 1})))
	p, err = g.WorldPosition(rig.Yaw)
	require.NoError(t, err)
	assert.InDelta(t, 1, p.X(), 1e-9)
	assert.InDelta(t, -2, p.Y(), 1e-9)
}

func TestMemoryGraph_UnknownNode(t *testing.T) {
	g := NewMemoryGraph()
	other := NewMemoryGraph()
	foreign, err := other.NewNode("foreign", nil)
	require.NoError(t, err)

	_, err = g.WorldOrientation(foreign)
	assert.ErrorIs(t, err, ErrUnknownNode)

	err = g.SetWorldOrientation(nil, mgl64.QuatIdent())
	assert.ErrorIs(t, err, ErrUnknownNode)
}
