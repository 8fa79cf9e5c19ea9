// Package spatial provides the pose value type shared by the orbit driver
// and the scene-graph collaborators, plus validation for raw 4x4 transforms
// arriving from the gesture recognizer.
package spatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RigidTolerance is the tolerance used when checking that a transform's
// rotation submatrix is a proper rotation (orthonormal, det ≈ 1).
const RigidTolerance = 0.01

var (
	// ErrNotFinite indicates a transform containing NaN or Inf entries.
	ErrNotFinite = errors.New("transform contains non-finite entries")
	// ErrNotRigid indicates a transform whose rotation submatrix is not a
	// proper rotation, or whose bottom row is not [0 0 0 1].
	ErrNotRigid = errors.New("transform is not a rigid transform")
)

// Pose is an immutable snapshot of rotation and translation at one instant.
// It is copied by value wherever used; no shared ownership.
type Pose struct {
	Rotation    mgl64.Quat
	Translation mgl64.Vec3
}

// Identity returns the pose with no rotation and zero translation.
func Identity() Pose {
	return Pose{Rotation: mgl64.QuatIdent()}
}

// FromMatrix extracts a Pose from a raw 4x4 transform after validating it.
// The matrix must be finite and a proper rigid transform; anything else is
// rejected so a malformed input sample can be dropped without disturbing
// previously applied poses.
func FromMatrix(m mgl64.Mat4) (Pose, error) {
	if !IsFinite(m) {
		return Pose{}, ErrNotFinite
	}
	if !IsRigid(m) {
		return Pose{}, ErrNotRigid
	}
	return Pose{
		Rotation:    mgl64.Mat4ToQuat(m).Normalize(),
		Translation: m.Col(3).Vec3(),
	}, nil
}

// Matrix returns the 4x4 transform equivalent to the pose.
func (p Pose) Matrix() mgl64.Mat4 {
	m := p.Rotation.Mat4()
	m.SetCol(3, mgl64.Vec4{p.Translation.X(), p.Translation.Y(), p.Translation.Z(), 1})
	return m
}

// ApproxEqual reports whether two poses match within tol, comparing the
// rotations up to sign (q and -q describe the same orientation).
func (p Pose) ApproxEqual(other Pose, tol float64) bool {
	if !p.Translation.ApproxEqualThreshold(other.Translation, tol) {
		return false
	}
	return QuatApproxEqual(p.Rotation, other.Rotation, tol)
}

// QuatApproxEqual reports whether two unit quaternions describe the same
// orientation within tol, accounting for the q == -q double cover.
func QuatApproxEqual(a, b mgl64.Quat, tol float64) bool {
	d := a.Dot(b)
	return math.Abs(math.Abs(d)-1) <= tol
}

// IsFinite reports whether every entry of the matrix is a finite number.
func IsFinite(m mgl64.Mat4) bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// IsRigid reports whether the matrix is a valid rigid transform:
//  1. The 3x3 rotation submatrix is orthonormal with det ≈ 1
//     (proper rotation, no scale, shear, or reflection).
//  2. The bottom row is [0 0 0 1].
func IsRigid(m mgl64.Mat4) bool {
	r := [3][3]float64{}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			r[row][col] = m.At(row, col)
		}
	}

	det := r[0][0]*(r[1][1]*r[2][2]-r[1][2]*r[2][1]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])
	if math.Abs(det-1) > RigidTolerance {
		return false
	}

	// R * Rᵀ must be the identity: columns orthonormal. The determinant
	// check alone misses det-preserving shear.
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dot := r[0][i]*r[0][j] + r[1][i]*r[1][j] + r[2][i]*r[2][j]
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(dot-want) > RigidTolerance {
				return false
			}
		}
	}

	if m.At(3, 0) != 0 || m.At(3, 1) != 0 || m.At(3, 2) != 0 {
		return false
	}
	return math.Abs(m.At(3, 3)-1) <= 0.001
}

// ValidateMatrix returns a descriptive error for an invalid transform, or
// nil when the matrix is usable as a pose sample.
func ValidateMatrix(m mgl64.Mat4) error {
	if !IsFinite(m) {
		return ErrNotFinite
	}
	if !IsRigid(m) {
		return fmt.Errorf("%w (det or orthonormality out of tolerance)", ErrNotRigid)
	}
	return nil
}
