package gfractal

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/soypat/geometry/md3"
)

// Normalize returns v scaled to unit length. The zero vector has no direction
// and results in NaN components which propagate through any further arithmetic.
func Normalize(v md3.Vec) md3.Vec {
	return md3.Scale(1/math.Sqrt(md3.Dot(v, v)), v)
}

// Mod returns the component-wise floored modulo of v by n, a - n*floor(a/n).
// Unlike a truncated remainder the result is always in [0, n) for positive n.
func Mod(v md3.Vec, n float64) md3.Vec {
	return md3.Vec{
		X: modf(v.X, n),
		Y: modf(v.Y, n),
		Z: modf(v.Z, n),
	}
}

func modf(a, n float64) float64 {
	return a - n*math.Floor(a/n)
}

// Rotate rotates v by the Euler angles (radians). See [NewEulerRotation] for the convention.
func Rotate(v md3.Vec, angles md3.Vec) md3.Vec {
	return NewEulerRotation(angles).Apply(v)
}

// EulerRotation is a precomputed rigid rotation.
// The zero value is the identity rotation.
type EulerRotation struct {
	m        mgl64.Mat3
	nonIdent bool
}

// NewEulerRotation builds the general rotation matrix R = Rz(angles.X)·Ry(angles.Y)·Rx(angles.Z),
// that is yaw about z, pitch about y and roll about x, with angles in radians.
// Rotating (5,3,10) by (π/2,0,0) results in (-3,5,10).
func NewEulerRotation(angles md3.Vec) EulerRotation {
	if angles == (md3.Vec{}) {
		return EulerRotation{}
	}
	m := mgl64.Rotate3DZ(angles.X).Mul3(mgl64.Rotate3DY(angles.Y)).Mul3(mgl64.Rotate3DX(angles.Z))
	return EulerRotation{m: m, nonIdent: true}
}

// IsIdentity reports whether the rotation leaves all points unchanged and may be skipped.
func (r EulerRotation) IsIdentity() bool { return !r.nonIdent }

// Apply returns v rotated.
func (r EulerRotation) Apply(v md3.Vec) md3.Vec {
	if !r.nonIdent {
		return v
	}
	got := r.m.Mul3x1(mgl64.Vec3{v.X, v.Y, v.Z})
	return md3.Vec{X: got[0], Y: got[1], Z: got[2]}
}
