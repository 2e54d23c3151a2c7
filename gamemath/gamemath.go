package gamemath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// WorldUp is the global up axis used by every controller.
var WorldUp = mgl64.Vec3{0, 1, 0}

// DefaultForward is the fallback facing axis when a flattened direction
// degenerates to near-zero length.
var DefaultForward = mgl64.Vec3{0, 0, 1}

// Flatten removes the component of v along the given axis.
func Flatten(v, axis mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(axis.Mul(v.Dot(axis)))
}

// SafeNormalize returns v normalized, or fallback when v is too short to
// normalize reliably.
func SafeNormalize(v, fallback mgl64.Vec3) mgl64.Vec3 {
	const minLen = 1e-8
	if l := v.Len(); l > minLen {
		return v.Mul(1 / l)
	}
	return fallback
}

// FlatForward projects the rotation's forward axis onto the plane
// perpendicular to up. Falls back to DefaultForward for degenerate cases
// (e.g. a piece lying exactly on its side).
func FlatForward(rot mgl64.Quat, up mgl64.Vec3) mgl64.Vec3 {
	return SafeNormalize(Flatten(rot.Rotate(DefaultForward), up), DefaultForward)
}

// UprightFacing builds the yaw-only orientation whose up axis is exactly up
// and whose forward axis is the given flattened direction.
func UprightFacing(forward, up mgl64.Vec3) mgl64.Quat {
	f := SafeNormalize(forward, DefaultForward)
	u := SafeNormalize(up, WorldUp)
	r := SafeNormalize(u.Cross(f), mgl64.Vec3{1, 0, 0})
	// Re-orthogonalize forward in case the inputs were not quite perpendicular.
	f = r.Cross(u)
	m := mgl64.Mat3FromCols(r, u, f)
	return mgl64.Mat4ToQuat(m.Mat4()).Normalize()
}

// AxisAngle decomposes a rotation into its axis and angle in radians.
// The identity rotation returns a zero angle with DefaultForward as axis.
func AxisAngle(q mgl64.Quat) (mgl64.Vec3, float64) {
	q = q.Normalize()
	w := mgl64.Clamp(q.W, -1, 1)
	angle := 2 * math.Acos(w)
	s := math.Sqrt(1 - w*w)
	if s < 1e-8 {
		return DefaultForward, 0
	}
	axis := q.V.Mul(1 / s)
	// Keep the short way around.
	if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	return axis, angle
}

// DeltaAngularVelocity converts the rotation taking from to to into the
// angular velocity that performs it over dt seconds.
func DeltaAngularVelocity(from, to mgl64.Quat, dt float64) mgl64.Vec3 {
	if dt <= 0 {
		return mgl64.Vec3{}
	}
	delta := to.Mul(from.Inverse())
	axis, angle := AxisAngle(delta)
	return axis.Mul(angle / dt)
}

// LeanRotation converts a 2D lean (x = roll toward lateral drive, y = pitch
// toward forward drive) into a local rotation.
func LeanRotation(lean mgl64.Vec2) mgl64.Quat {
	pitch := mgl64.QuatRotate(lean.Y(), mgl64.Vec3{1, 0, 0})
	roll := mgl64.QuatRotate(-lean.X(), mgl64.Vec3{0, 0, 1})
	return pitch.Mul(roll).Normalize()
}

// ClampVec2 limits v to the given magnitude.
func ClampVec2(v mgl64.Vec2, max float64) mgl64.Vec2 {
	if max <= 0 {
		return mgl64.Vec2{}
	}
	if l := v.Len(); l > max {
		return v.Mul(max / l)
	}
	return v
}

// ExpBlend returns the exponential step factor for a first-order lag filter
// with the given time constant. A zero or negative time constant snaps
// straight to the target.
func ExpBlend(timeConstant, dt float64) float64 {
	if timeConstant <= 0 {
		return 1
	}
	return 1 - math.Exp(-dt/timeConstant)
}

// HorizontalDistance measures the distance between two points ignoring the
// vertical axis.
func HorizontalDistance(a, b mgl64.Vec3) float64 {
	dx := a.X() - b.X()
	dz := a.Z() - b.Z()
	return math.Hypot(dx, dz)
}
