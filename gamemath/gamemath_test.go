package gamemath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func vecNear(t *testing.T, got, want mgl64.Vec3, eps float64, label string) {
	t.Helper()
	if got.Sub(want).Len() > eps {
		t.Errorf("%s = %v, want %v", label, got, want)
	}
}

func TestFlattenRemovesAxisComponent(t *testing.T) {
	v := mgl64.Vec3{3, 5, -2}
	flat := Flatten(v, WorldUp)
	vecNear(t, flat, mgl64.Vec3{3, 0, -2}, 1e-12, "flattened")
}

func TestSafeNormalizeFallsBack(t *testing.T) {
	got := SafeNormalize(mgl64.Vec3{0, 1e-12, 0}, DefaultForward)
	vecNear(t, got, DefaultForward, 0, "degenerate input")

	got = SafeNormalize(mgl64.Vec3{0, 4, 0}, DefaultForward)
	vecNear(t, got, mgl64.Vec3{0, 1, 0}, 1e-12, "normalized")
}

func TestUprightFacingIsYawOnly(t *testing.T) {
	// A rotation leaning 40 degrees off vertical, then uprighted.
	lean := mgl64.QuatRotate(mgl64.DegToRad(40), mgl64.Vec3{1, 0, 0})
	yaw := mgl64.QuatRotate(mgl64.DegToRad(30), WorldUp)
	q := yaw.Mul(lean)

	upright := UprightFacing(FlatForward(q, WorldUp), WorldUp)

	vecNear(t, upright.Rotate(WorldUp), WorldUp, 1e-9, "up axis")

	wantForward := yaw.Rotate(DefaultForward)
	vecNear(t, upright.Rotate(DefaultForward), wantForward, 1e-9, "forward axis")
}

func TestAxisAngleShortWay(t *testing.T) {
	q := mgl64.QuatRotate(mgl64.DegToRad(350), mgl64.Vec3{0, 1, 0})
	axis, angle := AxisAngle(q)
	// 350 degrees forward is 10 degrees back.
	if math.Abs(math.Abs(angle)-mgl64.DegToRad(10)) > 1e-9 {
		t.Errorf("angle = %g, want +/- %g", angle, mgl64.DegToRad(10))
	}
	reassembled := mgl64.QuatRotate(angle, axis)
	if d := reassembled.Rotate(DefaultForward).Sub(q.Rotate(DefaultForward)).Len(); d > 1e-9 {
		t.Errorf("axis/angle does not reproduce rotation, error %g", d)
	}
}

func TestAxisAngleIdentity(t *testing.T) {
	_, angle := AxisAngle(mgl64.QuatIdent())
	if angle != 0 {
		t.Errorf("identity angle = %g, want 0", angle)
	}
}

func TestDeltaAngularVelocityPerformsRotation(t *testing.T) {
	from := mgl64.QuatIdent()
	to := mgl64.QuatRotate(mgl64.DegToRad(45), mgl64.Vec3{0, 1, 0})
	dt := 0.1

	omega := DeltaAngularVelocity(from, to, dt)

	// Integrating omega over dt must land on the target.
	speed := omega.Len()
	spin := mgl64.QuatRotate(speed*dt, omega.Mul(1/speed))
	got := spin.Mul(from)
	if d := got.Rotate(DefaultForward).Sub(to.Rotate(DefaultForward)).Len(); d > 1e-9 {
		t.Errorf("integrated rotation misses target by %g", d)
	}
}

func TestDeltaAngularVelocityZeroDt(t *testing.T) {
	to := mgl64.QuatRotate(1, mgl64.Vec3{0, 1, 0})
	if got := DeltaAngularVelocity(mgl64.QuatIdent(), to, 0); got != (mgl64.Vec3{}) {
		t.Errorf("zero dt = %v, want zero vector", got)
	}
}

func TestLeanRotationTiltsUpAxis(t *testing.T) {
	// Pure lateral lean rolls the up axis toward +X.
	q := LeanRotation(mgl64.Vec2{mgl64.DegToRad(20), 0})
	up := q.Rotate(WorldUp)
	if up.X() <= 0 {
		t.Errorf("lateral lean tilted up axis to %v, want +X component", up)
	}
	if math.Abs(up.Z()) > 1e-9 {
		t.Errorf("lateral lean produced forward tilt: %v", up)
	}
}

func TestClampVec2(t *testing.T) {
	v := mgl64.Vec2{3, 4}
	got := ClampVec2(v, 1)
	if math.Abs(got.Len()-1) > 1e-12 {
		t.Errorf("clamped length = %g, want 1", got.Len())
	}
	got = ClampVec2(mgl64.Vec2{0.1, 0}, 1)
	if got != (mgl64.Vec2{0.1, 0}) {
		t.Errorf("in-range vector altered: %v", got)
	}
	if got := ClampVec2(v, 0); got != (mgl64.Vec2{}) {
		t.Errorf("zero max = %v, want zero vector", got)
	}
}

func TestExpBlend(t *testing.T) {
	if got := ExpBlend(0, 0.016); got != 1 {
		t.Errorf("zero time constant = %g, want 1", got)
	}
	got := ExpBlend(0.1, 0.1)
	want := 1 - math.Exp(-1)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("blend = %g, want %g", got, want)
	}
}

func TestHorizontalDistance(t *testing.T) {
	d := HorizontalDistance(mgl64.Vec3{0, 100, 0}, mgl64.Vec3{3, -7, 4})
	if math.Abs(d-5) > 1e-12 {
		t.Errorf("distance = %g, want 5", d)
	}
}
